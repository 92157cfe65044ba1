package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hangaroo/backend/internal/model"
)

const uniqueViolation = "23505"

const accountColumns = `id, email, password_hash, first_name, last_name, points,
	push_token, google_id, picture_url, created_at, last_login`

// PgAccountRepository implements AccountRepository using PostgreSQL.
type PgAccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository constructs a PgAccountRepository.
func NewAccountRepository(db *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{db: db}
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName,
		&a.Points, &a.PushToken, &a.GoogleID, &a.PictureURL, &a.CreatedAt, &a.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &a, nil
}

// Create inserts a new account. A duplicate email maps to ErrEmailTaken.
func (r *PgAccountRepository) Create(ctx context.Context, email, passwordHash, firstName, lastName string) (*model.Account, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO accounts (id, email, password_hash, first_name, last_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+accountColumns,
		uuid.New().String(), email, passwordHash, firstName, lastName, time.Now().UTC(),
	)
	account, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, model.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

// GetByID returns a single account or ErrNotFound.
func (r *PgAccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

// GetByEmail returns a single account or ErrNotFound.
func (r *PgAccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
}

// UpsertGoogle creates the account on first federated login or links the
// Google identity and refreshes last_login on subsequent ones.
func (r *PgAccountRepository) UpsertGoogle(ctx context.Context, params *model.GoogleAccountParams) (*model.Account, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO accounts (id, email, first_name, last_name, google_id, picture_url, created_at, last_login)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 ON CONFLICT (email) DO UPDATE SET
			google_id   = EXCLUDED.google_id,
			picture_url = CASE WHEN accounts.picture_url = '' THEN EXCLUDED.picture_url ELSE accounts.picture_url END,
			last_login  = EXCLUDED.last_login
		 RETURNING `+accountColumns,
		uuid.New().String(), params.Email, params.FirstName, params.LastName,
		params.GoogleID, params.PictureURL, time.Now().UTC(),
	)
	account, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("upsert google account: %w", err)
	}
	return account, nil
}

// SetPushToken registers the push-delivery address for an account.
func (r *PgAccountRepository) SetPushToken(ctx context.Context, id, token string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET push_token = $2 WHERE id = $1`, id, token)
	if err != nil {
		return fmt.Errorf("set push token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// TouchLastLogin refreshes the login timestamp.
func (r *PgAccountRepository) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE accounts SET last_login = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// ListPushTokens resolves delivery addresses for a notification target.
func (r *PgAccountRepository) ListPushTokens(ctx context.Context, recipientID *string) ([]string, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if recipientID == nil {
		rows, err = r.db.Query(ctx,
			`SELECT push_token FROM accounts WHERE push_token <> ''`)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT push_token FROM accounts WHERE id = $1 AND push_token <> ''`, *recipientID)
	}
	if err != nil {
		return nil, fmt.Errorf("list push tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan push token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
