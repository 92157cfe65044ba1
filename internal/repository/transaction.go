package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hangaroo/backend/internal/model"
)

// PgTransactionRepository implements TransactionRepository using PostgreSQL.
type PgTransactionRepository struct {
	db *pgxpool.Pool
}

// NewTransactionRepository constructs a PgTransactionRepository.
func NewTransactionRepository(db *pgxpool.Pool) *PgTransactionRepository {
	return &PgTransactionRepository{db: db}
}

// RefExists reports whether a transaction already exists for the reference.
// The match is case-sensitive and exact.
func (r *PgTransactionRepository) RefExists(ctx context.Context, refID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM transactions WHERE ref_id = $1)`, refID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ref: %w", err)
	}
	return exists, nil
}

// RecordVerified creates the COMPLETE transaction and adds the payer to the
// event's participant set in one database transaction, so a crash can never
// leave a recorded payment without its participant entry.
//
// The transaction insert goes first: the unique index on ref_id makes it the
// linearization point for duplicate submissions, so of two concurrent requests
// with the same reference exactly one commits and the other rolls back with
// ErrDuplicateReference before touching the event. Capacity and membership are
// then enforced by the same locked check as the free join; a rejection rolls
// the transaction record back too, leaving the reference usable.
func (r *PgTransactionRepository) RecordVerified(ctx context.Context, params *model.VerifyPaymentParams) (txn *model.Transaction, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	record := &model.Transaction{
		ID:        uuid.New().String(),
		EventID:   params.EventID,
		PayerID:   params.PayerID,
		Amount:    params.Amount,
		RefID:     params.RefID,
		Status:    model.TransactionComplete,
		CreatedAt: time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO transactions (id, event_id, payer_id, amount, ref_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.EventID, record.PayerID, record.Amount,
		record.RefID, record.Status, record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, model.ErrDuplicateReference
		}
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err = lockAndAddParticipant(ctx, tx, params.EventID, params.PayerID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return record, nil
}
