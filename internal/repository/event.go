package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hangaroo/backend/internal/model"
)

const eventColumns = `e.id, e.title, e.description, e.host_id, e.address, e.lat, e.lng,
	e.start_time, e.end_time, e.max_participants, e.category, e.is_completed,
	e.image_url, e.payment_method, e.payment_amount, e.created_at,
	h.first_name, h.last_name, h.email`

const eventFrom = ` FROM events e JOIN accounts h ON h.id = e.host_id`

// PgEventRepository implements EventRepository using PostgreSQL.
type PgEventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs a PgEventRepository.
func NewEventRepository(db *pgxpool.Pool) *PgEventRepository {
	return &PgEventRepository{db: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e    model.Event
		host model.AccountSummary
	)
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.HostID, &e.Location.Address,
		&e.Location.Lat, &e.Location.Lng, &e.StartTime, &e.EndTime,
		&e.MaxParticipants, &e.Category, &e.IsCompleted, &e.ImageURL,
		&e.Payment.Method, &e.Payment.Amount, &e.CreatedAt,
		&host.FirstName, &host.LastName, &host.Email)
	if err != nil {
		return nil, err
	}
	host.ID = e.HostID
	e.Host = &host
	e.Participants = []model.AccountSummary{}
	return &e, nil
}

// Create inserts a new event with an empty participant set.
func (r *PgEventRepository) Create(ctx context.Context, params *model.CreateEventParams) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO events (id, title, description, host_id, address, lat, lng,
			start_time, end_time, max_participants, category, image_url,
			payment_method, payment_amount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id`,
		uuid.New().String(), params.Title, params.Description, params.HostID,
		params.Address, params.Lat, params.Lng, params.StartTime, params.EndTime,
		params.MaxParticipants, params.Category, params.ImageURL,
		params.PaymentMethod, params.Amount, time.Now().UTC(),
	)
	var id string
	if err := row.Scan(&id); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID returns a single event with host and participants resolved, or
// ErrNotFound.
func (r *PgEventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	event, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+eventFrom+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	events := []model.Event{*event}
	if err := r.attachParticipants(ctx, events); err != nil {
		return nil, err
	}
	return &events[0], nil
}

// List returns a page of events matching the filter, newest start first.
func (r *PgEventRepository) List(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + eventFrom + ` WHERE 1=1`
	args := []any{}
	if filter.Category != "" {
		args = append(args, model.NormalizeCategory(filter.Category))
		query += fmt.Sprintf(" AND e.category = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (e.title ILIKE $%d OR e.description ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY e.start_time ASC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return r.queryEvents(ctx, query, args...)
}

// ListJoined returns events the account participates in, soonest first.
func (r *PgEventRepository) ListJoined(ctx context.Context, accountID string) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+eventFrom+`
		 JOIN event_participants ep ON ep.event_id = e.id
		 WHERE ep.account_id = $1
		 ORDER BY e.start_time ASC`, accountID)
}

// ListHosted returns events owned by the host, soonest first.
func (r *PgEventRepository) ListHosted(ctx context.Context, hostID string) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+eventFrom+`
		 WHERE e.host_id = $1
		 ORDER BY e.start_time ASC`, hostID)
}

// ListOngoing returns the host's not-yet-completed events.
func (r *PgEventRepository) ListOngoing(ctx context.Context, hostID string) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+eventFrom+`
		 WHERE e.host_id = $1 AND e.is_completed = FALSE
		 ORDER BY e.start_time ASC`, hostID)
}

func (r *PgEventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachParticipants(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// attachParticipants resolves participant summaries for a batch of events
// with a single query.
func (r *PgEventRepository) attachParticipants(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, len(events))
	index := make(map[string]*model.Event, len(events))
	for i := range events {
		ids[i] = events[i].ID
		index[events[i].ID] = &events[i]
	}

	rows, err := r.db.Query(ctx,
		`SELECT ep.event_id, a.id, a.first_name, a.last_name, a.email
		 FROM event_participants ep
		 JOIN accounts a ON a.id = ep.account_id
		 WHERE ep.event_id = ANY($1)
		 ORDER BY ep.joined_at ASC`, ids)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			eventID string
			p       model.AccountSummary
		)
		if err := rows.Scan(&eventID, &p.ID, &p.FirstName, &p.LastName, &p.Email); err != nil {
			return fmt.Errorf("scan participant: %w", err)
		}
		if e, ok := index[eventID]; ok {
			e.Participants = append(e.Participants, p)
		}
	}
	return rows.Err()
}

// Join performs a concurrency-safe join inside a single transaction.
//
// The event row is locked with SELECT ... FOR UPDATE before the membership and
// capacity checks, so two concurrent joins serialize on the row: the second
// one re-reads state the first one committed and fails its check instead of
// both passing validation against the same snapshot.
func (r *PgEventRepository) Join(ctx context.Context, eventID, accountID string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockAndAddParticipant(ctx, tx, eventID, accountID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// lockAndAddParticipant enforces the join invariants under a row lock and
// inserts the participant. Shared by the free join and the payment-verified
// join so both paths apply identical membership and capacity rules.
func lockAndAddParticipant(ctx context.Context, tx pgx.Tx, eventID, accountID string) error {
	var (
		maxParticipants int
		isCompleted     bool
	)
	err := tx.QueryRow(ctx,
		`SELECT max_participants, is_completed
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`, eventID,
	).Scan(&maxParticipants, &isCompleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	if isCompleted {
		return model.ErrEventCompleted
	}

	var joined bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM event_participants WHERE event_id = $1 AND account_id = $2)`,
		eventID, accountID,
	).Scan(&joined)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if joined {
		return model.ErrAlreadyJoined
	}

	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_participants WHERE event_id = $1`, eventID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count participants: %w", err)
	}
	if count >= maxParticipants {
		return model.ErrEventFull
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO event_participants (event_id, account_id, joined_at)
		 VALUES ($1, $2, $3)`,
		eventID, accountID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// Complete finalizes an event in a single transaction: the completion flag is
// flipped with a conditional update so a repeat call can never re-award
// points, and the award itself is restricted to ids actually present in the
// participant set.
func (r *PgEventRepository) Complete(ctx context.Context, eventID, hostID string, attendedIDs []string) (result *model.CompletionResult, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE events SET is_completed = TRUE
		 WHERE id = $1 AND host_id = $2 AND is_completed = FALSE`,
		eventID, hostID)
	if err != nil {
		return nil, fmt.Errorf("complete event: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the event is missing / owned by someone else, or it was
		// already completed. The latter is an idempotent no-op.
		var isCompleted bool
		err = tx.QueryRow(ctx,
			`SELECT is_completed FROM events WHERE id = $1 AND host_id = $2`,
			eventID, hostID,
		).Scan(&isCompleted)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, model.ErrNotFound
			}
			return nil, fmt.Errorf("check event: %w", err)
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			return nil, fmt.Errorf("commit transaction: %w", commitErr)
		}
		return &model.CompletionResult{
			AlreadyCompleted: true,
			PointsPerAccount: model.PointsPerAttendance,
		}, nil
	}

	awarded := 0
	if len(attendedIDs) > 0 {
		_, err = tx.Exec(ctx,
			`UPDATE event_participants SET attended = TRUE
			 WHERE event_id = $1 AND account_id = ANY($2)`,
			eventID, attendedIDs)
		if err != nil {
			return nil, fmt.Errorf("mark attendance: %w", err)
		}

		// The subquery filters out ids that were never participants, so a
		// host cannot award points outside the event.
		awardTag, awardErr := tx.Exec(ctx,
			`UPDATE accounts SET points = points + $3
			 WHERE id IN (
				SELECT account_id FROM event_participants
				WHERE event_id = $1 AND account_id = ANY($2)
			 )`,
			eventID, attendedIDs, model.PointsPerAttendance)
		if awardErr != nil {
			err = fmt.Errorf("award points: %w", awardErr)
			return nil, err
		}
		awarded = int(awardTag.RowsAffected())
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &model.CompletionResult{
		AwardedAccounts:  awarded,
		PointsPerAccount: model.PointsPerAttendance,
	}, nil
}
