// Package database provides PostgreSQL connection management using pgx.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	// Sensible pool defaults for a small service.
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				break
			}
			pool.Close()
			err = pingErr
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return pool, nil
}

// Migrate bootstraps the schema. Statements are idempotent so the server can
// run them on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id            UUID PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			first_name    TEXT NOT NULL,
			last_name     TEXT NOT NULL DEFAULT '',
			points        INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
			push_token    TEXT NOT NULL DEFAULT '',
			google_id     TEXT NOT NULL DEFAULT '',
			picture_url   TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_login    TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id               UUID PRIMARY KEY,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL,
			host_id          UUID NOT NULL REFERENCES accounts(id),
			address          TEXT NOT NULL,
			lat              DOUBLE PRECISION,
			lng              DOUBLE PRECISION,
			start_time       TIMESTAMPTZ NOT NULL,
			end_time         TIMESTAMPTZ NOT NULL,
			max_participants INTEGER NOT NULL DEFAULT 50 CHECK (max_participants > 0),
			category         TEXT NOT NULL DEFAULT 'Other',
			is_completed     BOOLEAN NOT NULL DEFAULT FALSE,
			image_url        TEXT NOT NULL DEFAULT '',
			payment_method   TEXT NOT NULL DEFAULT 'Bank Transfer',
			payment_amount   DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (payment_amount >= 0),
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS event_participants (
			event_id   UUID NOT NULL REFERENCES events(id),
			account_id UUID NOT NULL REFERENCES accounts(id),
			attended   BOOLEAN NOT NULL DEFAULT FALSE,
			joined_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (event_id, account_id)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id         UUID PRIMARY KEY,
			event_id   UUID NOT NULL REFERENCES events(id),
			payer_id   UUID NOT NULL REFERENCES accounts(id),
			amount     DOUBLE PRECISION NOT NULL,
			ref_id     TEXT NOT NULL UNIQUE,
			status     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id           UUID PRIMARY KEY,
			title        TEXT NOT NULL,
			body         TEXT NOT NULL,
			recipient_id UUID REFERENCES accounts(id),
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS outbox (
			id           BIGSERIAL PRIMARY KEY,
			aggregate_id TEXT NOT NULL,
			event_type   TEXT NOT NULL,
			payload      JSONB NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			published_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_category ON events(category)`,
		`CREATE INDEX IF NOT EXISTS idx_events_host ON events(host_id)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_account ON event_participants(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_unpublished ON outbox(created_at) WHERE published_at IS NULL`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
