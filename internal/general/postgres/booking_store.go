package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"unicorn-booking/internal/domain/booking"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// execer is the part of *pgxpool.Pool the store needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// BookingStore keeps one row per booking: the key in `id` and the typed attributes in `item` (jsonb).
type BookingStore struct {
	db          execer
	readTimeout time.Duration
}

// NewBookingStore constructs a BookingStore on top of a pool (or any execer).
func NewBookingStore(db execer, readTimeout time.Duration) *BookingStore {
	return &BookingStore{db: db, readTimeout: readTimeout}
}

// EnsureTable creates the booking table if it does not exist yet.
func (store *BookingStore) EnsureTable(ctx context.Context, table string) error {
	ctx, cancel := store.bounded(ctx)
	defer cancel()

	_, err := store.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+quoteTable(table)+` (
			id         TEXT PRIMARY KEY,
			item       JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	return nil
}

// PutItem writes item under its id, replacing any previous item with the same key.
func (store *BookingStore) PutItem(ctx context.Context, table string, item booking.Item) error {
	id := item.Key()
	if id == "" {
		return errors.New("postgres: item has no id attribute")
	}

	// serialize typed attributes, e.g. {"fare":{"N":"12.5"}, ...}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("postgres: encode item: %w", err)
	}

	ctx, cancel := store.bounded(ctx)
	defer cancel()

	_, err = store.db.Exec(ctx, `
		INSERT INTO `+quoteTable(table)+` (id, item)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (id) DO UPDATE
		SET item = EXCLUDED.item, updated_at = now()
	`,
		id,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("postgres: put item %s: %w", id, err)
	}

	return nil
}

// bounded applies the read timeout to a single statement.
func (store *BookingStore) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if store.readTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, store.readTimeout)
}

func quoteTable(table string) string {
	return pgx.Identifier{table}.Sanitize()
}
