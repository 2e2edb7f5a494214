// Package outbox keeps readings that could not reach the server. Items are
// replayed in the order they were queued and removed once accepted.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/dbx"
)

// Item is one queued submission. Payload is the request body as sent to
// the server.
type Item struct {
	ID       string
	Owner    string
	Payload  []byte
	QueuedAt time.Time
}

type Repository interface {
	Enqueue(ctx context.Context, item Item) error
	// Pending returns owner's items oldest first.
	Pending(ctx context.Context, owner string) ([]Item, error)
	Remove(ctx context.Context, id string) error
	Count(ctx context.Context, owner string) (int, error)
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, item Item) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO outbox (id, owner, payload, queued_at) VALUES (?, ?, ?, ?)`,
		item.ID, item.Owner, item.Payload, item.QueuedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to enqueue reading: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Pending(ctx context.Context, owner string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner, payload, queued_at FROM outbox WHERE owner = ? ORDER BY seq`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending readings: %w", err)
	}
	defer rows.Close()

	var result []Item
	for rows.Next() {
		var (
			item   Item
			queued int64
		)
		if err := rows.Scan(&item.ID, &item.Owner, &item.Payload, &queued); err != nil {
			return nil, fmt.Errorf("failed to scan pending reading: %w", err)
		}
		item.QueuedAt = time.Unix(0, queued).UTC()
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending readings: %w", err)
	}
	return result, nil
}

// Remove is a no-op for an unknown id.
func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove reading %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context, owner string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox WHERE owner = ?`, owner).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending readings: %w", err)
	}
	return n, nil
}
