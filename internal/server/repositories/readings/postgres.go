// Package readings persists measurement readings.
package readings

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/waterwatch/internal/dbx"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
)

// PostgresRepository implements reading storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts one reading. The row's created_at is the store clock.
// Timestamps come back in UTC.
func (r *PostgresRepository) Append(ctx context.Context, reading *models.Reading) error {
	reading.Date = reading.Date.UTC()
	query := `
		INSERT INTO readings (id, user_id, date, ph, tss, tds, bod, cod, chloride)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	m := reading.Metrics
	err := r.db.QueryRowContext(ctx, query,
		reading.ID, reading.UserID, reading.Date, m.PH, m.TSS, m.TDS, m.BOD, m.COD, m.Chloride,
	).Scan(&reading.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	reading.CreatedAt = reading.CreatedAt.UTC()
	return nil
}

// SelectByOwner returns all readings of userID, oldest first. TIMESTAMPTZ
// values are scanned in the process's local zone, so they are converted to
// UTC to match MemoryRepository.
func (r *PostgresRepository) SelectByOwner(ctx context.Context, userID string) ([]models.Reading, error) {
	query := `
		SELECT id, user_id, date, ph, tss, tds, bod, cod, chloride, created_at FROM readings
		WHERE user_id = $1
		ORDER BY date, created_at
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Reading, 0)
	for rows.Next() {
		var item models.Reading
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Date,
			&item.PH, &item.TSS, &item.TDS, &item.BOD, &item.COD, &item.Chloride,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		item.Date = item.Date.UTC()
		item.CreatedAt = item.CreatedAt.UTC()
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
