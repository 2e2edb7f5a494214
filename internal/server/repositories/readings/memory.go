package readings

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/server/models"
)

// MemoryRepository keeps readings per owner in process memory. Appends from
// any number of goroutines are all recorded. Dates are stored in UTC, as
// the Postgres store returns them.
type MemoryRepository struct {
	mu      sync.RWMutex
	byOwner map[string][]models.Reading
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byOwner: make(map[string][]models.Reading),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Append(ctx context.Context, reading *models.Reading) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reading.Date = reading.Date.UTC()
	reading.CreatedAt = r.now().UTC()
	r.byOwner[reading.UserID] = append(r.byOwner[reading.UserID], *reading)
	return nil
}

func (r *MemoryRepository) SelectByOwner(ctx context.Context, userID string) ([]models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := slices.Clone(r.byOwner[userID])
	r.mu.RUnlock()

	if out == nil {
		out = []models.Reading{}
	}
	slices.SortStableFunc(out, func(a, b models.Reading) int {
		return a.Date.Compare(b.Date)
	})
	return out, nil
}
