// Package cache stores assembled series per user and granularity so repeated
// dashboard loads skip aggregation.
//
// Entries are keyed by a per-user generation. Invalidate advances the
// generation, so a series computed from a snapshot taken before a write is
// stored under a generation nobody reads again.
package cache

import (
	"context"

	"github.com/dmitrijs2005/waterwatch/internal/server/aggregation"
	"github.com/dmitrijs2005/waterwatch/internal/server/series"
)

// SeriesCache is a read-through cache of assembled series. A miss is
// (nil, false, nil).
type SeriesCache interface {
	// Generation returns userID's current generation, 0 if never invalidated.
	Generation(ctx context.Context, userID string) (int64, error)
	Get(ctx context.Context, userID string, gen int64, g aggregation.Granularity) (*series.Series, bool, error)
	Set(ctx context.Context, userID string, gen int64, g aggregation.Granularity, s *series.Series) error
	// Invalidate advances userID's generation.
	Invalidate(ctx context.Context, userID string) error
}

// Noop never stores anything. Used when Redis is not configured.
type Noop struct{}

func (Noop) Generation(context.Context, string) (int64, error) {
	return 0, nil
}

func (Noop) Get(context.Context, string, int64, aggregation.Granularity) (*series.Series, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, string, int64, aggregation.Granularity, *series.Series) error {
	return nil
}

func (Noop) Invalidate(context.Context, string) error {
	return nil
}
