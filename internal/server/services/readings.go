package services

import (
	"context"
	"fmt"
	"iter"
	"math"
	"slices"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/common"
	"github.com/dmitrijs2005/waterwatch/internal/dbx"
	"github.com/dmitrijs2005/waterwatch/internal/logging"
	"github.com/dmitrijs2005/waterwatch/internal/server/aggregation"
	"github.com/dmitrijs2005/waterwatch/internal/server/cache"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
	"github.com/dmitrijs2005/waterwatch/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/waterwatch/internal/server/series"
	"github.com/google/uuid"
)

// ReadingInput is a submitted reading before validation. Nil means the
// field was absent.
type ReadingInput struct {
	Date     *time.Time
	PH       *float64
	TSS      *float64
	TDS      *float64
	BOD      *float64
	COD      *float64
	Chloride *float64
}

// Validate returns the timestamp and metrics, or a *common.ValidationError
// naming every missing or non-finite field.
func (in ReadingInput) Validate() (time.Time, models.Metrics, error) {
	var invalid []string
	if in.Date == nil || in.Date.IsZero() {
		invalid = append(invalid, "date")
	}

	fields := []*float64{in.PH, in.TSS, in.TDS, in.BOD, in.COD, in.Chloride}
	for i, v := range fields {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			invalid = append(invalid, models.MetricNames[i])
		}
	}
	if len(invalid) > 0 {
		return time.Time{}, models.Metrics{}, common.NewValidationError(invalid...)
	}

	return *in.Date, models.Metrics{
		PH:       *in.PH,
		TSS:      *in.TSS,
		TDS:      *in.TDS,
		BOD:      *in.BOD,
		COD:      *in.COD,
		Chloride: *in.Chloride,
	}, nil
}

// ReadingService appends readings and serves them raw or aggregated.
type ReadingService struct {
	db          dbx.DB
	repomanager repomanager.RepositoryManager
	cache       cache.SeriesCache
	logger      logging.Logger
}

func NewReadingService(db dbx.DB, m repomanager.RepositoryManager, c cache.SeriesCache, logger logging.Logger) *ReadingService {
	if c == nil {
		c = cache.Noop{}
	}
	return &ReadingService{
		db:          db,
		repomanager: m,
		cache:       c,
		logger:      logger.With("module", "readings"),
	}
}

// Append validates in and stores it for ownerID. Nothing reaches the store
// when validation fails.
func (s *ReadingService) Append(ctx context.Context, ownerID string, in ReadingInput) (*models.Reading, error) {
	date, metrics, err := in.Validate()
	if err != nil {
		return nil, err
	}

	reading := &models.Reading{
		ID:      uuid.NewString(),
		UserID:  ownerID,
		Date:    date,
		Metrics: metrics,
	}

	if err := s.repomanager.Readings(s.db).Append(ctx, reading); err != nil {
		return nil, fmt.Errorf("%w: error appending reading: %v", common.ErrStore, err)
	}

	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		s.logger.Warn(ctx, "series cache invalidation failed", "user_id", ownerID, "error", err)
	}

	return reading, nil
}

// Readings returns a snapshot of ownerID's readings ordered by date.
func (s *ReadingService) Readings(ctx context.Context, ownerID string) ([]models.Reading, error) {
	list, err := s.repomanager.Readings(s.db).SelectByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: error selecting readings: %v", common.ErrStore, err)
	}
	return list, nil
}

// QueryByOwner is Readings as a sequence. The sequence may be ranged over
// more than once and always yields the same snapshot.
func (s *ReadingService) QueryByOwner(ctx context.Context, ownerID string) (iter.Seq[models.Reading], error) {
	list, err := s.Readings(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return slices.Values(list), nil
}

// Series aggregates ownerID's readings at granularity g. The cache
// generation is read before the snapshot, so a write-back racing with Append
// lands under a generation that is no longer served. Cache failures are
// logged and fall through to a fresh computation.
func (s *ReadingService) Series(ctx context.Context, ownerID string, g aggregation.Granularity) (*series.Series, error) {
	gen, err := s.cache.Generation(ctx, ownerID)
	useCache := err == nil
	if err != nil {
		s.logger.Warn(ctx, "series cache generation read failed", "user_id", ownerID, "error", err)
	}

	if useCache {
		cached, ok, err := s.cache.Get(ctx, ownerID, gen, g)
		if err != nil {
			s.logger.Warn(ctx, "series cache read failed", "user_id", ownerID, "granularity", g, "error", err)
		}
		if ok {
			return cached, nil
		}
	}

	readings, err := s.QueryByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := series.Assemble(g, aggregation.Aggregate(readings, g))

	if useCache {
		if err := s.cache.Set(ctx, ownerID, gen, g, result); err != nil {
			s.logger.Warn(ctx, "series cache write failed", "user_id", ownerID, "granularity", g, "error", err)
		}
	}
	return result, nil
}
