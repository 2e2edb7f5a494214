package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/common"
	"github.com/dmitrijs2005/waterwatch/internal/server/aggregation"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
	"github.com/dmitrijs2005/waterwatch/internal/server/repositories/readings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReadingService(repo readings.Repository, c *fakeCache) *ReadingService {
	rm := &fakeRepoManager{readings: repo}
	if c == nil {
		return NewReadingService(nil, rm, nil, nopLogger)
	}
	return NewReadingService(nil, rm, c, nopLogger)
}

func TestReadingInput_Validate(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	in := validInput(ts, 7)
	date, m, err := in.Validate()
	require.NoError(t, err)
	assert.Equal(t, ts, date)
	assert.Equal(t, 7.0, m.PH)
	assert.Equal(t, 50.0, m.Chloride)

	in.Date = nil
	in.TDS = ptr(math.NaN())
	in.Chloride = ptr(math.Inf(1))
	_, _, err = in.Validate()

	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"date", "TDS", "chloride"}, ve.Fields)
}

func TestAppend_MissingCODRejectedBeforeStore(t *testing.T) {
	repo := &countingReadingsRepo{}
	s := newReadingService(repo, nil)

	in := validInput(time.Now(), 7)
	in.COD = nil

	_, err := s.Append(context.Background(), "u-1", in)
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Contains(t, err.Error(), "COD")
	assert.Equal(t, 0, repo.appends)
}

func TestAppend_StoresAndInvalidatesCache(t *testing.T) {
	repo := &countingReadingsRepo{}
	c := newFakeCache()
	s := newReadingService(repo, c)

	r, err := s.Append(context.Background(), "u-1", validInput(time.Now(), 7))
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "u-1", r.UserID)
	assert.Equal(t, 1, repo.appends)
	assert.Equal(t, []string{"u-1"}, c.invalidated)
}

func TestAppend_DuplicatesAreKept(t *testing.T) {
	s := newReadingService(readings.NewMemoryRepository(), nil)
	ctx := context.Background()
	in := validInput(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 7)

	a, err := s.Append(ctx, "u-1", in)
	require.NoError(t, err)
	b, err := s.Append(ctx, "u-1", in)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	list, err := s.Readings(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAppend_StoreFailure(t *testing.T) {
	s := newReadingService(&countingReadingsRepo{appendErr: errBoom}, nil)

	_, err := s.Append(context.Background(), "u-1", validInput(time.Now(), 7))
	assert.ErrorIs(t, err, common.ErrStore)
}

func TestAppend_CacheFailureIsNotFatal(t *testing.T) {
	c := newFakeCache()
	c.err = errBoom
	s := newReadingService(&countingReadingsRepo{}, c)

	_, err := s.Append(context.Background(), "u-1", validInput(time.Now(), 7))
	assert.NoError(t, err)
}

func TestAppend_Concurrent(t *testing.T) {
	s := newReadingService(readings.NewMemoryRepository(), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Append(ctx, "u-1", validInput(time.Unix(int64(i), 0), 7))
		}(i)
	}
	wg.Wait()

	list, err := s.Readings(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, list, 100)
}

func TestQueryByOwner_Restartable(t *testing.T) {
	s := newReadingService(readings.NewMemoryRepository(), nil)
	ctx := context.Background()

	for i := 3; i > 0; i-- {
		_, err := s.Append(ctx, "u-1", validInput(time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC), float64(i)))
		require.NoError(t, err)
	}

	seq, err := s.QueryByOwner(ctx, "u-1")
	require.NoError(t, err)

	for pass := 0; pass < 2; pass++ {
		var days []int
		for r := range seq {
			days = append(days, r.Date.Day())
		}
		assert.Equal(t, []int{1, 2, 3}, days)
	}
}

func TestQueryByOwner_StoreFailure(t *testing.T) {
	s := newReadingService(&countingReadingsRepo{selectErr: errBoom}, nil)
	_, err := s.QueryByOwner(context.Background(), "u-1")
	assert.ErrorIs(t, err, common.ErrStore)
}

func TestSeries_EmptyOwner(t *testing.T) {
	s := newReadingService(readings.NewMemoryRepository(), nil)

	ser, err := s.Series(context.Background(), "nobody", aggregation.Day)
	require.NoError(t, err)
	assert.True(t, ser.Empty())
}

func TestSeries_UsesCache(t *testing.T) {
	repo := &countingReadingsRepo{}
	c := newFakeCache()
	s := newReadingService(repo, c)
	ctx := context.Background()

	h := time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC)
	for i, ph := range []float64{6, 7, 8} {
		_, err := s.Append(ctx, "u-1", validInput(h.Add(time.Duration(i)*time.Minute), ph))
		require.NoError(t, err)
	}

	first, err := s.Series(ctx, "u-1", aggregation.Hour)
	require.NoError(t, err)
	require.Len(t, first.Points, 1)
	assert.Equal(t, 7.0, first.Points[0].Means.PH)

	second, err := s.Series(ctx, "u-1", aggregation.Hour)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, repo.selects)

	_, err = s.Append(ctx, "u-1", validInput(h, 7))
	require.NoError(t, err)
	third, err := s.Series(ctx, "u-1", aggregation.Hour)
	require.NoError(t, err)
	assert.Equal(t, 4, third.Points[0].Count)
	assert.Equal(t, 2, repo.selects)
}

func TestSeries_CacheErrorFallsThrough(t *testing.T) {
	c := newFakeCache()
	c.err = errBoom
	s := newReadingService(&countingReadingsRepo{}, c)

	_, err := s.Series(context.Background(), "u-1", aggregation.Day)
	assert.NoError(t, err)
}

// pausingReadingsRepo blocks the first SelectByOwner after it has taken its
// snapshot until resume is closed.
type pausingReadingsRepo struct {
	readings.Repository
	once     sync.Once
	snapshot chan struct{}
	resume   chan struct{}
}

func (p *pausingReadingsRepo) SelectByOwner(ctx context.Context, ownerID string) ([]models.Reading, error) {
	list, err := p.Repository.SelectByOwner(ctx, ownerID)
	p.once.Do(func() {
		close(p.snapshot)
		<-p.resume
	})
	return list, err
}

func TestSeries_AppendDuringComputationIsNotHiddenByCache(t *testing.T) {
	repo := &pausingReadingsRepo{
		Repository: readings.NewMemoryRepository(),
		snapshot:   make(chan struct{}),
		resume:     make(chan struct{}),
	}
	s := newReadingService(repo, newFakeCache())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.Series(ctx, "u-1", aggregation.Day)
		done <- err
	}()

	<-repo.snapshot
	_, err := s.Append(ctx, "u-1", validInput(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), 7))
	require.NoError(t, err)
	close(repo.resume)
	require.NoError(t, <-done)

	ser, err := s.Series(ctx, "u-1", aggregation.Day)
	require.NoError(t, err)
	require.Len(t, ser.Points, 1)
	assert.Equal(t, 1, ser.Points[0].Count)
}

func TestSeries_GenerationFailureSkipsCache(t *testing.T) {
	repo := &countingReadingsRepo{}
	c := newFakeCache()
	c.err = errBoom
	s := newReadingService(repo, c)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.Series(ctx, "u-1", aggregation.Day)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, repo.selects)
	assert.Empty(t, c.data)
}
