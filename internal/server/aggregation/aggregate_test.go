package aggregation

import (
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reading(ts time.Time, ph float64) models.Reading {
	return models.Reading{Date: ts, Metrics: models.Metrics{PH: ph, TSS: ph * 10, TDS: ph * 20, BOD: 1, COD: 2, Chloride: 3}}
}

func randomReadings(rng *rand.Rand, n int) []models.Reading {
	base := time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC)
	out := make([]models.Reading, n)
	for i := range out {
		ts := base.Add(time.Duration(rng.Int63n(int64(400 * 24 * time.Hour))))
		out[i] = models.Reading{Date: ts, Metrics: models.Metrics{
			PH:       6 + rng.Float64()*2,
			TSS:      rng.Float64() * 500,
			TDS:      rng.Float64() * 1000,
			BOD:      rng.Float64() * 200,
			COD:      rng.Float64() * 500,
			Chloride: rng.Float64() * 300,
		}}
	}
	return out
}

func TestAggregate_DayBoundaryScenario(t *testing.T) {
	rs := []models.Reading{
		reading(time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC), 7),
		reading(time.Date(2024, 1, 2, 0, 15, 0, 0, time.UTC), 8),
	}

	got := Aggregate(slices.Values(rs), Day)
	require.Len(t, got, 2)
	require.Contains(t, got, "2024-01-01")
	require.Contains(t, got, "2024-01-02")
	assert.Equal(t, 1, got["2024-01-01"].Count)
	assert.Equal(t, 1, got["2024-01-02"].Count)
}

func TestAggregate_HourMeanScenario(t *testing.T) {
	h := time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC)
	rs := []models.Reading{
		reading(h.Add(1*time.Minute), 6.0),
		reading(h.Add(20*time.Minute), 7.0),
		reading(h.Add(59*time.Minute), 8.0),
	}

	got := Aggregate(slices.Values(rs), Hour)
	require.Len(t, got, 1)
	b := got["2024-05-05 10:00:00"]
	require.NotNil(t, b)
	assert.Equal(t, 3, b.Count)
	assert.Equal(t, 7.0, b.Means().PH)
	assert.Equal(t, h, b.Start)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(slices.Values([]models.Reading{}), Month))
	assert.NotNil(t, Aggregate(nil, Month))
}

func TestAggregate_CountConservedAndMeanExact(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rs := randomReadings(rng, 500)

	for _, g := range Granularities {
		t.Run(string(g), func(t *testing.T) {
			buckets := Aggregate(slices.Values(rs), g)
			total := 0
			for key, b := range buckets {
				assert.GreaterOrEqual(t, b.Count, 1)
				assert.Equal(t, key, b.Key)
				total += b.Count

				means := b.Means()
				assert.Equal(t, b.Sum.PH/float64(b.Count), means.PH)
				assert.Equal(t, b.Sum.Chloride/float64(b.Count), means.Chloride)
			}
			assert.Equal(t, len(rs), total)
		})
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rs := randomReadings(rng, 200)

	// integer-valued metrics keep float sums exact under reordering
	for i := range rs {
		rs[i].Metrics = models.Metrics{PH: float64(i % 9), TSS: float64(i), TDS: 1, BOD: 2, COD: 3, Chloride: 4}
	}

	want := Aggregate(slices.Values(rs), Week)

	shuffled := slices.Clone(rs)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	got := Aggregate(slices.Values(shuffled), Week)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("aggregate depends on input order (-want +got):\n%s", diff)
	}
}

func TestBucket_MeansZeroCount(t *testing.T) {
	assert.Equal(t, models.Metrics{}, (&Bucket{}).Means())
}
