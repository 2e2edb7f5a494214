package aggregation

import (
	"iter"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/server/models"
)

// Bucket accumulates the readings that fall into one time window.
type Bucket struct {
	Key   string
	Start time.Time
	Sum   models.Metrics
	Count int
}

// Means divides the accumulated sums by Count.
func (b *Bucket) Means() models.Metrics {
	if b.Count == 0 {
		return models.Metrics{}
	}
	return b.Sum.Div(float64(b.Count))
}

// Aggregate makes one pass over readings and returns the non-empty buckets
// keyed by Key. Input order does not matter.
func Aggregate(readings iter.Seq[models.Reading], g Granularity) map[string]*Bucket {
	buckets := make(map[string]*Bucket)
	if readings == nil {
		return buckets
	}

	for r := range readings {
		start := Truncate(r.Date, g)
		key := start.Format(layouts[g])

		b, ok := buckets[key]
		if !ok {
			b = &Bucket{Key: key, Start: start}
			buckets[key] = b
		}
		b.Sum = b.Sum.Add(r.Metrics)
		b.Count++
	}
	return buckets
}
