// Package series turns aggregated buckets into a chart-ready time series.
package series

import (
	"slices"

	"github.com/dmitrijs2005/waterwatch/internal/server/aggregation"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
)

// Point is one bucket in the assembled series.
type Point struct {
	Label string         `json:"label"`
	Count int            `json:"count"`
	Means models.Metrics `json:"means"`
}

// Dataset carries the values of one metric aligned with Series.Labels.
type Dataset struct {
	Metric string    `json:"metric"`
	Values []float64 `json:"values"`
}

// Series is chronologically ascending with unique labels. Gaps between
// submissions stay gaps.
type Series struct {
	Granularity aggregation.Granularity `json:"granularity"`
	Points      []Point                 `json:"points"`
	Labels      []string                `json:"labels"`
	Datasets    []Dataset               `json:"datasets"`
}

// Empty reports whether the series holds no points.
func (s *Series) Empty() bool {
	return len(s.Points) == 0
}

// Assemble sorts the bucket keys and emits one point per bucket with the six
// means in models.MetricNames order.
func Assemble(g aggregation.Granularity, buckets map[string]*aggregation.Bucket) *Series {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	s := &Series{
		Granularity: g,
		Points:      make([]Point, 0, len(keys)),
		Labels:      keys,
		Datasets:    make([]Dataset, len(models.MetricNames)),
	}
	for i, name := range models.MetricNames {
		s.Datasets[i] = Dataset{Metric: name, Values: make([]float64, 0, len(keys))}
	}

	for _, k := range keys {
		b := buckets[k]
		means := b.Means()
		s.Points = append(s.Points, Point{Label: k, Count: b.Count, Means: means})
		for i, v := range means.Values() {
			s.Datasets[i].Values = append(s.Datasets[i].Values, v)
		}
	}
	return s
}
