// Package aggregation groups a user's readings into calendar buckets and
// computes per-metric means.
//
// Timestamps are bucketed in their own location. No timezone conversion
// happens here. Both reading stores return dates in UTC, so buckets are UTC
// calendar periods whatever offset a reading was submitted with.
package aggregation

import (
	"fmt"
	"strings"
	"time"
)

type Granularity string

const (
	// Point buckets per second and reproduces the raw per-reading plot.
	Point Granularity = "point"
	Hour  Granularity = "hour"
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// Granularities lists every supported value, finest first.
var Granularities = []Granularity{Point, Hour, Day, Week, Month, Year}

// views maps the dashboard tab names onto bucket sizes.
var views = map[string]Granularity{
	"daily":   Hour,
	"weekly":  Day,
	"monthly": Month,
	"yearly":  Year,
}

func (g Granularity) String() string { return string(g) }

func (g Granularity) Valid() bool {
	switch g {
	case Point, Hour, Day, Week, Month, Year:
		return true
	}
	return false
}

// ParseGranularity accepts a granularity name, case-insensitively.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("unknown granularity %q", s)
	}
	return g, nil
}

// ViewGranularity resolves a dashboard view (daily, weekly, monthly, yearly).
func ViewGranularity(view string) (Granularity, error) {
	g, ok := views[strings.ToLower(strings.TrimSpace(view))]
	if !ok {
		return "", fmt.Errorf("unknown view %q", view)
	}
	return g, nil
}

// Truncate returns the start of the bucket containing t. A timestamp lying
// exactly on a boundary starts that bucket. Weeks start on Monday.
func Truncate(t time.Time, g Granularity) time.Time {
	y, m, d := t.Date()
	loc := t.Location()

	switch g {
	case Point:
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc)
	case Hour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case Day:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case Week:
		// Monday=0 .. Sunday=6
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}
	return t
}

var layouts = map[Granularity]string{
	Point: "2006-01-02 15:04:05",
	Hour:  "2006-01-02 15:00:00",
	Day:   "2006-01-02",
	Week:  "2006-01-02",
	Month: "2006-01",
	Year:  "2006",
}

// Key formats the bucket start of t as a zero-padded string whose
// lexicographic order matches chronological order.
func Key(t time.Time, g Granularity) string {
	return Truncate(t, g).Format(layouts[g])
}
