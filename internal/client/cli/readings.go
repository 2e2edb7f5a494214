package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/client/api"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
	"github.com/relvacode/iso8601"
)

// metricRanges are the bounds used for generated readings.
var metricRanges = [6][2]float64{
	{6, 8},    // pH
	{0, 500},  // TSS
	{0, 1000}, // TDS
	{0, 200},  // BOD
	{0, 500},  // COD
	{0, 300},  // chloride
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (a *App) randomReading() api.ReadingPayload {
	var v [6]float64
	for i, r := range metricRanges {
		v[i] = round2(r[0] + a.rng.Float64()*(r[1]-r[0]))
	}
	return api.ReadingPayload{
		Date: a.now().UTC().Truncate(time.Second),
		PH:   v[0], TSS: v[1], TDS: v[2], BOD: v[3], COD: v[4], Chloride: v[5],
	}
}

func (a *App) readNumber(name string) (float64, error) {
	text, err := GetSimpleText(a.reader, "-Enter "+name, a.out)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %q is not a number", name, text)
	}
	return v, nil
}

// Submit prompts for a reading. An empty date means now.
func (a *App) Submit(ctx context.Context) error {
	text, err := GetSimpleText(a.reader, "-Enter date (ISO 8601, empty for now)", a.out)
	if err != nil {
		return err
	}
	date := a.now().UTC().Truncate(time.Second)
	if text != "" {
		date, err = iso8601.ParseString(text)
		if err != nil {
			a.printf("Invalid date: %v", err)
			return err
		}
	}

	var v [6]float64
	for i, name := range models.MetricNames {
		v[i], err = a.readNumber(name)
		if err != nil {
			a.printf("Invalid value: %v", err)
			return err
		}
	}

	r := api.ReadingPayload{Date: date, PH: v[0], TSS: v[1], TDS: v[2], BOD: v[3], COD: v[4], Chloride: v[5]}
	err = a.api.SubmitReading(ctx, r)
	switch {
	case err == nil:
		a.printf("Data submitted successfully!")
		return nil
	case errors.Is(err, api.ErrUnavailable):
		return a.queueReadings(ctx, r)
	default:
		a.printf("Submit failed: %v", err)
		a.handleAuthError(ctx, err)
		return err
	}
}

// SubmitRandom sends count generated readings, one second apart. Once the
// server is unreachable the rest are queued.
func (a *App) SubmitRandom(ctx context.Context, count int) error {
	for i := 0; i < count; i++ {
		r := a.randomReading()
		r.Date = r.Date.Add(time.Duration(i) * time.Second)

		err := a.api.SubmitReading(ctx, r)
		if err == nil {
			continue
		}
		if !errors.Is(err, api.ErrUnavailable) {
			a.printf("Submit failed after %d readings: %v", i, err)
			a.handleAuthError(ctx, err)
			return err
		}

		rest := []api.ReadingPayload{r}
		for j := i + 1; j < count; j++ {
			q := a.randomReading()
			q.Date = q.Date.Add(time.Duration(j) * time.Second)
			rest = append(rest, q)
		}
		if i > 0 {
			a.printf("Submitted %d random readings", i)
		}
		return a.queueReadings(ctx, rest...)
	}
	a.printf("Submitted %d random readings", count)
	return nil
}

func (a *App) List(ctx context.Context) error {
	list, err := a.api.Readings(ctx)
	if err != nil {
		a.printf("Error fetching data: %v", err)
		a.handleAuthError(ctx, err)
		return err
	}
	if len(list) == 0 {
		a.printf("No readings yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tpH\tTSS\tTDS\tBOD\tCOD\tchloride")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			r.Date.Format(time.RFC3339), r.PH, r.TSS, r.TDS, r.BOD, r.COD, r.Chloride)
	}
	return tw.Flush()
}
