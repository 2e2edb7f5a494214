package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/waterwatch/internal/filex"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
)

// Show prints the aggregated series for view as a table.
func (a *App) Show(ctx context.Context, view string) error {
	s, err := a.api.Series(ctx, view)
	if err != nil {
		a.printf("Error fetching %s view: %v", view, err)
		a.handleAuthError(ctx, err)
		return err
	}
	if s.Empty() {
		a.printf("No data for the %s view", view)
		return nil
	}

	a.printf("%s view (%s buckets)", view, s.Granularity)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BUCKET\tN\t"+strings.Join(models.MetricNames[:], "\t"))
	for _, p := range s.Points {
		v := p.Means.Values()
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			p.Label, p.Count, v[0], v[1], v[2], v[3], v[4], v[5])
	}
	return tw.Flush()
}

// Export asks the server for a CSV of view and saves it to the export
// directory.
func (a *App) Export(ctx context.Context, view string) error {
	link, err := a.api.Export(ctx, view)
	if err != nil {
		a.printf("Export failed: %v", err)
		a.handleAuthError(ctx, err)
		return err
	}

	data, err := a.download(ctx, link.URL)
	if err != nil {
		a.printf("Download failed: %v", err)
		a.printf("Link: %s", link.URL)
		return err
	}

	path, err := filex.WriteFileIn(a.config.ExportDir, link.Key, data)
	if err != nil {
		a.printf("Saving export failed: %v", err)
		return err
	}

	a.printf("Saved %s", path)
	return nil
}
