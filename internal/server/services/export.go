package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/logging"
	"github.com/dmitrijs2005/waterwatch/internal/server/aggregation"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
	"github.com/dmitrijs2005/waterwatch/internal/server/series"
	"github.com/dmitrijs2005/waterwatch/internal/server/storage"
	"github.com/google/uuid"
)

// ErrExportUnavailable is returned when no object store is configured.
var ErrExportUnavailable = errors.New("export storage not configured")

type Export struct {
	Key string
	URL string
}

// ExportService writes a user's series as CSV to object storage and returns
// a presigned download link.
type ExportService struct {
	readings *ReadingService
	store    storage.ObjectStore
	logger   logging.Logger
	now      func() time.Time
}

// NewExportService accepts a nil store; Export then fails with
// ErrExportUnavailable.
func NewExportService(readings *ReadingService, store storage.ObjectStore, logger logging.Logger) *ExportService {
	return &ExportService{
		readings: readings,
		store:    store,
		logger:   logger.With("module", "export"),
		now:      time.Now,
	}
}

func (s *ExportService) storageKey(ownerID string, g aggregation.Granularity) string {
	d := s.now()
	return fmt.Sprintf("exports/%s/%d/%d/%d/%s-%v.csv", ownerID, d.Year(), d.Month(), d.Day(), g, uuid.New())
}

func (s *ExportService) Export(ctx context.Context, ownerID string, g aggregation.Granularity) (*Export, error) {
	if s.store == nil {
		return nil, ErrExportUnavailable
	}

	ser, err := s.readings.Series(ctx, ownerID, g)
	if err != nil {
		return nil, err
	}

	body, err := encodeCSV(ser)
	if err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}

	key := s.storageKey(ownerID, g)
	if err := s.store.Put(ctx, key, body, "text/csv"); err != nil {
		return nil, err
	}

	url, err := s.store.PresignGet(ctx, key)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "series exported", "user_id", ownerID, "granularity", g, "points", len(ser.Points), "key", key)
	return &Export{Key: key, URL: url}, nil
}

func encodeCSV(s *series.Series) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"label", "count"}, models.MetricNames[:]...)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, p := range s.Points {
		row := []string{p.Label, strconv.Itoa(p.Count)}
		for _, v := range p.Means.Values() {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
