package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/waterwatch/internal/client/api"
	"github.com/dmitrijs2005/waterwatch/internal/client/repositories/outbox"
	"github.com/google/uuid"
)

// queueReadings stores readings for a later sync under the signed-in
// account.
func (a *App) queueReadings(ctx context.Context, readings ...api.ReadingPayload) error {
	for _, r := range readings {
		payload, err := json.Marshal(r)
		if err != nil {
			return err
		}
		item := outbox.Item{ID: uuid.NewString(), Owner: a.email, Payload: payload, QueuedAt: a.now()}
		if err := a.outbox.Enqueue(ctx, item); err != nil {
			a.printf("Server unreachable and the reading could not be queued: %v", err)
			return err
		}
	}

	n, err := a.outbox.Count(ctx, a.email)
	if err != nil {
		n = len(readings)
	}
	a.printf("Server unreachable, queued %d readings (%d pending). Run 'sync' later.", len(readings), n)
	return nil
}

// Sync replays queued readings oldest first. It stops at the first
// transport or auth failure and keeps what is left. Readings the server
// rejects as invalid are dropped since resending cannot fix them.
func (a *App) Sync(ctx context.Context) error {
	items, err := a.outbox.Pending(ctx, a.email)
	if err != nil {
		a.printf("Reading the queue failed: %v", err)
		return err
	}
	if len(items) == 0 {
		a.printf("Nothing to sync")
		return nil
	}

	var sent, dropped int
	report := func() {
		a.printf("Synced %d readings, dropped %d invalid, %d still pending", sent, dropped, len(items)-sent-dropped)
	}

	for _, item := range items {
		var r api.ReadingPayload
		if err := json.Unmarshal(item.Payload, &r); err != nil {
			dropped++
			_ = a.outbox.Remove(ctx, item.ID)
			continue
		}

		err := a.api.SubmitReading(ctx, r)
		var se *api.StatusError
		switch {
		case err == nil:
			sent++
		case errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrUnavailable), errors.Is(err, api.ErrNotSignedIn):
			a.printf("Sync stopped: %v", err)
			report()
			a.handleAuthError(ctx, err)
			return err
		case errors.As(err, &se) && se.Status == http.StatusBadRequest:
			dropped++
		default:
			a.printf("Sync stopped: %v", err)
			report()
			return err
		}

		if err := a.outbox.Remove(ctx, item.ID); err != nil {
			a.printf("Removing a synced reading failed: %v", err)
			report()
			return err
		}
	}

	report()
	return nil
}
