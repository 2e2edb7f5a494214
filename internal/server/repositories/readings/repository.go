package readings

import (
	"context"

	"github.com/dmitrijs2005/waterwatch/internal/server/models"
)

// Repository is the append-only measurement store.
type Repository interface {
	Append(ctx context.Context, reading *models.Reading) error
	// SelectByOwner returns every reading of userID ordered by Date.
	SelectByOwner(ctx context.Context, userID string) ([]models.Reading, error)
}
