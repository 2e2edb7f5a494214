package users

import (
	"context"

	"github.com/dmitrijs2005/waterwatch/internal/server/models"
)

// Repository is the credential store. Emails are stored already normalised.
type Repository interface {
	// Create fails with common.ErrorAlreadyExists when the email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail and GetUserByID fail with common.ErrorNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
