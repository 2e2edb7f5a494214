package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/common"
	"github.com/dmitrijs2005/waterwatch/internal/cryptox"
	"github.com/dmitrijs2005/waterwatch/internal/dbx"
	"github.com/dmitrijs2005/waterwatch/internal/server/auth"
	"github.com/dmitrijs2005/waterwatch/internal/server/config"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
	"github.com/dmitrijs2005/waterwatch/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// UserService registers accounts, authenticates them and validates session
// tokens.
type UserService struct {
	db            dbx.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
	now           func() time.Time
}

func NewUserService(db dbx.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		now:           time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Register creates an account. The email must be unused.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	var invalid []string
	if name == "" {
		invalid = append(invalid, "name")
	}
	if email == "" || !validEmail(email) {
		invalid = append(invalid, "email")
	}
	if password == "" {
		invalid = append(invalid, "password")
	}
	if len(invalid) > 0 {
		return nil, common.NewValidationError(invalid...)
	}

	salt := cryptox.NewSalt()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Salt:         salt,
		PasswordHash: cryptox.HashPassword([]byte(password), salt),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetUserByEmail(ctx, email)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		user, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("%w: error creating user: %v", common.ErrStore, err)
	}

	return user, nil
}

// Authenticate checks the credentials and issues a session token. Unknown
// email and wrong password are both common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// same work as a real check so timing does not reveal the account
			cryptox.VerifyPassword([]byte(password), cryptox.NewSalt(), nil)
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("%w: %v", common.ErrStore, err)
	}

	if !cryptox.VerifyPassword([]byte(password), user.Salt, user.PasswordHash) {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.now(), s.tokenValidity)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// Validate resolves a session token to its account.
func (s *UserService) Validate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrMissingCredential
	}

	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret, s.now())
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStore, err)
	}
	return user, nil
}
