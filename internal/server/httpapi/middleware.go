package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/common"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

func withUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// userFromContext returns the account resolved by accessGuard.
func userFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName))
	if h == "" || strings.EqualFold(h, strings.TrimSpace(common.BearerScheme)) {
		return "", common.ErrMissingCredential
	}
	if len(h) < len(common.BearerScheme) || !strings.EqualFold(h[:len(common.BearerScheme)], common.BearerScheme) {
		return "", common.ErrInvalidToken
	}
	token := strings.TrimSpace(h[len(common.BearerScheme):])
	if token == "" {
		return "", common.ErrMissingCredential
	}
	return token, nil
}

// accessGuard admits requests carrying a valid session token and stores the
// account in the request context. Handlers take the owner from there only.
func (s *HTTPServer) accessGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := bearerToken(r)
		if errors.Is(err, common.ErrMissingCredential) {
			writeMessage(w, http.StatusUnauthorized, "No token provided")
			return
		}
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		user, err := s.users.Validate(ctx, token)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrMissingCredential):
				s.logger.Debug(ctx, "token rejected", "error", err)
				writeMessage(w, http.StatusUnauthorized, "Invalid token")
			default:
				s.logger.Error(ctx, "token validation failed", "error", err)
				writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(ctx, user)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func (s *HTTPServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authLimiter.Allow(clientIP(r)) {
			writeMessage(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
