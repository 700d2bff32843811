package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/stockchecker/stockchecker/internal/httputil"
	"github.com/stockchecker/stockchecker/internal/user"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// CurrentUserContextKey holds the authenticated *user.User.
	CurrentUserContextKey ContextKey = "current_user"
)

// Middleware guards protected routes with the bearer-token pipeline.
type Middleware struct {
	service *Service
}

func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns ErrMissingCredentials when the header is absent or
// not Bearer-shaped.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingCredentials
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrMissingCredentials
	}

	return parts[1], nil
}

// RequireAuth validates the bearer token, checks revocation, resolves the
// subject to a user and stores it in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r)
		if err != nil {
			httputil.RespondErrorWithCode(w, ErrMissingCredentials.Error(), httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		current, err := m.service.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, ErrRevokedToken):
				httputil.RespondErrorWithCode(w, ErrRevokedToken.Error(), httputil.CodeTokenRevoked, http.StatusUnauthorized)
			case errors.Is(err, ErrExpiredToken):
				httputil.RespondErrorWithCode(w, ErrExpiredToken.Error(), httputil.CodeInvalidToken, http.StatusUnauthorized)
			case errors.Is(err, ErrUserNotFound):
				httputil.RespondErrorWithCode(w, ErrUserNotFound.Error(), httputil.CodeInvalidToken, http.StatusUnauthorized)
			default:
				httputil.RespondErrorWithCode(w, ErrInvalidToken.Error(), httputil.CodeInvalidToken, http.StatusUnauthorized)
			}
			return
		}

		ctx := context.WithValue(r.Context(), CurrentUserContextKey, current)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUserFromContext extracts the authenticated user set by RequireAuth.
func CurrentUserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(CurrentUserContextKey).(*user.User)
	return u, ok
}
