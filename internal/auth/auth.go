// Package auth resolves the calling user of an API request, either from a
// Firebase ID token or, in development, from a plain header.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"budgetcal/internal/log"
)

type ctxKey struct{}

var (
	ErrMissingToken = errors.New("authorization header must be a Bearer token")
	ErrNoEmail      = errors.New("user has no e-mail address")
)

// Claims is the authenticated user.
type Claims struct {
	UID      string
	Email    string
	Name     string
	Verified bool
}

// Authenticator extracts the user from a request.
type Authenticator interface {
	Authenticate(r *http.Request) (*Claims, error)
}

// Directory looks up a user's e-mail address for alerts.
type Directory interface {
	Email(ctx context.Context, uid string) (string, error)
}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil && c.UID != ""
}

// UserID returns the authenticated uid or "".
func UserID(ctx context.Context) string {
	if c, ok := FromContext(ctx); ok {
		return c.UID
	}
	return ""
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// Middleware rejects unauthenticated requests with 401 and stores the
// claims of the others in the request context.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.Authenticate(r)
			if err != nil {
				log.FromContext(r.Context()).WarnContext(r.Context(), "Authentication failed",
					log.FieldPath, r.URL.Path,
					log.FieldError, err)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", "Bearer")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
