package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"example.com/notes-api/internal/model"
)

const CookieName = "notes_session"

// TokenFrom reads the session token from the Authorization bearer header,
// falling back to the session cookie.
func TokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Resolver maps a session token to its user. *Service implements it.
type Resolver interface {
	CurrentUser(ctx context.Context, token string) (model.User, error)
}

// Middleware attaches the session's user to the request context. Requests
// without a valid session pass through with no user; handlers that need one
// reject them.
func Middleware(s Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFrom(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			u, err := s.CurrentUser(r.Context(), token)
			if err != nil {
				if !errors.Is(err, ErrUnauthenticated) {
					log.ErrorContext(r.Context(), "session lookup", "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
