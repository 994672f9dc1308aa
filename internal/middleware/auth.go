package middleware

import (
	"context"
	"net/http"
	"strings"

	"coinmate/internal/auth"
	"coinmate/internal/scope"

	"github.com/google/uuid"
)

type contextKey string

const scopeKey contextKey = "scope"

// RequestIDHeader is echoed back so clients can correlate audit rows.
const RequestIDHeader = "X-Request-ID"

// ScopeFromContext returns the request scope, or an anonymous one when the
// Scope middleware did not run.
func ScopeFromContext(ctx context.Context) *scope.Scope {
	if sc, ok := ctx.Value(scopeKey).(*scope.Scope); ok {
		return sc
	}
	return scope.Anonymous()
}

func WithScope(ctx context.Context, sc *scope.Scope) context.Context {
	return context.WithValue(ctx, scopeKey, sc)
}

// Scope attaches a fresh scope to every request. A missing token yields an
// anonymous scope; a malformed or expired one is rejected.
func Scope(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}
			var session scope.Session
			if token != "" {
				claims, err := auth.ParseToken(secret, token)
				if err != nil {
					http.Error(w, "invalid token", http.StatusUnauthorized)
					return
				}
				session = scope.Session{UserID: claims.UserID, IssuedAt: claims.IssuedAtTime()}
			}
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)
			sc := scope.New(session, scope.Metadata{
				"request_id": requestID,
				"ip":         r.RemoteAddr,
				"user_agent": r.UserAgent(),
			})
			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), sc)))
		})
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ScopeFromContext(r.Context()).Authenticated() {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken reads the Authorization header, falling back to the token
// query parameter browsers use for websocket upgrades.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return r.URL.Query().Get("token"), true
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
