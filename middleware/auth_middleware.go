package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"blog_server_go/auth"
	"blog_server_go/data"
	"blog_server_go/models"

	"github.com/jmoiron/sqlx"
)

type contextKey string

// userKey holds the resolved *models.User in the request context.
const userKey contextKey = "currentUser"

// Authenticate validates the bearer token from the Authorization header and
// resolves its subject to a user record, which is stored in the request
// context. Every failure mode (missing header, bad format, invalid or
// expired token, subject referencing a deleted user) produces the same 401
// so callers cannot probe which accounts exist.
func Authenticate(tokens *auth.TokenService, db *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondUnauthorized(w)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respondUnauthorized(w)
				return
			}

			login, err := tokens.Validate(parts[1])
			if err != nil {
				respondUnauthorized(w)
				return
			}

			user, err := data.GetUserByLogin(db, login)
			if err != nil {
				respondUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user resolved by Authenticate, or nil when the
// request did not pass through it.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

func respondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
}
