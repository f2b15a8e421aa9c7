package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/runnervault/internal/devserver/auth"
	"github.com/dmitrijs2005/runnervault/internal/devserver/httpx"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth validates the bearer token and stores the token's user id in
// the request context.
func RequireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httpx.RespondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				httpx.RespondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			userID, err := auth.GetUserIDFromToken(parts[1], secret)
			if err != nil {
				httpx.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID extracts the authenticated user id placed by RequireAuth.
func UserID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(userIDKey).(string)
	return id, ok
}
