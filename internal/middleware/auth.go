package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/receptek/backend/internal/auth"
)

type contextKey string

// UserIDKey is the request-context key under which RequireAuth stores the
// authenticated user's id.
const UserIDKey contextKey = "user_id"

// RequireAuth validates the Authorization bearer token and injects the
// caller's user id into the request context.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				http.Error(w, `{"message":"not authenticated"}`, http.StatusUnauthorized)
				return
			}

			userID, err := auth.UserIDFromToken(tokenStr, secret)
			if err != nil || userID == "" {
				http.Error(w, `{"message":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID extracts the authenticated user id set by RequireAuth.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}
