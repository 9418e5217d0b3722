package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sujankapadia/snaplist/utils"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	usernameKey contextKey = "username"
)

// Authenticate validates the bearer token and injects the authenticated user
// scope into the request context. Every handler behind it reads its user ID
// from there; no unscoped operation exists downstream.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, usernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user for the request, or "" when the
// request skipped the middleware.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func Username(r *http.Request) string {
	name, _ := r.Context().Value(usernameKey).(string)
	return name
}
