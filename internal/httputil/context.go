package httputil

import (
	"context"
	"net/http"
)

// contextKey keeps request-scoped values from colliding with keys set by
// other packages.
type contextKey string

const (
	userIDKey contextKey = "userID"
)

// WithUserID returns a request whose context carries the authenticated
// user's ID.
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID reads the authenticated user's ID; empty for anonymous requests.
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}
