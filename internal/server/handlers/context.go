package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/driftlabs/driftsync/pkg/api"
)

// contextKey is the type for request context keys
type contextKey string

const (
	// UserIDKey stores the authenticated user's ID in the request context
	UserIDKey contextKey = "user_id"
	// UsernameKey stores the authenticated username in the request context
	UsernameKey contextKey = "username"
)

// GetUserID extracts the authenticated user ID from the request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUsername extracts the authenticated username from the request context
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// writeJSON encodes a JSON response with the given status code.
func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// writeError encodes an ErrorResponse with the given status code.
func writeError(logger *slog.Logger, w http.ResponseWriter, status int, code, message string) {
	writeJSON(logger, w, status, api.ErrorResponse{Code: code, Message: message})
}
