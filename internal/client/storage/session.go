package storage

import (
	"context"
	"time"
)

//go:generate moq -out session_mock.go . SessionStorage

// Session is the locally stored authenticated session. The sync engine
// only cares that a principal exists; token details belong to transport.
type Session struct {
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	AccessToken string    `json:"access_token"`
}

// Valid reports whether the session token is still usable.
func (s *Session) Valid(now time.Time) bool {
	return s.AccessToken != "" && now.Before(s.ExpiresAt)
}

// SessionStorage persists the authenticated session across restarts.
type SessionStorage interface {
	// SaveSession stores the session
	SaveSession(ctx context.Context, session *Session) error

	// GetSession retrieves the stored session
	// Returns ErrSessionNotFound if none exists
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes the stored session (logout)
	DeleteSession(ctx context.Context) error
}
