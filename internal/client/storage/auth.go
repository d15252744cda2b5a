package storage

import (
	"context"
	"time"
)

// AuthStorage keeps one session per server URL on the client.
type AuthStorage interface {
	// SaveAuth stores the session under auth.ServerURL, replacing the previous one
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth returns the session for serverURL or ErrAuthNotFound
	GetAuth(ctx context.Context, serverURL string) (*AuthData, error)

	// DeleteAuth removes the session for serverURL (logout)
	DeleteAuth(ctx context.Context, serverURL string) error

	// ListAuth returns every stored session ordered by server URL
	ListAuth(ctx context.Context) ([]*AuthData, error)
}

// AuthData represents the session of the logged in user
type AuthData struct {
	ServerURL string `json:"server_url"`
	Email     string `json:"email"`
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds, 0 if the token carries no expiry
}

// Expired reports whether the session token is past its expiry at now
func (a *AuthData) Expired(now time.Time) bool {
	return a.ExpiresAt != 0 && !now.Before(time.Unix(a.ExpiresAt, 0))
}
