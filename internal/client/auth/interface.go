package auth

import (
	"context"

	"github.com/iudanet/feedhub/pkg/api"
)

// API is the part of the server API the session service talks to
type API interface {
	Signup(ctx context.Context, req api.SignupRequest) (*api.SignupResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
}

// Session is the logged in user as seen by the CLI
type Session struct {
	Email  string
	UserID string
	Token  string
}
