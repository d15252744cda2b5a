// Package auth holds the authentication and authorization policy shared by
// the REST handlers and the GraphQL resolvers.
package auth

import (
	"context"
	"strings"

	"github.com/iudanet/feedhub/internal/server/apperr"
	"github.com/iudanet/feedhub/internal/server/jwt"
)

const bearerPrefix = "Bearer "

// Client-facing messages of the policy errors.
const (
	MsgNotAuthenticated = "Not authenticated."
	MsgMalformedToken   = "Malformed authorization token."
	MsgNotAuthorized    = "Not authorized."
)

// Identity is the per-request authentication result.
type Identity struct {
	UserID        string
	Authenticated bool
}

// Anonymous is the identity of a request without a valid credential.
var Anonymous = Identity{}

type identityKey struct{}

// WithIdentity stores id in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext extracts the identity stored by the authentication gate.
// The second value is false when the gate did not run for the request.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// TokenVerifier verifies bearer credentials.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// Authenticator turns an Authorization header into an Identity.
type Authenticator struct {
	tokens TokenVerifier
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(tokens TokenVerifier) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Authenticate проверяет заголовок Authorization.
//
// Пустой заголовок и невалидный токен дают CodeUnauthenticated,
// заголовок без префикса "Bearer " дает CodeMalformedCredential.
func (a *Authenticator) Authenticate(header string) (Identity, error) {
	if header == "" {
		return Anonymous, apperr.New(apperr.CodeUnauthenticated, MsgNotAuthenticated)
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return Anonymous, apperr.New(apperr.CodeMalformedCredential, MsgMalformedToken)
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return Anonymous, apperr.Wrap(apperr.CodeUnauthenticated, MsgNotAuthenticated, err)
	}

	return Identity{Authenticated: true, UserID: claims.UserID}, nil
}

// RequireUser returns the authenticated user id or CodeUnauthenticated.
func RequireUser(ctx context.Context) (string, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok || !id.Authenticated || id.UserID == "" {
		return "", apperr.New(apperr.CodeUnauthenticated, MsgNotAuthenticated)
	}
	return id.UserID, nil
}

// AuthorizeOwner fails with CodeForbidden unless actorID owns the resource.
func AuthorizeOwner(actorID, ownerID string) error {
	if actorID == "" || actorID != ownerID {
		return apperr.New(apperr.CodeForbidden, MsgNotAuthorized)
	}
	return nil
}
