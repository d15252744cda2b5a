package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/iudanet/feedhub/internal/crypto"
	"github.com/iudanet/feedhub/internal/models"
	"github.com/iudanet/feedhub/internal/server/apperr"
	"github.com/iudanet/feedhub/internal/server/auth"
	"github.com/iudanet/feedhub/internal/server/storage"
	"github.com/iudanet/feedhub/internal/validation"
)

// Client-facing messages of the account operations.
const (
	MsgValidationFailed = "Validation failed."
	MsgEmailTaken       = "E-Mail address already exists!"
	MsgUnknownEmail     = "A user with this email could not be found."
	MsgWrongPassword    = "Wrong password!"
	MsgUserNotFound     = "User not found."
)

// SignupInput is the payload of account creation.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// LoginResult is returned by Login.
type LoginResult struct {
	Token  string
	UserID string
}

// Signup creates an account. The password is stored only as a bcrypt hash.
func (s *Service) Signup(ctx context.Context, in SignupInput) (_ *models.User, err error) {
	ctx, end := s.startSpan(ctx, "Signup")
	defer end(&err)

	email := validation.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	if msgs := validation.Collect(
		validation.ValidateEmail(email),
		validation.ValidatePassword(in.Password),
		validation.ValidateName(name),
	); msgs != nil {
		return nil, apperr.Validation(MsgValidationFailed, msgs)
	}

	// Предварительная проверка; уникальный индекс хранилища остается последней гарантией
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.New(apperr.CodeConflict, MsgEmailTaken)
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, apperr.Internal(fmt.Errorf("failed to check email: %w", err))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	now := s.timestamp()
	user := &models.User{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Status:       models.DefaultStatus,
		Posts:        []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, apperr.New(apperr.CodeConflict, MsgEmailTaken)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to create user: %w", err))
	}

	trace.SpanFromContext(ctx).SetAttributes(userAttr(user.ID))
	s.logger.InfoContext(ctx, "user registered successfully", slog.String("user_id", user.ID))

	return user, nil
}

// Login checks the credentials and mints a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (_ *LoginResult, err error) {
	ctx, end := s.startSpan(ctx, "Login")
	defer end(&err)

	user, err := s.store.GetUserByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.New(apperr.CodeUnauthenticated, MsgUnknownEmail)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to get user: %w", err))
	}

	if err := s.hasher.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			s.logger.WarnContext(ctx, "invalid credentials", slog.String("user_id", user.ID))
			return nil, apperr.New(apperr.CodeUnauthenticated, MsgWrongPassword)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to verify password: %w", err))
	}

	token, err := s.tokens.Mint(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to mint token: %w", err))
	}

	trace.SpanFromContext(ctx).SetAttributes(userAttr(user.ID))
	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return &LoginResult{Token: token, UserID: user.ID}, nil
}

// currentUser loads the authenticated user
func (s *Service) currentUser(ctx context.Context) (*models.User, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	trace.SpanFromContext(ctx).SetAttributes(userAttr(userID))

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, MsgUserNotFound)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to get user: %w", err))
	}
	return user, nil
}

// Status returns the authenticated user.
func (s *Service) Status(ctx context.Context) (_ *models.User, err error) {
	ctx, end := s.startSpan(ctx, "Status")
	defer end(&err)

	return s.currentUser(ctx)
}

// UpdateStatus replaces the status text of the authenticated user.
func (s *Service) UpdateStatus(ctx context.Context, status string) (_ *models.User, err error) {
	ctx, end := s.startSpan(ctx, "UpdateStatus")
	defer end(&err)

	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	status = strings.TrimSpace(status)
	if msgs := validation.Collect(validation.ValidateStatus(status)); msgs != nil {
		return nil, apperr.Validation(MsgValidationFailed, msgs)
	}

	now := s.timestamp()
	if err := s.store.UpdateUserStatus(ctx, userID, status, now); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, MsgUserNotFound)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to update status: %w", err))
	}

	return s.currentUser(ctx)
}
