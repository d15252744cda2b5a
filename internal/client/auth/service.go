package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/feedhub/internal/client/storage"
	"github.com/iudanet/feedhub/internal/validation"
	"github.com/iudanet/feedhub/pkg/api"
)

// ErrNotAuthenticated означает, что сохраненной сессии нет или она истекла
var ErrNotAuthenticated = errors.New("not authenticated, run login first")

// Service управляет сессией клиента: регистрация, вход, выход и токен
type Service struct {
	apiClient API
	store     storage.AuthStorage
	now       func() time.Time
	serverURL string
}

// NewService создает новый сервис авторизации для сервера serverURL.
// Сессии других серверов хранятся рядом и не затрагиваются.
func NewService(apiClient API, store storage.AuthStorage, serverURL string) *Service {
	return &Service{
		apiClient: apiClient,
		store:     store,
		serverURL: serverURL,
		now:       time.Now,
	}
}

// Signup регистрирует нового пользователя и возвращает его ID
func (s *Service) Signup(ctx context.Context, email, name, password string) (string, error) {
	// Проверяем локально, чтобы не гонять заведомо плохой запрос
	if msgs := validation.Collect(
		validation.ValidateEmail(email),
		validation.ValidatePassword(password),
		validation.ValidateName(name),
	); len(msgs) > 0 {
		return "", fmt.Errorf("invalid input: %v", msgs)
	}

	resp, err := s.apiClient.Signup(ctx, api.SignupRequest{
		Email:    validation.NormalizeEmail(email),
		Password: password,
		Name:     name,
	})
	if err != nil {
		return "", fmt.Errorf("registration failed: %w", err)
	}

	return resp.UserID, nil
}

// Login выполняет вход и сохраняет сессию
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}

	resp, err := s.apiClient.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	expiresAt, err := tokenExpiry(resp.Token)
	if err != nil {
		return nil, err
	}

	data := &storage.AuthData{
		ServerURL: s.serverURL,
		Email:     email,
		UserID:    resp.UserID,
		Token:     resp.Token,
		ExpiresAt: expiresAt,
	}
	if err := s.store.SaveAuth(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &Session{Email: email, UserID: resp.UserID, Token: resp.Token}, nil
}

// Logout удаляет локальную сессию. Токены на сервере не отзываются.
func (s *Service) Logout(ctx context.Context) error {
	err := s.store.DeleteAuth(ctx, s.serverURL)
	if errors.Is(err, storage.ErrAuthNotFound) {
		slog.Debug("no session found during logout", slog.String("server", s.serverURL))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Current возвращает действующую сессию или ErrNotAuthenticated
func (s *Service) Current(ctx context.Context) (*Session, error) {
	data, err := s.store.GetAuth(ctx, s.serverURL)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if data.Expired(s.now()) {
		return nil, ErrNotAuthenticated
	}

	return &Session{Email: data.Email, UserID: data.UserID, Token: data.Token}, nil
}

// Token возвращает bearer токен действующей сессии
func (s *Service) Token(ctx context.Context) (string, error) {
	session, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

// SessionInfo describes a stored session for listing
type SessionInfo struct {
	ExpiresAt time.Time // zero when the token has no expiry
	ServerURL string
	Email     string
	Current   bool // session of the server this service talks to
	Expired   bool
}

// Sessions возвращает все сохраненные сессии, включая истекшие
func (s *Service) Sessions(ctx context.Context) ([]SessionInfo, error) {
	list, err := s.store.ListAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	now := s.now()
	infos := make([]SessionInfo, 0, len(list))
	for _, data := range list {
		info := SessionInfo{
			ServerURL: data.ServerURL,
			Email:     data.Email,
			Current:   data.ServerURL == s.serverURL,
			Expired:   data.Expired(now),
		}
		if data.ExpiresAt != 0 {
			info.ExpiresAt = time.Unix(data.ExpiresAt, 0)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// tokenExpiry читает exp из токена без проверки подписи: ключ есть только у сервера.
// Возвращает 0, если exp не задан.
func tokenExpiry(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return 0, fmt.Errorf("server returned malformed token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return 0, nil
	}
	return claims.ExpiresAt.Unix(), nil
}
