package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/feedhub/internal/models"
	"github.com/iudanet/feedhub/internal/server/apperr"
	"github.com/iudanet/feedhub/internal/server/feed"
	"github.com/iudanet/feedhub/pkg/api"
)

// AccountService defines the account operations used by AuthHandler
type AccountService interface {
	Signup(ctx context.Context, in feed.SignupInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*feed.LoginResult, error)
	Status(ctx context.Context) (*models.User, error)
	UpdateStatus(ctx context.Context, status string) (*models.User, error)
}

// AuthHandler обрабатывает запросы регистрации, входа и статуса
type AuthHandler struct {
	logger   *slog.Logger
	accounts AccountService
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, accounts AccountService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		accounts: accounts,
	}
}

// errInvalidBody is returned for bodies that are not valid JSON
var errInvalidBody = apperr.Validation("Validation failed.", []string{"Invalid request body."})

// decodeJSON разбирает тело запроса в dst
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

// Signup обрабатывает PUT /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode signup request")
		SendError(w, r, h.logger, err)
		return
	}

	user, err := h.accounts.Signup(ctx, feed.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		SendError(w, r, h.logger, err)
		return
	}

	SendJSON(w, h.logger, api.SignupResponse{
		Message: "User created!",
		UserID:  user.ID,
	}, http.StatusCreated)
}

// Login обрабатывает POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request")
		SendError(w, r, h.logger, err)
		return
	}

	result, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		SendError(w, r, h.logger, err)
		return
	}

	SendJSON(w, h.logger, api.LoginResponse{
		Token:  result.Token,
		UserID: result.UserID,
	}, http.StatusOK)
}

// GetStatus обрабатывает GET /status
func (h *AuthHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Status(r.Context())
	if err != nil {
		SendError(w, r, h.logger, err)
		return
	}

	SendJSON(w, h.logger, api.StatusResponse{Status: user.Status}, http.StatusOK)
}

// UpdateStatus обрабатывает PATCH /status
func (h *AuthHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		SendError(w, r, h.logger, err)
		return
	}

	if _, err := h.accounts.UpdateStatus(r.Context(), req.Status); err != nil {
		SendError(w, r, h.logger, err)
		return
	}

	SendJSON(w, h.logger, api.MessageResponse{Message: "User updated."}, http.StatusOK)
}
