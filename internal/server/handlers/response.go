package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/feedhub/internal/server/apperr"
	"github.com/iudanet/feedhub/pkg/api"
)

// SendJSON отправляет JSON ответ
func SendJSON(w http.ResponseWriter, logger *slog.Logger, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// SendError renders err as the {message, data} envelope.
// Internal errors are logged with their cause and rendered without it.
func SendError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	appErr := apperr.From(err)
	status := appErr.Status()

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	} else {
		logger.DebugContext(r.Context(), "request rejected",
			slog.String("code", string(appErr.Code)),
			slog.String("message", appErr.Message))
	}

	SendJSON(w, logger, api.ErrorResponse{
		Message: appErr.Message,
		Data:    appErr.Data,
	}, status)
}
