package middleware

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/feedhub/internal/server/apperr"
	"github.com/iudanet/feedhub/internal/server/auth"
	"github.com/iudanet/feedhub/internal/server/handlers"
)

// Authenticator resolves the Authorization header into an identity.
type Authenticator interface {
	Authenticate(header string) (auth.Identity, error)
}

// StrictAuth создает middleware, который отклоняет запросы без валидного
// bearer токена с кодом 401 и конвертом {message, data}.
func StrictAuth(logger *slog.Logger, authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := authenticator.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				logger.WarnContext(r.Context(), "authentication failed",
					slog.String("path", r.URL.Path),
					slog.String("code", string(apperr.CodeOf(err))),
					slog.Any("error", err))
				handlers.SendError(w, r, logger, err)
				return
			}

			logger.DebugContext(r.Context(), "user authenticated", slog.String("user_id", id.UserID))

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// PermissiveAuth создает middleware, который никогда не отклоняет запрос.
// Без валидного токена в контекст кладется анонимная identity, и каждая
// операция сама решает, нужна ли аутентификация.
func PermissiveAuth(logger *slog.Logger, authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			id, err := authenticator.Authenticate(header)
			if err != nil {
				if header != "" {
					logger.DebugContext(r.Context(), "ignoring invalid credential", slog.Any("error", err))
				}
				id = auth.Anonymous
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
