package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CORSConfig describes the cross-origin policy.
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
}

// DefaultCORS allows any origin to call the API with a bearer token.
var DefaultCORS = CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	AllowHeaders: []string{"Content-Type", "Authorization"},
}

// CORS sets the cross-origin headers for requests carrying an Origin and
// answers preflight OPTIONS requests with 200 without calling next.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowOrigins),
		handlers.AllowedMethods(cfg.AllowMethods),
		handlers.AllowedHeaders(cfg.AllowHeaders),
		handlers.OptionStatusCode(http.StatusOK),
	)
}
