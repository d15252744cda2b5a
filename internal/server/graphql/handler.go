// Package graphql serves the feed operations as a single GraphQL endpoint.
// Requests pass through the permissive auth gate; each resolver relies on the
// feed service to reject anonymous callers.
package graphql

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	graphql "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"

	"github.com/iudanet/feedhub/internal/server/apperr"
	"github.com/iudanet/feedhub/internal/server/handlers"
)

//go:embed schema.graphql
var schemaSDL string

const (
	// maxQueryDepth ограничивает вложенность запросов
	maxQueryDepth = 10
	// maxRequestBody ограничивает размер тела запроса
	maxRequestBody = 1 << 20
)

// Request is a GraphQL request as sent by POST or encoded in GET parameters.
type Request struct {
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
}

// Error is the wire shape of one GraphQL error.
// Status and Data are set for errors raised by the feed operations.
type Error struct {
	Message   string               `json:"message"`
	Status    int                  `json:"status,omitempty"`
	Data      []string             `json:"data,omitempty"`
	Locations []gqlerrors.Location `json:"locations,omitempty"`
	Path      []any                `json:"path,omitempty"`
}

// Response is the wire shape of a GraphQL response.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors,omitempty"`
}

// panicLogger routes resolver panics to slog
type panicLogger struct {
	logger *slog.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value any) {
	l.logger.ErrorContext(ctx, "panic in resolver", slog.Any("panic", value))
}

// Handler обрабатывает запросы к /graphql
type Handler struct {
	logger *slog.Logger
	schema *graphql.Schema
}

// NewHandler parses the schema and binds it to svc
func NewHandler(logger *slog.Logger, svc Service) (*Handler, error) {
	schema, err := graphql.ParseSchema(schemaSDL, &Resolver{svc: svc},
		graphql.MaxDepth(maxQueryDepth),
		graphql.Logger(panicLogger{logger: logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse graphql schema: %w", err)
	}

	return &Handler{logger: logger, schema: schema}, nil
}

// ServeHTTP executes GET and POST GraphQL requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		status := http.StatusBadRequest
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			status = http.StatusMethodNotAllowed
			w.Header().Set("Allow", "GET, POST")
		}
		handlers.SendJSON(w, h.logger, Response{Errors: []Error{{Message: err.Error()}}}, status)
		return
	}

	result := h.schema.Exec(r.Context(), req.Query, req.OperationName, req.Variables)

	handlers.SendJSON(w, h.logger, Response{
		Data:   result.Data,
		Errors: h.formatErrors(r.Context(), result.Errors),
	}, http.StatusOK)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (*Request, error) {
	var req Request

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				return nil, errors.New("Variables are invalid JSON.")
			}
		}
	case http.MethodPost:
		body := http.MaxBytesReader(w, r.Body, maxRequestBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return nil, errors.New("Request body is invalid JSON.")
		}
	default:
		return nil, errors.New("GraphQL only supports GET and POST requests.")
	}

	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New("Must provide query string.")
	}

	return &req, nil
}

// formatErrors renders resolver errors with the taxonomy status and data.
// Request errors (syntax, validation) keep the library message.
func (h *Handler) formatErrors(ctx context.Context, errs []*gqlerrors.QueryError) []Error {
	if len(errs) == 0 {
		return nil
	}

	out := make([]Error, 0, len(errs))
	for _, qe := range errs {
		e := Error{
			Message:   qe.Message,
			Locations: qe.Locations,
			Path:      qe.Path,
		}

		// Ошибка выполнения без ResolverError означает панику в резолвере
		if qe.ResolverError != nil || len(qe.Path) > 0 {
			appErr := apperr.From(qe.ResolverError)
			if appErr == nil {
				appErr = apperr.Internal(qe)
			}
			if appErr.Code == apperr.CodeInternal {
				h.logger.ErrorContext(ctx, "graphql operation failed",
					slog.Any("path", qe.Path),
					slog.Any("error", appErr.Cause))
			}
			e.Message = appErr.Message
			e.Status = appErr.Status()
			e.Data = appErr.Data
		}

		out = append(out, e)
	}
	return out
}
