// Package server wires the REST, GraphQL and websocket surfaces into one
// HTTP server and runs it until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/iudanet/feedhub/internal/server/feed"
	"github.com/iudanet/feedhub/internal/server/graphql"
	"github.com/iudanet/feedhub/internal/server/handlers"
	"github.com/iudanet/feedhub/internal/server/images"
	"github.com/iudanet/feedhub/internal/server/middleware"
	"github.com/iudanet/feedhub/internal/server/notify"
	"github.com/iudanet/feedhub/pkg/api"
)

// Deps are the collaborators of the router, built once in cmd/server.
type Deps struct {
	Service       *feed.Service
	Authenticator middleware.Authenticator
	Images        *images.Store
	Hub           *notify.Hub
	Store         handlers.Pinger
	Limiter       *middleware.RateLimiter
	Version       string
}

// NewRouter builds the full handler chain: recovery, request logging, CORS, routes.
func NewRouter(logger *slog.Logger, deps Deps) (http.Handler, error) {
	gqlHandler, err := graphql.NewHandler(logger, deps.Service)
	if err != nil {
		return nil, err
	}

	accounts := handlers.NewAuthHandler(logger, deps.Service)
	posts := handlers.NewFeedHandler(logger, deps.Service, deps.Images)
	health := handlers.NewHealthHandler(logger, deps.Store, deps.Version)

	strict := middleware.StrictAuth(logger, deps.Authenticator)
	permissive := middleware.PermissiveAuth(logger, deps.Authenticator)
	limited := middleware.RateLimit(deps.Limiter, logger)

	r := mux.NewRouter()

	// Auth endpoints (rate limited)
	r.Handle("/signup", limited(http.HandlerFunc(accounts.Signup))).Methods(http.MethodPut)
	r.Handle("/login", limited(http.HandlerFunc(accounts.Login))).Methods(http.MethodPost)

	// Protected endpoints
	r.Handle("/status", strict(http.HandlerFunc(accounts.GetStatus))).Methods(http.MethodGet)
	r.Handle("/status", strict(http.HandlerFunc(accounts.UpdateStatus))).Methods(http.MethodPatch)
	r.Handle("/posts", strict(http.HandlerFunc(posts.GetPosts))).Methods(http.MethodGet)
	r.Handle("/post", strict(http.HandlerFunc(posts.CreatePost))).Methods(http.MethodPost)
	r.Handle("/post/{postId}", strict(http.HandlerFunc(posts.GetPost))).Methods(http.MethodGet)
	r.Handle("/post/{postId}", strict(http.HandlerFunc(posts.UpdatePost))).Methods(http.MethodPut)
	r.Handle("/post/{postId}", strict(http.HandlerFunc(posts.DeletePost))).Methods(http.MethodDelete)
	r.Handle("/post-image", strict(http.HandlerFunc(posts.PostImage))).Methods(http.MethodPut)

	// Операции GraphQL проверяют аутентификацию сами
	r.Handle("/graphql", permissive(gqlHandler)).Methods(http.MethodGet, http.MethodPost)

	r.Handle("/socket", deps.Hub.Handler()).Methods(http.MethodGet)
	r.PathPrefix("/images/").Handler(http.StripPrefix("/images/", staticFiles(deps.Images.Dir()))).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.SendJSON(w, logger, api.ErrorResponse{Message: "Not found."}, http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.SendJSON(w, logger, api.ErrorResponse{Message: "Method not allowed."}, http.StatusMethodNotAllowed)
	})

	var h http.Handler = r
	h = middleware.CORS(middleware.DefaultCORS)(h)
	h = middleware.Logging(logger, "/health")(h)
	h = middleware.Recovery(logger)(h)

	return h, nil
}

// staticFiles serves stored images without directory listings
func staticFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// Server владеет HTTP сервером и ресурсами, живущими столько же
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	hub             *notify.Hub
	limiter         *middleware.RateLimiter
	shutdownTimeout time.Duration
}

// New creates a server listening on addr
func New(logger *slog.Logger, addr string, shutdownTimeout time.Duration, deps Deps) (*Server, error) {
	router, err := NewRouter(logger, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to build router: %w", err)
	}

	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		hub:             deps.Hub,
		limiter:         deps.Limiter,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", slog.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.release()
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	// Websocket соединения перехвачены и Shutdown их не ждет
	s.release()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) release() {
	if s.hub != nil {
		s.hub.Close()
	}
	if s.limiter != nil {
		s.limiter.Stop()
	}
}
