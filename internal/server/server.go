// Package server exposes the Pokédex lookup over HTTP: an HTML page per
// browser session plus a JSON API, health checks and metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/metrics"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Options configures a Server.
type Options struct {
	Client *client.Client

	// Redis backs the per-session generation counters. Nil keeps them in
	// memory.
	Redis *redis.Client

	CORSOrigins    []string
	MaxConcurrency int
	PageSize       int

	// SessionTTL drops idle sessions (default 30m).
	SessionTTL time.Duration
}

// Server holds the router and the session store.
type Server struct {
	opts     Options
	sessions *sessionStore
	router   *mux.Router
	handler  http.Handler
	logger   zerolog.Logger
}

// New builds a Server with all routes registered.
func New(opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		opts:     opts,
		sessions: newSessionStore(opts),
		router:   mux.NewRouter(),
		logger:   logging.NewLogger(logging.ComponentServer),
	}
	s.routes()

	c := cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = c.Handler(s.router)

	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.loggingMiddleware)

	// Page
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/search", s.handleSearchPage).Methods(http.MethodGet)
	r.HandleFunc("/random", s.handleRandomPage).Methods(http.MethodGet)
	r.HandleFunc("/all", s.handleAllPage).Methods(http.MethodGet)
	r.HandleFunc("/clear", s.handleClear).Methods(http.MethodPost)

	// JSON API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", s.handleSearchAPI).Methods(http.MethodGet)
	api.HandleFunc("/random", s.handleRandomAPI).Methods(http.MethodGet)
	api.HandleFunc("/all", s.handleAllAPI).Methods(http.MethodGet)
	api.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)

	// Operations
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
}

// Handler returns the root handler with CORS applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
