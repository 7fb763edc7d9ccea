// Package server is the summarization backend: it validates uploaded PDFs,
// extracts their text and asks a language model for a summary.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/csheth/pdf2ai/internal/cache"
	"github.com/csheth/pdf2ai/internal/config"
	"github.com/csheth/pdf2ai/internal/excerpt"
	"github.com/csheth/pdf2ai/internal/llm"
	"github.com/csheth/pdf2ai/internal/validate"
)

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Config    config.ServerConfig
	MaxUpload int64
	MaxChars  int
	CacheTTL  time.Duration
	Model     llm.Client
	Cache     cache.Client
	Logger    zerolog.Logger
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// Server serves the backend API.
type Server struct {
	cfg       config.ServerConfig
	validator validate.Validator
	excerpts  *excerpt.Builder
	cacheTTL  time.Duration
	model     llm.Client
	cache     cache.Client
	logger    zerolog.Logger
	now       func() time.Time
}

// New wires the handlers. A nil cache disables caching.
func New(deps Deps) *Server {
	maxUpload := deps.MaxUpload
	if maxUpload <= 0 {
		maxUpload = validate.DefaultMaxSize
	}
	c := deps.Cache
	if c == nil {
		c = cache.Noop{}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		cfg:       deps.Config,
		validator: validate.New(maxUpload),
		excerpts:  excerpt.NewBuilder(deps.MaxChars),
		cacheTTL:  deps.CacheTTL,
		model:     deps.Model,
		cache:     c,
		logger:    deps.Logger.With().Str("component", "server").Logger(),
		now:       now,
	}
}

// Handler returns the router with middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(s.cfg.CORSOrigins))

	r.Get("/", s.handleRoot)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/test", s.handleTest)
		r.Post("/summarize", s.handleSummarize)
	})
	return r
}

// Run serves until ctx is cancelled, then drains for GracefulShutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", srv.Addr).
			Str("version", s.cfg.Version).
			Strs("cors_origins", s.cfg.CORSOrigins).
			Msg("starting backend")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down backend")
	}

	grace := s.cfg.GracefulShutdown
	if grace <= 0 {
		grace = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
