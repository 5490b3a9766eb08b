package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures a [Server].
type Options struct {
	Addr      string
	Tokens    TokenProvider
	Catalog   Catalog
	Logger    *log.Logger
	RateLimit float64
}

// Server wires the router, middleware, and handlers for the proxy.
type Server struct {
	router *BasicRouter
	logger *log.Logger
	http   *http.Server
}

// New builds a [Server] from the given options.
func New(opts Options) *Server {
	router := NewBasicRouter()
	router.Use(
		RequestID(),
		Logging(opts.Logger),
		Recover(opts.Logger),
		RateLimit(opts.RateLimit),
	)
	router.Handler(UsageHandler{})
	router.Handler(NewTopTracksHandler(opts.Tokens, opts.Catalog, opts.Logger))

	return &Server{
		router: router,
		logger: opts.Logger,
		http: &http.Server{
			Addr:    opts.Addr,
			Handler: router,
		},
	}
}

// Handler exposes the middleware-wrapped router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// with a five second drain window.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
