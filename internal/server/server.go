package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/framefit/framefit/pkg/resize"
)

// Server wires the resize engine into an HTTP listener.
type Server struct {
	engine *resize.Engine
	logger *log.Logger
	http   *http.Server
}

// New creates a server around an engine. The engine's collaborators
// (store, cache, selector, model) are injected by the caller.
func New(engine *resize.Engine, addr string, logger *log.Logger) *Server {
	s := &Server{engine: engine, logger: logger}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// routes builds the chi router.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/resize", s.handleResize)
		r.Post("/sessions/{id}/feedback", s.handleFeedback)
		r.Post("/retrain", s.handleRetrain)

		r.Route("/variants", func(r chi.Router) {
			r.Get("/", s.handleListVariants)
			r.Post("/optimize", s.handleOptimizeVariants)
			r.Get("/significance", s.handleSignificance)
		})
	})
	return r
}

// ListenAndServe blocks until the context is cancelled or the listener
// fails, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
