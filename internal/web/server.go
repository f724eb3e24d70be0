package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/btaeng/trivia-map/internal/geo"
	"github.com/btaeng/trivia-map/internal/logger"
	"github.com/btaeng/trivia-map/internal/metrics"
	"github.com/btaeng/trivia-map/internal/model"
	"github.com/btaeng/trivia-map/internal/trivia"
)

//go:embed all:static
var staticFS embed.FS

// Generator produces one trivia question. *trivia.Relay satisfies it.
type Generator interface {
	Generate(ctx context.Context, location, category string) (*model.TriviaQuestion, error)
}

// Server serves the interactive map and its JSON API.
type Server struct {
	Dataset    *geo.Dataset
	Relay      Generator
	Exclusions trivia.ExclusionStore
	Logger     *slog.Logger
	Addr       string
}

// Routes builds the HTTP handler.
func (s *Server) Routes() (http.Handler, error) {
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("creating sub filesystem: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.AccessMiddleware(s.logger()))

	r.Route("/api", func(r chi.Router) {
		r.Get("/regions", s.handleRegions)
		r.Get("/categories", s.handleCategories)
		r.Get("/features", s.handleFeatures)
		r.Get("/locate", s.handleLocate)
		r.Get("/stats", s.handleStats)
		r.Post("/trivia", s.handleTrivia)
	})
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/*", http.FileServer(http.FS(staticSub)))

	return r, nil
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	h, err := s.Routes()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger().Info("server_listen", "url", "http://"+s.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
