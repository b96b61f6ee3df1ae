// Package server exposes the pipeline over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/abhijeet6401/newslet/internal/domain"
	"github.com/abhijeet6401/newslet/internal/logger"
	"github.com/abhijeet6401/newslet/internal/runner"
	"github.com/abhijeet6401/newslet/internal/store"
)

// Runner is the run coordinator the API drives.
type Runner interface {
	Start(ctx context.Context, req runner.Request) (*runner.Handle, error)
	Status() runner.Status
	Runs(limit int) ([]runner.Status, error)
}

// ArticleStore is the read side of the article table.
type ArticleStore interface {
	Query(ctx context.Context, f store.Filter) ([]domain.Article, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// Defaults fill request fields the client leaves out.
type Defaults struct {
	Sources       []string
	DaysBack      int
	MinImportance float64
	MaxArticles   int
	Format        string
}

// Options wires a Server.
type Options struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	Runner        Runner
	Store         ArticleStore
	NewsletterDir string
	SnapshotDir   string
	AnalyzerInfo  map[string]string
	Defaults      Defaults
	Log           logger.Logger
}

// Server handles the /api routes.
type Server struct {
	opts Options
	log  logger.Logger
	now  func() time.Time
	mux  *http.ServeMux
}

// New builds the server and registers its routes.
func New(opts Options) *Server {
	s := &Server{opts: opts, log: logger.Ensure(opts.Log), now: time.Now, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/scrape", s.handleScrape)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/runs", s.handleRuns)
	s.mux.HandleFunc("GET /api/articles", s.handleArticles)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("POST /api/newsletter/generate", s.handleGenerate)
	s.mux.HandleFunc("GET /api/newsletter/download/{filename}", s.handleDownload)
	s.mux.HandleFunc("GET /api/snapshots/latest", s.handleLatestSnapshot)
	s.mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
}

// Handler returns the routed handler wrapped with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	return s.recoverer(s.logRequests(s.mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("http server listening", "server_start", map[string]any{"addr": s.opts.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.InfoObj("http server shutting down", "server_stop", nil)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.DebugObj("http request", "http_request", map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				s.log.ErrorObj("internal server error", "http_panic", map[string]any{
					"path":  r.URL.Path,
					"error": fmt.Sprint(p),
				})
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
