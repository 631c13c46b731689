// Package server exposes the landing page, search and read endpoints over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jmylchreest/frogfind/internal/config"
	"github.com/jmylchreest/frogfind/internal/logger"
	"github.com/jmylchreest/frogfind/internal/metrics"
	"github.com/jmylchreest/frogfind/pkg/article"
	"github.com/jmylchreest/frogfind/pkg/compat"
	"github.com/jmylchreest/frogfind/pkg/page"
	"github.com/jmylchreest/frogfind/pkg/search"
)

// Reader renders articles. *article.Service implements it.
type Reader interface {
	FetchAndRender(ctx context.Context, rawURL string, tier compat.Tier, params compat.Params) article.Article
}

// Searcher runs web searches. *search.Client implements it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Server wires HTTP handlers to the article pipeline and search backend.
type Server struct {
	router   chi.Router
	articles Reader
	searcher Searcher
}

// New constructs a Server with middleware and routes.
func New(articles Reader, searcher Searcher) *Server {
	s := &Server{
		articles: articles,
		searcher: searcher,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/", s.home)
	r.Get("/search", s.search)
	r.Get(compat.ReadPath, s.read)
	r.Post(compat.ReadPath, s.read)
	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	rc := requestContext(r)
	writePage(w, page.Compose(page.Home(rc)))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	rc := requestContext(r)
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing search term", http.StatusBadRequest)
		return
	}

	results, err := s.searcher.Search(r.Context(), query)
	if err != nil {
		logger.ErrorContext(r.Context(), "search failed",
			"query", query,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err)
		http.Error(w, "search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writePage(w, page.Compose(page.SearchResults(rc, query, results)))
}

func (s *Server) read(w http.ResponseWriter, r *http.Request) {
	rc := requestContext(r)
	target := param(r, "url")
	if target == "" {
		http.Error(w, "missing url", http.StatusBadRequest)
		return
	}

	a := s.articles.FetchAndRender(r.Context(), target, rc.Tier, rc.Params)
	if a.IsError {
		logger.DebugContext(r.Context(), "serving error article", "url", target)
	}
	writePage(w, page.Compose(page.ArticlePage(rc, a)))
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestContext resolves the tier and persisted params for r.
func requestContext(r *http.Request) compat.RequestContext {
	return compat.NewRequestContext(r.UserAgent(), param(r, "mode"), param(r, "dark"))
}

// param returns a query parameter, falling back to the POST form.
func param(r *http.Request, key string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	if r.Method == http.MethodPost {
		return r.PostFormValue(key)
	}
	return ""
}

func writePage(w http.ResponseWriter, resp page.Response) {
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, resp.Body); err != nil {
		logger.Debug("page write failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("json write failed", "error", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger.InfoContext(r.Context(), "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
