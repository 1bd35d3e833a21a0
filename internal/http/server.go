package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"budget/internal/backend"
	"budget/internal/cache"
	"budget/internal/middleware/cors"
	"budget/internal/middleware/trace"
	"budget/internal/services"
)

// Server exposes the expense ledger as a JSON API. Mutations go through the
// gateway directly; insight reads go through a snapshot view backed by a
// short-lived cache that any confirmed mutation invalidates.
type Server struct {
	http.Server

	gateway  backend.Gateway
	insights *services.InsightsView
	cache    *cache.InsightsCache

	tracer *trace.Middleware

	shutdownOnce sync.Once
	stopCleanup  chan struct{}
}

type Options struct {
	CORS        cors.Config
	CacheTTL    time.Duration
	CategoryCap int
}

func NewServer(addr string, gw backend.Gateway, opts Options) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.CategoryCap <= 0 {
		opts.CategoryCap = 9
	}

	mux := http.NewServeMux()
	s := &Server{
		gateway:     gw,
		insights:    services.NewInsightsView(gw, opts.CategoryCap),
		cache:       cache.NewInsightsCache(opts.CacheTTL),
		tracer:      trace.NewMiddleware(),
		stopCleanup: make(chan struct{}),
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("PATCH /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /insights", s.handleInsights)
	mux.HandleFunc("GET /insights/summary", s.handleSummary)
	mux.HandleFunc("GET /insights/by-category", s.handleByCategory)
	mux.HandleFunc("GET /insights/over-time", s.handleOverTime)
	mux.HandleFunc("GET /insights/export", s.handleExport)

	mux.HandleFunc("POST /transactions/import", s.handleImport)

	handler := cors.NewMiddleware(opts.CORS).Wrap(mux)
	handler = s.tracer.Wrap(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go s.runCacheCleanup()
	return s
}

// Handler returns the full middleware-wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

func (s *Server) runCacheCleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if removed := s.cache.CleanExpired(); removed > 0 {
				slog.Debug("Expired insight snapshots removed", "count", removed)
			}
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
	})
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
