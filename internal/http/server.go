// Package http exposes the ledger and its derived analytics as a JSON API.
// The core packages stay presentation-free; this layer glues them together,
// caches analytics per ledger revision and maps domain errors onto statuses.
package http

import (
	"context"
	"net/http"
	"time"

	"budgetbook/internal/cache"
	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
	"budgetbook/internal/services"
)

const mutationLimitPerMinute = 120

type Server struct {
	ledger    *ledger.Ledger
	recurring *services.RecurringProcessor
	goals     *services.GoalService
	alerts    *services.AlertService

	analyticsCache *cache.LRU[any]
	limiter        *rateLimiter
	logger         *log.Logger
	now            func() time.Time

	httpSrv *http.Server
}

type Options struct {
	Addr      string
	CacheSize int
	Logger    *log.Logger
	Clock     func() time.Time
}

func NewServer(l *ledger.Ledger, recurring *services.RecurringProcessor, goals *services.GoalService, alerts *services.AlertService, opts Options) *Server {
	if opts.CacheSize < 1 {
		opts.CacheSize = 64
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Config{Component: log.ComponentHTTP})
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Server{
		ledger:         l,
		recurring:      recurring,
		goals:          goals,
		alerts:         alerts,
		analyticsCache: cache.New[any](opts.CacheSize, 5*time.Minute),
		limiter:        newRateLimiter(mutationLimitPerMinute),
		logger:         opts.Logger.WithComponent(log.ComponentHTTP),
		now:            opts.Clock,
	}

	s.httpSrv = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.securityHeaders(s.requestLogging(s.limiter.limitMutations(s.routes()))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/budget", s.handleGetBudget)
	mux.HandleFunc("PUT /api/budget", s.handleSetBudget)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleAddExpense)
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handleEditExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/analytics/summary", s.handleAnalyticsSummary)
	mux.HandleFunc("GET /api/analytics/prediction", s.handlePrediction)
	mux.HandleFunc("GET /api/analytics/health", s.handleHealthScore)
	mux.HandleFunc("GET /api/analytics/recommendations", s.handleRecommendations)

	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("POST /api/clear", s.handleClear)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleAddGoal)
	mux.HandleFunc("POST /api/goals/{id}/contribute", s.handleContribute)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)

	mux.HandleFunc("GET /api/recurring", s.handleListRecurring)
	mux.HandleFunc("POST /api/recurring", s.handleAddRecurring)
	mux.HandleFunc("DELETE /api/recurring/{id}", s.handleDeleteRecurring)
	mux.HandleFunc("POST /api/recurring/process", s.handleProcessRecurring)

	mux.HandleFunc("GET /api/notifications", s.handleListNotifications)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.handleMarkNotificationRead)
	mux.HandleFunc("GET /api/caps", s.handleGetCaps)
	mux.HandleFunc("PUT /api/caps/{category}", s.handleSetCap)

	mux.HandleFunc("GET /api/report", s.handleReport)

	return mux
}

func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.InfoContext(r.Context(), "Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.close()
	return s.httpSrv.Shutdown(ctx)
}
