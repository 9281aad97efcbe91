// Package http serves the finboard JSON API.
package http

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"finboard/internal/auth"
	"finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/services"
)

const maxBodyBytes = 1 << 20

// Services are the use cases the handlers call.
type Services struct {
	Ledger    *services.LedgerService
	Budgets   *services.BudgetService
	Goals     *services.GoalService
	Dashboard *services.DashboardService
	Insights  *services.InsightService
	Alerts    *services.AlertService
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Addr               string
	RateLimitPerMinute int
	// Location interprets date-only request values. Defaults to time.Local.
	Location *time.Location
}

type Server struct {
	http.Server

	svc      Services
	resolver *auth.Resolver
	pinger   Pinger
	loc      *time.Location
	logger   *log.Logger

	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	started  time.Time

	transactionsCreated atomic.Int64
	internalErrors      atomic.Int64
	panics              atomic.Int64
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, svc Services, resolver *auth.Resolver, pinger Pinger, logger *log.Logger) *Server {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		svc:      svc,
		resolver: resolver,
		pinger:   pinger,
		loc:      cfg.Location,
		logger:   httpLogger,
		detector: security.NewDetector(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/accounts", s.handleListAccounts)
	api.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	api.HandleFunc("GET /api/budgets", s.handleListBudgets)
	api.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	api.HandleFunc("GET /api/goals", s.handleListGoals)
	api.HandleFunc("POST /api/goals", s.handleCreateGoal)
	api.HandleFunc("GET /api/transactions", s.handleListTransactions)
	api.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	api.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	api.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	api.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	api.HandleFunc("GET /api/dashboard", s.handleDashboard)
	api.HandleFunc("GET /api/insights", s.handleInsights)
	api.HandleFunc("GET /api/insights/safe-to-spend", s.handleSafeToSpend)
	api.HandleFunc("POST /api/categorize", s.handleCategorize)
	api.HandleFunc("GET /api/alerts", s.handleListAlerts)
	api.HandleFunc("GET /api/categories", s.handleCategories)
	api.HandleFunc("GET /api/", func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not found")
	})

	gated := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
	})(resolver.Middleware(s.writeError)(api))

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", s.handleHealth)
	root.HandleFunc("GET /readyz", s.handleReady)
	root.HandleFunc("GET /metrics", s.handleMetrics)
	root.Handle("/api/", gated)

	var h http.Handler = root
	h = s.detector.Middleware(httpLogger)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = log.Middleware(httpLogger, trace.GetRequestID)(h)
	h = s.tracer.Middleware(h)
	h = s.recoverer(h)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// RunMaintenance drops idle rate-limit clients until ctx is done.
func (s *Server) RunMaintenance(ctx context.Context) {
	s.limiter.Run(ctx, time.Minute)
}
