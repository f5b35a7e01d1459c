package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"despesas/internal/core"
	applog "despesas/internal/log"
	"despesas/internal/middleware/cors"
	"despesas/internal/middleware/ratelimit"
	"despesas/internal/middleware/security"
	"despesas/internal/middleware/trace"
)

// RecordService is what the API needs from the record lifecycle.
// Implemented by *services.RecordService.
type RecordService interface {
	List(ctx context.Context) ([]core.ExpenseRecord, error)
	ListByMonth(ctx context.Context, p core.Period) ([]core.ExpenseRecord, error)
	Get(ctx context.Context, id int64) (core.ExpenseRecord, error)
	Create(ctx context.Context, in core.RecordInput) (core.ExpenseRecord, error)
	Update(ctx context.Context, id int64, in core.RecordInput) (core.ExpenseRecord, error)
	Delete(ctx context.Context, id int64) error
	Preview(in core.RecordInput) core.Summary
	Ready(ctx context.Context) error
}

// Options tunes the server beyond its routes.
type Options struct {
	Logger             *applog.Logger
	AllowedOrigins     []string
	RateLimitPerMinute int // 0 disables rate limiting
	// ExposeErrors includes underlying error messages in 4xx/5xx bodies.
	ExposeErrors bool
	MaxBodyBytes int64
}

const defaultMaxBodyBytes = 1 << 20

type Server struct {
	http.Server
	svc          RecordService
	logger       *applog.Logger
	exposeErrors bool
	maxBodyBytes int64
	rateLimiter  *ratelimit.Limiter
	tracer       *trace.Middleware
	started      time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, svc RecordService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	s := &Server{
		svc:          svc,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		exposeErrors: opts.ExposeErrors,
		maxBodyBytes: opts.MaxBodyBytes,
		tracer:       trace.NewMiddleware(logger, ratelimit.ClientIP),
		started:      time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleWelcome)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("POST /api/expenses/preview", s.handlePreviewExpense)
	mux.HandleFunc("GET /api/expenses/month/{year}/{month}", s.handleMonthExpenses)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	var handler http.Handler = mux
	if opts.RateLimitPerMinute > 0 {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
		handler = s.rateLimiter.Middleware(ratelimit.ClientIP, s.writeRateLimited)(handler)
	}
	if len(opts.AllowedOrigins) > 0 {
		handler = cors.New(cors.DefaultConfig(opts.AllowedOrigins))(handler)
	}
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = s.recoverer(handler)
	handler = s.tracer.Handler(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

// Metrics returns the request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "HTTP server shutting down", applog.FieldOperation, applog.OpShutdown)
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
