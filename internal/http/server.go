package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
)

// Options tunes the server. Zero values select defaults.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
}

// Server serves the expense API.
type Server struct {
	http.Server
	svc      ExpenseService
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc ExpenseService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	detector := security.NewDetector()
	s := &Server{
		svc:      svc,
		detector: detector,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:   trace.NewMiddleware(logger.WithComponent(log.ComponentHTTP), detector.ExtractClientIP),
		started:  time.Now(),
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("route not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.MutatingOnly, s.handleRateLimited))

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", s.handleAddExpense)
			r.Get("/", s.handleListExpenses)
			r.Delete("/", s.handleDeleteExpenses)
			r.Get("/range", s.handleListExpensesByRange)
			r.Get("/summary", s.handleSummary)
		})
		r.Get("/categories", s.handleCategories)
	})

	return r
}

// Limiter exposes the rate limiter so its cleanup loop can be run by the caller.
func (s *Server) Limiter() *ratelimit.Limiter {
	return s.limiter
}

// Shutdown gracefully stops the HTTP server. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}
