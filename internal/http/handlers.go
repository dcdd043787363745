package http

import (
	"context"
	"net/http"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

const readyTimeout = 5 * time.Second

// ExpenseService is the set of operations the HTTP layer exposes.
type ExpenseService interface {
	Add(ctx context.Context, e core.Expense) (core.AddResult, error)
	ListAll(ctx context.Context) ([]core.Expense, error)
	ListByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error)
	Delete(ctx context.Context, date core.Date, amount core.Amount, note string) (core.DeleteResult, error)
	SummarizeByCategory(ctx context.Context, start, end core.Date, category *string) ([]core.CategoryTotal, error)
	Categories(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status             string `json:"status"`
	Uptime             string `json:"uptime"`
	Requests           int64  `json:"requests"`
	RateLimited        int64  `json:"rate_limited"`
	TrackedClients     int64  `json:"tracked_clients"`
	SuspiciousRequests int64  `json:"suspicious_requests"`
}

// handleHealth reports liveness and middleware counters. It never touches the store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	limits := s.limiter.GetMetrics()
	NewJSONResponse().Body(HealthResponse{
		Status:             core.StatusOK,
		Uptime:             time.Since(s.started).Round(time.Second).String(),
		Requests:           s.tracer.GetMetrics().TotalRequests,
		RateLimited:        limits.TotalHits,
		TrackedClients:     limits.ClientCount,
		SuspiciousRequests: s.detector.GetMetrics().SuspiciousRequests,
	}).Write(w)
}

// handleReady checks that the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.svc.Ping(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err.Error())
		NewJSONResponse().
			Status(http.StatusServiceUnavailable).
			Body(map[string]string{"status": "not_ready", "storage": "unavailable"}).
			Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"status": "ready", "storage": core.StatusOK}).Write(w)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	e, err := ParseAddExpense(r)
	if err != nil {
		writeError(w, r, log.OpAdd, err)
		return
	}

	res, err := s.svc.Add(r.Context(), e)
	if err != nil {
		writeError(w, r, log.OpAdd, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(res).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.svc.ListAll(r.Context())
	if err != nil {
		writeError(w, r, log.OpListAll, err)
		return
	}
	NewJSONResponse().Body(nonNil(expenses)).Write(w)
}

func (s *Server) handleListExpensesByRange(w http.ResponseWriter, r *http.Request) {
	rng, err := ParseDateRange(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpListRange, err)
		return
	}

	expenses, err := s.svc.ListByDateRange(r.Context(), rng.Start, rng.End)
	if err != nil {
		writeError(w, r, log.OpListRange, err)
		return
	}
	NewJSONResponse().Body(nonNil(expenses)).Write(w)
}

func (s *Server) handleDeleteExpenses(w http.ResponseWriter, r *http.Request) {
	req, err := ParseDeleteExpense(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}

	res, err := s.svc.Delete(r.Context(), *req.Date, *req.Amount, *req.Note)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Body(res).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	rng, err := ParseDateRange(query)
	if err != nil {
		writeError(w, r, log.OpSummarize, err)
		return
	}

	totals, err := s.svc.SummarizeByCategory(r.Context(), rng.Start, rng.End, ParseCategoryFilter(query))
	if err != nil {
		writeError(w, r, log.OpSummarize, err)
		return
	}
	NewJSONResponse().Body(nonNil(totals)).Write(w)
}

// handleCategories serves the category document byte for byte.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Categories(r.Context())
	if err != nil {
		writeError(w, r, log.OpCategories, err)
		return
	}
	NewJSONResponse().Raw([]byte(doc)).Write(w)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldClientIP, s.detector.ExtractClientIP(r))
	TooManyRequestsError().Write(w)
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
