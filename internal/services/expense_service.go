package services

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// EventPublisher receives an event after every successful add or delete.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev *amqp.ExpenseEvent) error
}

// CategoryReader returns the raw category document.
type CategoryReader interface {
	Read(ctx context.Context) (string, error)
}

// ExpenseService orchestrates expense operations across the store, the
// category catalog and, when configured, the event publisher.
type ExpenseService struct {
	store      storage.Store
	categories CategoryReader
	publisher  EventPublisher
	logger     *log.StructuredLogger
}

// NewExpenseService wires a service. publisher may be nil, in which case no
// events are emitted.
func NewExpenseService(store storage.Store, categories CategoryReader, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:      store,
		categories: categories,
		publisher:  publisher,
		logger:     log.NewStructuredLogger(log.New(log.Config{Handler: slog.Default().Handler()})),
	}
}

// WithLogger replaces the logger used for operation records.
func (s *ExpenseService) WithLogger(logger *log.Logger) *ExpenseService {
	s.logger = log.NewStructuredLogger(logger)
	return s
}

// Add persists one expense and returns its id. No semantic validation is
// applied to the values.
func (s *ExpenseService) Add(ctx context.Context, e core.Expense) (core.AddResult, error) {
	id, err := s.store.Add(ctx, e)
	if err != nil {
		return core.AddResult{}, fmt.Errorf("add expense: %w", err)
	}
	e.ID = id

	s.logger.LogExpenseAdded(ctx, id, e.Date.String(), e.Amount.Cents(), e.Category, e.Subcategory)
	s.publish(ctx, amqp.NewExpenseAddedEvent(e))

	return core.AddResult{Status: core.StatusOK, ID: id}, nil
}

// ListAll returns every expense in insertion order.
func (s *ExpenseService) ListAll(ctx context.Context) ([]core.Expense, error) {
	expenses, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// ListByDateRange returns expenses dated within [start, end], oldest first.
func (s *ExpenseService) ListByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	expenses, err := s.store.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list expenses by date range: %w", err)
	}
	s.logger.LogQuery(ctx, log.OpListRange, start.String(), end.String(), len(expenses))
	return expenses, nil
}

// Delete removes every expense matching the (date, amount, note) triple.
// Matching nothing is not an error.
func (s *ExpenseService) Delete(ctx context.Context, date core.Date, amount core.Amount, note string) (core.DeleteResult, error) {
	deleted, err := s.store.Delete(ctx, date, amount, note)
	if err != nil {
		return core.DeleteResult{}, fmt.Errorf("delete expenses: %w", err)
	}

	s.logger.LogExpensesDeleted(ctx, date.String(), amount.Cents(), deleted)
	if deleted > 0 {
		s.publish(ctx, amqp.NewExpenseDeletedEvent(date, amount, note, deleted))
	}

	return core.DeleteResult{Status: core.StatusOK, DeletedCount: deleted}, nil
}

// SummarizeByCategory totals amounts per category over the inclusive range,
// optionally restricted to a single category.
func (s *ExpenseService) SummarizeByCategory(ctx context.Context, start, end core.Date, category *string) ([]core.CategoryTotal, error) {
	totals, err := s.store.SummarizeByCategory(ctx, core.SummaryFilter{Start: start, End: end, Category: category})
	if err != nil {
		return nil, fmt.Errorf("summarize expenses: %w", err)
	}
	s.logger.LogQuery(ctx, log.OpSummarize, start.String(), end.String(), len(totals))
	return totals, nil
}

// Categories returns the category document exactly as stored.
func (s *ExpenseService) Categories(ctx context.Context) (string, error) {
	if s.categories == nil {
		return "", &core.NotFoundError{Resource: "category catalog"}
	}
	doc, err := s.categories.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("read categories: %w", err)
	}
	return doc, nil
}

// Ping reports whether the store is reachable.
func (s *ExpenseService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// publish never fails the caller: the write already succeeded.
func (s *ExpenseService) publish(ctx context.Context, ev *amqp.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, ev); err != nil {
		s.logger.LogError(ctx, "Failed to publish expense event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithExpense(ev.ID, ev.Date.String(), ev.Amount.Cents(), ev.Category, ev.Subcategory))
	}
}
