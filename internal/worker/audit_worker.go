// Package worker consumes expense events published by the API.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/log"
)

// AuditEntry is one line of the audit log.
type AuditEntry struct {
	ReceivedAt time.Time          `json:"received_at"`
	Event      *amqp.ExpenseEvent `json:"event"`
}

// Stats counts handled events by type.
type Stats struct {
	Added   int64
	Deleted int64
	// Rows removed across all delete events.
	DeletedRows int64
}

// AuditWorker appends every consumed event to w as a JSON line.
type AuditWorker struct {
	mu     sync.Mutex
	w      io.Writer
	logger *log.Logger
	now    func() time.Time
	stats  Stats
}

func NewAuditWorker(w io.Writer, logger *log.Logger) *AuditWorker {
	return &AuditWorker{
		w:      w,
		logger: logger.WithComponent(log.ComponentAMQP),
		now:    time.Now,
	}
}

// HandleEvent writes ev to the audit log. It has the amqp.EventHandler shape.
func (a *AuditWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	line, err := json.Marshal(AuditEntry{ReceivedAt: a.now().UTC(), Event: ev})
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	line = append(line, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.w.Write(line); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}

	switch ev.Type {
	case amqp.EventExpenseAdded:
		a.stats.Added++
	case amqp.EventExpenseDeleted:
		a.stats.Deleted++
		a.stats.DeletedRows += ev.DeletedCount
	}

	a.logger.InfoContext(ctx, "Recorded expense event",
		"type", ev.Type,
		log.FieldExpenseID, ev.ID,
		log.FieldDate, ev.Date.String(),
		log.FieldAmountCents, ev.Amount.Cents())
	return nil
}

// Stats returns a snapshot of the handled event counts.
func (a *AuditWorker) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
