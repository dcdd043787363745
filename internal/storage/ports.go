package storage

import (
	"context"

	"expensetracker/internal/core"
)

// Store is the expense data-access contract shared by the SQLite and memory backends.
type Store interface {
	// Add inserts e and returns the id assigned by the store. e.ID is ignored.
	Add(ctx context.Context, e core.Expense) (int64, error)
	// ListAll returns every expense in insertion (id) order.
	ListAll(ctx context.Context) ([]core.Expense, error)
	// ListByDateRange returns expenses dated within [start, end], ordered by date then id.
	ListByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error)
	// Delete removes every expense matching the exact (date, amount, note) triple.
	Delete(ctx context.Context, date core.Date, amount core.Amount, note string) (int64, error)
	// SummarizeByCategory sums amounts per category; categories without rows are omitted.
	SummarizeByCategory(ctx context.Context, f core.SummaryFilter) ([]core.CategoryTotal, error)
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}
