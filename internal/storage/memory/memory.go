// Package memory keeps expenses in process memory. It honours the same
// ordering, range and bulk-delete rules as the SQLite repository and is used
// for the memory data backend and as a test double.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"expensetracker/internal/core"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Expense
}

func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Add stores the expense and returns its monotonic id.
func (s *Store) Add(_ context.Context, e core.Expense) (int64, error) {
	if !e.Amount.InCentRange() {
		return 0, fmt.Errorf("create expense: %w %s: out of range", core.ErrInvalidAmount, e.Amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	s.items = append(s.items, e)
	return e.ID, nil
}

// ListAll returns a copy of every expense; items are kept in id order.
func (s *Store) ListAll(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense{}, s.items...), nil
}

func (s *Store) ListByDateRange(_ context.Context, start, end core.Date) ([]core.Expense, error) {
	s.mu.Lock()
	out := make([]core.Expense, 0)
	for _, e := range s.items {
		if e.Date.In(start, end) {
			out = append(out, e)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Delete(_ context.Context, date core.Date, amount core.Amount, note string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	var deleted int64
	for _, e := range s.items {
		if e.Date.Equal(date.Time) && e.Amount.Equal(amount) && e.Note == note {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.items = kept
	return deleted, nil
}

func (s *Store) SummarizeByCategory(_ context.Context, f core.SummaryFilter) ([]core.CategoryTotal, error) {
	category, filtered := f.CategoryName()

	s.mu.Lock()
	sums := map[string]core.Amount{}
	for _, e := range s.items {
		if !e.Date.In(f.Start, f.End) {
			continue
		}
		if filtered && e.Category != category {
			continue
		}
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}
	s.mu.Unlock()

	totals := make([]core.CategoryTotal, 0, len(sums))
	for cat, sum := range sums {
		totals = append(totals, core.CategoryTotal{Category: cat, TotalAmount: sum})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })
	return totals, nil
}
