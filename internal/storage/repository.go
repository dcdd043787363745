package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// busyTimeoutMs bounds how long a connection waits on SQLite's single writer lock.
const busyTimeoutMs = 5000

// SQLiteRepository stores expenses in a single SQLite table.
//
// It holds no open handle: every operation opens its own connection and
// releases it before returning, on success and failure alike. Isolation
// between concurrent callers is whatever SQLite provides.
type SQLiteRepository struct {
	dbPath string
	dsn    string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := buildDSN(dbPath)
	if err := RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{dbPath: dbPath, dsn: dsn}, nil
}

func buildDSN(dbPath string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", dbPath, busyTimeoutMs)
}

// Path returns the database file location.
func (r *SQLiteRepository) Path() string {
	return r.dbPath
}

// withQueries opens a connection, runs fn and always closes the connection.
// Any failure along the way is reported as a *core.StorageError.
func (r *SQLiteRepository) withQueries(ctx context.Context, op string, fn func(*Queries) error) error {
	db, err := sql.Open(driverName, r.dsn)
	if err != nil {
		return &core.StorageError{Op: op, Err: fmt.Errorf("open database: %w", err)}
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := fn(New(db)); err != nil {
		return &core.StorageError{Op: op, Err: err}
	}
	return nil
}

// Ping checks that the database can be opened and the expenses table read.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	err := r.withQueries(ctx, "ping", func(q *Queries) error {
		_, err := q.CountExpenses(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Add(ctx context.Context, e core.Expense) (int64, error) {
	if !e.Amount.InCentRange() {
		return 0, fmt.Errorf("create expense: %w %s: out of range", core.ErrInvalidAmount, e.Amount)
	}

	var id int64
	err := r.withQueries(ctx, "add", func(q *Queries) error {
		var err error
		id, err = q.CreateExpense(ctx, CreateExpenseParams{
			Date:        e.Date.String(),
			Amount:      e.Amount.Cents(),
			Category:    e.Category,
			Subcategory: e.Subcategory,
			Note:        e.Note,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", id,
		"date", e.Date.String(),
		"amount_cents", e.Amount.Cents(),
		"category", e.Category,
		"subcategory", e.Subcategory)

	return id, nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Expense, error) {
	var rows []Expense
	err := r.withQueries(ctx, "list", func(q *Queries) error {
		var err error
		rows, err = q.ListExpenses(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return toCoreExpenses(rows)
}

func (r *SQLiteRepository) ListByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	var rows []Expense
	err := r.withQueries(ctx, "list_by_date_range", func(q *Queries) error {
		var err error
		rows, err = q.ListExpensesByDateRange(ctx, ListExpensesByDateRangeParams{
			StartDate: start.String(),
			EndDate:   end.String(),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses between %s and %s: %w", start, end, err)
	}
	return toCoreExpenses(rows)
}

func (r *SQLiteRepository) Delete(ctx context.Context, date core.Date, amount core.Amount, note string) (int64, error) {
	// No stored row can hold an amount outside the cent range.
	if !amount.InCentRange() {
		return 0, nil
	}

	var deleted int64
	err := r.withQueries(ctx, "delete", func(q *Queries) error {
		var err error
		deleted, err = q.DeleteExpensesByMatch(ctx, DeleteExpensesByMatchParams{
			Date:   date.String(),
			Amount: amount.Cents(),
			Note:   note,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete expenses: %w", err)
	}

	slog.DebugContext(ctx, "Expenses deleted from SQLite",
		"date", date.String(),
		"amount_cents", amount.Cents(),
		"deleted_count", deleted)

	return deleted, nil
}

func (r *SQLiteRepository) SummarizeByCategory(ctx context.Context, f core.SummaryFilter) ([]core.CategoryTotal, error) {
	var sums []GetCategorySumsRow
	err := r.withQueries(ctx, "summarize", func(q *Queries) error {
		var err error
		if category, ok := f.CategoryName(); ok {
			sums, err = q.GetCategorySumsForCategory(ctx, GetCategorySumsForCategoryParams{
				StartDate: f.Start.String(),
				EndDate:   f.End.String(),
				Category:  category,
			})
			return err
		}
		sums, err = q.GetCategorySums(ctx, GetCategorySumsParams{
			StartDate: f.Start.String(),
			EndDate:   f.End.String(),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get category sums: %w", err)
	}

	totals := make([]core.CategoryTotal, 0, len(sums))
	for _, s := range sums {
		totals = append(totals, core.CategoryTotal{
			Category:    s.Category,
			TotalAmount: core.NewAmountFromCents(s.TotalAmount),
		})
	}
	return totals, nil
}

func toCoreExpenses(rows []Expense) ([]core.Expense, error) {
	expenses := make([]core.Expense, len(rows))
	for i, row := range rows {
		date, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, &core.StorageError{Op: "scan", Err: fmt.Errorf("row %d: %w", row.ID, err)}
		}
		expenses[i] = core.Expense{
			ID:          row.ID,
			Date:        date,
			Amount:      core.NewAmountFromCents(row.Amount),
			Category:    row.Category,
			Subcategory: row.Subcategory,
			Note:        row.Note,
		}
	}
	return expenses, nil
}
