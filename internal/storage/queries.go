package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Expense mirrors one row of the expenses table. Date is YYYY-MM-DD, Amount is cents.
type Expense struct {
	ID          int64
	Date        string
	Amount      int64
	Category    string
	Subcategory string
	Note        string
}

const createExpense = `INSERT INTO expenses (date, amount, category, subcategory, note)
VALUES (?, ?, ?, ?, ?)`

type CreateExpenseParams struct {
	Date        string
	Amount      int64
	Category    string
	Subcategory string
	Note        string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createExpense,
		arg.Date,
		arg.Amount,
		arg.Category,
		arg.Subcategory,
		arg.Note,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const countExpenses = `SELECT COUNT(*) FROM expenses`

func (q *Queries) CountExpenses(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countExpenses).Scan(&n)
	return n, err
}

const listExpenses = `SELECT id, date, amount, category, subcategory, note
FROM expenses
ORDER BY id ASC`

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	return scanExpenses(rows)
}

const listExpensesByDateRange = `SELECT id, date, amount, category, subcategory, note
FROM expenses
WHERE date BETWEEN ? AND ?
ORDER BY date ASC, id ASC`

type ListExpensesByDateRangeParams struct {
	StartDate string
	EndDate   string
}

func (q *Queries) ListExpensesByDateRange(ctx context.Context, arg ListExpensesByDateRangeParams) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesByDateRange, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	return scanExpenses(rows)
}

const deleteExpensesByMatch = `DELETE FROM expenses
WHERE date = ? AND amount = ? AND note = ?`

type DeleteExpensesByMatchParams struct {
	Date   string
	Amount int64
	Note   string
}

func (q *Queries) DeleteExpensesByMatch(ctx context.Context, arg DeleteExpensesByMatchParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpensesByMatch, arg.Date, arg.Amount, arg.Note)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getCategorySums = `SELECT category, SUM(amount) AS total_amount
FROM expenses
WHERE date BETWEEN ? AND ?
GROUP BY category
ORDER BY category ASC`

const getCategorySumsForCategory = `SELECT category, SUM(amount) AS total_amount
FROM expenses
WHERE date BETWEEN ? AND ? AND category = ?
GROUP BY category`

type GetCategorySumsParams struct {
	StartDate string
	EndDate   string
}

type GetCategorySumsForCategoryParams struct {
	StartDate string
	EndDate   string
	Category  string
}

type GetCategorySumsRow struct {
	Category    string
	TotalAmount int64
}

func (q *Queries) GetCategorySums(ctx context.Context, arg GetCategorySumsParams) ([]GetCategorySumsRow, error) {
	rows, err := q.db.QueryContext(ctx, getCategorySums, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	return scanCategorySums(rows)
}

func (q *Queries) GetCategorySumsForCategory(ctx context.Context, arg GetCategorySumsForCategoryParams) ([]GetCategorySumsRow, error) {
	rows, err := q.db.QueryContext(ctx, getCategorySumsForCategory, arg.StartDate, arg.EndDate, arg.Category)
	if err != nil {
		return nil, err
	}
	return scanCategorySums(rows)
}

func scanExpenses(rows *sql.Rows) ([]Expense, error) {
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Amount,
			&i.Category,
			&i.Subcategory,
			&i.Note,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanCategorySums(rows *sql.Rows) ([]GetCategorySumsRow, error) {
	defer rows.Close()
	var items []GetCategorySumsRow
	for rows.Next() {
		var i GetCategorySumsRow
		if err := rows.Scan(&i.Category, &i.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
