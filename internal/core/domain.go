package core

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of a Date.
const DateLayout = "2006-01-02"

// StatusOK is the status reported by successful write operations.
const StatusOK = "ok"

type (
	// Date is a calendar date without a time component, always in UTC.
	Date struct {
		time.Time
	}

	// Expense is one recorded transaction. ID is assigned by the store on insert.
	Expense struct {
		ID          int64  `json:"id"`
		Date        Date   `json:"date"`
		Amount      Amount `json:"amount"`
		Category    string `json:"category"`
		Subcategory string `json:"subcategory"`
		Note        string `json:"note"`
	}

	// AddResult is returned by an insert.
	AddResult struct {
		Status string `json:"status"`
		ID     int64  `json:"id"`
	}

	// DeleteResult is returned by a delete-by-match.
	DeleteResult struct {
		Status       string `json:"status"`
		DeletedCount int64  `json:"deleted_count"`
	}
)

var ErrInvalidDate = errors.New("invalid date")

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: want YYYY-MM-DD", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// NewExpense builds an expense that has not been stored yet.
func NewExpense(date Date, amount Amount, category, subcategory, note string) Expense {
	return Expense{
		Date:        date,
		Amount:      amount,
		Category:    category,
		Subcategory: subcategory,
		Note:        note,
	}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON shadows the promoted time.Time encoder, which would emit a timestamp.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return fmt.Errorf("%w: null", ErrInvalidDate)
	}
	return d.UnmarshalText([]byte(strings.Trim(s, `"`)))
}

// Value stores the date as YYYY-MM-DD text so that range comparisons work lexically.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case time.Time:
		*d = NewDate(v.Year(), int(v.Month()), v.Day())
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

// In reports whether d lies within [start, end], inclusive on both ends.
func (d Date) In(start, end Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}
