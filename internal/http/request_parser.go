// Package http exposes the expense operations as a JSON API.
//
// This file binds request bodies and query strings to typed values. Anything
// that fails to bind is reported as a *BindingError and answered with 400.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"expensetracker/internal/core"
)

// maxBodyBytes caps request bodies; expense payloads are tiny.
const maxBodyBytes = 64 << 10

// BindingError reports a request parameter that is missing or malformed.
type BindingError struct {
	Field  string
	Reason string
}

func (e *BindingError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// AddExpenseRequest is the body of POST /expenses. Pointer fields let the
// binder tell a missing field from an empty one.
type AddExpenseRequest struct {
	Date        *core.Date   `json:"date"`
	Amount      *core.Amount `json:"amount"`
	Category    *string      `json:"category"`
	Subcategory *string      `json:"subcategory"`
	Note        *string      `json:"note"`
}

// DeleteExpenseRequest is the body of DELETE /expenses.
type DeleteExpenseRequest struct {
	Date   *core.Date   `json:"date"`
	Amount *core.Amount `json:"amount"`
	Note   *string      `json:"note"`
}

// DateRange is the inclusive range taken from start_date and end_date.
type DateRange struct {
	Start core.Date
	End   core.Date
}

// ParseAddExpense decodes and checks an add request.
func ParseAddExpense(r *http.Request) (core.Expense, error) {
	var req AddExpenseRequest
	if err := decodeJSONBody(r, &req); err != nil {
		return core.Expense{}, err
	}

	switch {
	case req.Date == nil:
		return core.Expense{}, missing("date")
	case req.Amount == nil:
		return core.Expense{}, missing("amount")
	case req.Category == nil:
		return core.Expense{}, missing("category")
	case req.Subcategory == nil:
		return core.Expense{}, missing("subcategory")
	case req.Note == nil:
		return core.Expense{}, missing("note")
	}

	return core.NewExpense(*req.Date, *req.Amount, *req.Category, *req.Subcategory, *req.Note), nil
}

// ParseDeleteExpense decodes and checks a delete request.
func ParseDeleteExpense(r *http.Request) (DeleteExpenseRequest, error) {
	var req DeleteExpenseRequest
	if err := decodeJSONBody(r, &req); err != nil {
		return req, err
	}

	switch {
	case req.Date == nil:
		return req, missing("date")
	case req.Amount == nil:
		return req, missing("amount")
	case req.Note == nil:
		return req, missing("note")
	}
	return req, nil
}

// ParseDateRange reads the required start_date and end_date query parameters.
// A start after the end is accepted and simply matches nothing.
func ParseDateRange(query url.Values) (DateRange, error) {
	start, err := requiredDate(query, "start_date")
	if err != nil {
		return DateRange{}, err
	}
	end, err := requiredDate(query, "end_date")
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: start, End: end}, nil
}

// ParseCategoryFilter returns the optional category filter. An empty
// parameter is the same as an absent one.
func ParseCategoryFilter(query url.Values) *string {
	c := query.Get("category")
	if c == "" {
		return nil
	}
	return &c
}

func requiredDate(query url.Values, key string) (core.Date, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return core.Date{}, missing(key)
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, &BindingError{Field: key, Reason: "must be a date in YYYY-MM-DD format"}
	}
	return d, nil
}

func decodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return &BindingError{Reason: "request body is required"}
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		return bodyError(err)
	}
	if dec.More() {
		return &BindingError{Reason: "request body must contain a single JSON object"}
	}
	return nil
}

func bodyError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError

	switch {
	case errors.As(err, &sizeErr):
		return &BindingError{Reason: "request body too large"}
	case errors.Is(err, io.EOF):
		return &BindingError{Reason: "request body is required"}
	case errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &syntaxErr):
		return &BindingError{Reason: "request body is not valid JSON"}
	case errors.As(err, &typeErr):
		return &BindingError{Field: typeErr.Field, Reason: "has the wrong type"}
	case errors.Is(err, core.ErrInvalidDate):
		return &BindingError{Field: "date", Reason: "must be a date in YYYY-MM-DD format"}
	case errors.Is(err, core.ErrInvalidAmount):
		return &BindingError{Field: "amount", Reason: "must be a decimal number"}
	default:
		return &BindingError{Reason: err.Error()}
	}
}

func missing(field string) error {
	return &BindingError{Field: field, Reason: "is required"}
}
