// Package core provides money parsing and handling utilities.
//
// Amounts are fixed-point with two fractional digits. Every constructor rounds
// half away from zero to the cent, so two amounts that print the same compare
// equal and sum exactly.
package core

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept by an Amount.
const AmountPlaces = 2

var ErrInvalidAmount = errors.New("invalid amount")

// Bounds of an amount whose cent count fits in an int64, the storage column type.
var (
	MaxAmount = NewAmountFromCents(math.MaxInt64)
	MinAmount = NewAmountFromCents(math.MinInt64)
)

// Amount is a signed decimal quantity of money rounded to the cent.
type Amount struct {
	value decimal.Decimal
}

// NewAmount rounds d to the cent.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{value: d.Round(AmountPlaces)}
}

// NewAmountFromCents builds an amount from its integer cent representation.
func NewAmountFromCents(cents int64) Amount {
	return Amount{value: decimal.New(cents, -AmountPlaces)}
}

// NewAmountFromFloat is a convenience for tests and literals.
func NewAmountFromFloat(f float64) Amount {
	return NewAmount(decimal.NewFromFloat(f))
}

// ParseAmount converts a decimal string to an Amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs are
// allowed: the store enforces no sign constraint.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35 (half away from zero)
//	ParseAmount("-0.005") -> -0.01
//
// Values outside [MinAmount, MaxAmount] are rejected.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		return Amount{}, fmt.Errorf("%w %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return Amount{}, fmt.Errorf("%w %q", ErrInvalidAmount, s)
	}
	a := NewAmount(d)
	if !a.InCentRange() {
		return Amount{}, fmt.Errorf("%w %q: out of range", ErrInvalidAmount, s)
	}
	return a, nil
}

// InCentRange reports whether Cents represents the amount exactly.
func (a Amount) InCentRange() bool {
	return a.value.GreaterThanOrEqual(MinAmount.value) && a.value.LessThanOrEqual(MaxAmount.value)
}

// Cents returns the amount as an integer number of cents. The result is only
// meaningful when InCentRange is true.
func (a Amount) Cents() int64 {
	return a.value.Shift(AmountPlaces).IntPart()
}

func (a Amount) Add(b Amount) Amount      { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Equal(b Amount) bool      { return a.value.Equal(b.value) }
func (a Amount) IsZero() bool             { return a.value.IsZero() }
func (a Amount) Decimal() decimal.Decimal { return a.value }

// String renders the amount with exactly two decimals, e.g. "12.50".
func (a Amount) String() string {
	return a.value.StringFixed(AmountPlaces)
}

// MarshalJSON emits a JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return fmt.Errorf("%w: null", ErrInvalidAmount)
	}
	parsed, err := ParseAmount(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
