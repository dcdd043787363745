package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"

	"expensetracker/internal/core"
)

type expenseService interface {
	Add(ctx context.Context, e core.Expense) (core.AddResult, error)
	ListAll(ctx context.Context) ([]core.Expense, error)
	ListByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error)
	Delete(ctx context.Context, date core.Date, amount core.Amount, note string) (core.DeleteResult, error)
	SummarizeByCategory(ctx context.Context, start, end core.Date, category *string) ([]core.CategoryTotal, error)
	Categories(ctx context.Context) (string, error)
}

type categoryDecoder interface {
	Decode(ctx context.Context) (map[string][]string, error)
}

// app is handed to every command through Execute's variadic arguments.
type app struct {
	svc      expenseService
	catalog  categoryDecoder
	out      io.Writer
	errOut   io.Writer
	text     bool
	currency string
}

func appFrom(args []interface{}) *app {
	if len(args) == 0 {
		return nil
	}
	a, _ := args[0].(*app)
	return a
}

func (a *app) fail(err error) {
	fmt.Fprintln(a.errOut, err)
}

// print writes v as indented JSON, or as a table when text output is on.
func (a *app) print(v any) error {
	if !a.text {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	switch v := v.(type) {
	case []core.Expense:
		return a.printExpenses(v)
	case []core.CategoryTotal:
		return a.printTotals(v)
	case core.AddResult:
		_, err := fmt.Fprintf(a.out, "added expense %d\n", v.ID)
		return err
	case core.DeleteResult:
		_, err := fmt.Fprintf(a.out, "deleted %d expense(s)\n", v.DeletedCount)
		return err
	default:
		_, err := fmt.Fprintln(a.out, v)
		return err
	}
}

func (a *app) printExpenses(expenses []core.Expense) error {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tCATEGORY\tSUBCATEGORY\tNOTE\t")
	for _, e := range expenses {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			e.ID, e.Date, formatAmount(e.Amount, a.currency), e.Category, e.Subcategory, e.Note)
	}
	return w.Flush()
}

func (a *app) printTotals(totals []core.CategoryTotal) error {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "CATEGORY\tTOTAL\t")
	var grand core.Amount
	for _, t := range totals {
		fmt.Fprintf(w, "%s\t%s\t\n", t.Category, formatAmount(t.TotalAmount, a.currency))
		grand = grand.Add(t.TotalAmount)
	}
	fmt.Fprintf(w, "\t%s\t\n", formatAmount(grand, a.currency))
	return w.Flush()
}

func (a *app) printCatalog(catalog map[string][]string) error {
	categories := make([]string, 0, len(catalog))
	for c := range catalog {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tSUBCATEGORIES")
	for _, c := range categories {
		fmt.Fprintf(w, "%s\t%s\n", c, strings.Join(catalog[c], ", "))
	}
	return w.Flush()
}

// formatAmount renders an amount with the currency's symbol and separators.
func formatAmount(amount core.Amount, currency string) string {
	return money.New(amount.Cents(), currency).Display()
}
