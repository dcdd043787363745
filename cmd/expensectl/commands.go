package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"expensetracker/internal/core"
)

var errMissingFlag = errors.New("missing required flag")

func requireFlags(f *flag.FlagSet, names ...string) error {
	set := map[string]bool{}
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	for _, name := range names {
		if !set[name] {
			return fmt.Errorf("%w -%s", errMissingFlag, name)
		}
	}
	return nil
}

func parseRange(start, end string) (core.Date, core.Date, error) {
	s, err := core.ParseDate(start)
	if err != nil {
		return core.Date{}, core.Date{}, fmt.Errorf("start date: %w", err)
	}
	e, err := core.ParseDate(end)
	if err != nil {
		return core.Date{}, core.Date{}, fmt.Errorf("end date: %w", err)
	}
	return s, e, nil
}

type addCmd struct {
	date, amount, category, subcategory, note string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a new expense" }
func (*addCmd) Usage() string {
	return `expensectl add -d <YYYY-MM-DD> -a <amount> -c <category> -s <subcategory> [-n <note>]

  Stores one expense and prints its id.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the expense (YYYY-MM-DD).")
	f.StringVar(&c.amount, "a", "", "Amount, rounded to 2 decimal places.")
	f.StringVar(&c.category, "c", "", "Category.")
	f.StringVar(&c.subcategory, "s", "", "Subcategory.")
	f.StringVar(&c.note, "n", "", "Free text note.")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if err := requireFlags(f, "d", "a", "c", "s"); err != nil {
		a.fail(err)
		return subcommands.ExitUsageError
	}
	date, err := core.ParseDate(c.date)
	if err != nil {
		a.fail(err)
		return subcommands.ExitUsageError
	}
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		a.fail(err)
		return subcommands.ExitUsageError
	}

	res, err := a.svc.Add(ctx, core.NewExpense(date, amount, c.category, c.subcategory, c.note))
	if err != nil {
		a.fail(err)
		return subcommands.ExitFailure
	}
	if err := a.print(res); err != nil {
		a.fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type listCmd struct{}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list every expense in insertion order" }
func (*listCmd) Usage() string {
	return `expensectl list
`
}
func (*listCmd) SetFlags(*flag.FlagSet) {}

func (*listCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	expenses, err := a.svc.ListAll(ctx)
	if err != nil {
		a.fail(err)
		return subcommands.ExitFailure
	}
	if err := a.print(nonNil(expenses)); err != nil {
		a.fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type rangeCmd struct {
	start, end string
}

func (*rangeCmd) Name() string     { return "range" }
func (*rangeCmd) Synopsis() string { return "list expenses dated within an inclusive range" }
func (*rangeCmd) Usage() string {
	return `expensectl range -s <start_date> -e <end_date>
`
}

func (c *rangeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "First date of the range (YYYY-MM-DD).")
	f.StringVar(&c.end, "e", "", "Last date of the range (YYYY-MM-DD).")
}

func (c *rangeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if err := requireFlags(f, "s", "e"); err != nil {
		a.fail(err)
		return subcommands.ExitUsageError
	}
	start, end, err := parseRange(c.start, c.end)
	if err != nil {
		a.fail(err)
		return subcommands.ExitUsageError
	}

	expenses, err := a.svc.ListByDateRange(ctx, start, end)
	if err != nil {
		a.fail(err)
		return subcommands.ExitFailure
	}
	if err := a.print(nonNil(expenses)); err != nil {
		a.fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	date, amount, note string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete every expense matching date, amount and note" }
func (*deleteCmd) Usage() string {
	return `expensectl delete -d <YYYY-MM-DD> -a <amount> -n <note>

  Removes all matching expenses and prints how many were removed.
  Pass -n '' to match expenses without a note.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the expenses (YYYY-MM-DD).")
	f.StringVar(&c.amount, "a", "", "Amount, rounded to 2 decimal places.")
	f.StringVar(&c.note, "n", "", "Note, matched exactly.")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if err := requireFlags(f, "d", "a", "n"); err != nil {
		a.fail(err)
		return subcommands.ExitUsageError
	}
	date, err := core.ParseDate(c.date)
	if err != nil {
		a.fail(err)
		return subcommands.ExitUsageError
	}
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		a.fail(err)
		return subcommands.ExitUsageError
	}

	res, err := a.svc.Delete(ctx, date, amount, c.note)
	if err != nil {
		a.fail(err)
		return subcommands.ExitFailure
	}
	if err := a.print(res); err != nil {
		a.fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	start, end, category string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "total expenses per category over a date range" }
func (*summaryCmd) Usage() string {
	return `expensectl summary -s <start_date> -e <end_date> [-c <category>]
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "First date of the range (YYYY-MM-DD).")
	f.StringVar(&c.end, "e", "", "Last date of the range (YYYY-MM-DD).")
	f.StringVar(&c.category, "c", "", "Only total this category. Empty means every category.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if err := requireFlags(f, "s", "e"); err != nil {
		a.fail(err)
		return subcommands.ExitUsageError
	}
	start, end, err := parseRange(c.start, c.end)
	if err != nil {
		a.fail(err)
		return subcommands.ExitUsageError
	}

	var category *string
	if c.category != "" {
		category = &c.category
	}

	totals, err := a.svc.SummarizeByCategory(ctx, start, end, category)
	if err != nil {
		a.fail(err)
		return subcommands.ExitFailure
	}
	if err := a.print(nonNil(totals)); err != nil {
		a.fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type categoriesCmd struct{}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "print the category catalog document" }
func (*categoriesCmd) Usage() string {
	return `expensectl categories
`
}
func (*categoriesCmd) SetFlags(*flag.FlagSet) {}

func (*categoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if a.text && a.catalog != nil {
		catalog, err := a.catalog.Decode(ctx)
		if err != nil {
			a.fail(err)
			return subcommands.ExitFailure
		}
		if err := a.printCatalog(catalog); err != nil {
			a.fail(err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	doc, err := a.svc.Categories(ctx)
	if err != nil {
		a.fail(err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(a.out, doc)
	return subcommands.ExitSuccess
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
