// Command expensectl runs expense operations against the configured store
// without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/google/subcommands"

	"expensetracker/internal/cli"
)

var (
	textOutput = flag.Bool("text", false, "Print human readable tables instead of JSON.")
	verbose    = flag.Bool("v", false, "Write logs to stderr.")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	register(commander)

	flag.Parse()
	cli.LoadEnvFile()

	var logOut io.Writer = io.Discard
	if *verbose {
		logOut = os.Stderr
	}
	cfg, logger, err := cli.LoadAndValidateConfig(logOut)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitFailure))
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	result, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitFailure))
	}

	a := &app{
		svc:      result.Service,
		catalog:  result.Catalog,
		out:      os.Stdout,
		errOut:   os.Stderr,
		text:     *textOutput,
		currency: cfg.Currency,
	}
	status := commander.Execute(ctx, a)

	if err := result.Cleanup(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(int(status))
}

// register adds the expense commands to c.
func register(c *subcommands.Commander) {
	c.Register(&addCmd{}, "expenses")
	c.Register(&listCmd{}, "expenses")
	c.Register(&rangeCmd{}, "expenses")
	c.Register(&deleteCmd{}, "expenses")
	c.Register(&summaryCmd{}, "reports")
	c.Register(&categoriesCmd{}, "reports")
}
