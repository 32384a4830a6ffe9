package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/etnz/realized"
	"github.com/etnz/realized/renderer"
	"github.com/google/subcommands"
)

type positionsCmd struct {
	data   dataFlags
	window windowFlags
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the positions at the end of the window" }
func (*positionsCmd) Usage() string {
	return `rgc positions [-b <date>] [-e <date>]

  Displays the quantity and average cost of every position held at the end
  of the window, per account category.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	c.data.SetFlags(f)
	c.window.SetFlags(f)
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	baseline, txs, err := c.data.load(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	r, err := c.window.resolve(baseline.Date, txs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	ctx = realized.WithLogger(ctx, slog.Default())
	res, err := realized.Compute(ctx, baseline, txs, r, realized.Options{Policy: cfg.ComputePolicy()})
	if err != nil {
		return exitStatus(err)
	}
	printMarkdown(renderer.PositionsMarkdown(res, cfg.Currency))
	return subcommands.ExitSuccess
}
