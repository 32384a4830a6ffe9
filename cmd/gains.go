package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/etnz/realized"
	"github.com/etnz/realized/renderer"
	"github.com/etnz/realized/store"
	"github.com/google/subcommands"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	data       dataFlags
	window     windowFlags
	strict     bool
	byCategory bool
	parallel   bool
	save       bool
	format     string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized gains and dividends over a window" }
func (*gainsCmd) Usage() string {
	return `rgc gains [-b <date>] [-s <date>] [-e <date>] [-period <period>] [-strict] [-by-category] [-format md|html|json] [-save]

  Replays the activities since the baseline and reports the gains realized
  and the dividends received within the window, per account category.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	c.data.SetFlags(f)
	c.window.SetFlags(f)
	f.BoolVar(&c.strict, "strict", false, "Abort on the first inconsistent sell instead of skipping it")
	f.BoolVar(&c.byCategory, "by-category", false, "Report each account category separately")
	f.BoolVar(&c.parallel, "parallel", false, "Compute account categories concurrently")
	f.BoolVar(&c.save, "save", false, "Archive the report in the configured database")
	f.StringVar(&c.format, "format", "md", "Output format (md, html, json)")
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "md" && c.format != "html" && c.format != "json" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
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

	opts := realized.Options{Policy: cfg.ComputePolicy(), Parallel: c.parallel}
	if c.strict {
		opts.Policy = realized.Strict
	}
	ctx = realized.WithLogger(ctx, slog.Default())

	// results in reporting order, a single merged one unless by category.
	var results []*realized.Result
	var report any
	var md string
	mode := store.Merged
	if c.byCategory {
		byCategory, err := realized.ComputeByCategory(ctx, baseline, txs, r, opts)
		if err != nil {
			return exitStatus(err)
		}
		for _, cat := range realized.Categories() {
			if res, ok := byCategory[cat]; ok {
				results = append(results, res)
			}
		}
		report, md, mode = byCategory, renderer.CategoriesMarkdown(byCategory, cfg.Currency), store.Category
	} else {
		res, err := realized.Compute(ctx, baseline, txs, r, opts)
		if err != nil {
			return exitStatus(err)
		}
		results = append(results, res)
		report, md = res, renderer.GainsMarkdown(res, cfg.Currency)
	}

	if c.save {
		if err := archive(ctx, cfg.DB, mode, results); err != nil {
			fmt.Fprintf(os.Stderr, "Error archiving report: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	switch c.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			return subcommands.ExitFailure
		}
	case "html":
		html, err := renderer.HTML(md)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Print(html)
	default:
		printMarkdown(md)
	}
	return subcommands.ExitSuccess
}

// archive saves results in the database at dsn.
func archive(ctx context.Context, dsn, mode string, results []*realized.Result) error {
	s, err := store.Open(dsn)
	if err != nil {
		return err
	}
	defer s.Close()
	for _, res := range results {
		report, err := s.Save(ctx, res, mode)
		if err != nil {
			return err
		}
		slog.Info("report archived", "id", report.ID, "window", res.Window.Range.String())
	}
	return nil
}
