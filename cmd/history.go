package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/realized/store"
	"github.com/google/subcommands"
)

type historyCmd struct {
	limit int
	id    string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list archived reports" }
func (*historyCmd) Usage() string {
	return `rgc history [-n <count>] | -id <report>

  Lists the reports archived with 'gains -save', most recent first, or
  prints one of them as JSON.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "maximum number of reports to list, 0 for all")
	f.StringVar(&c.id, "id", "", "report to print")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	s, err := store.Open(cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening archive %q: %v\n", cfg.DB, err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	if c.id != "" {
		report, err := s.Get(ctx, c.id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		var out bytes.Buffer
		if err := json.Indent(&out, report.Payload, "", "  "); err != nil {
			fmt.Fprintf(os.Stderr, "Error decoding report %s: %v\n", c.id, err)
			return subcommands.ExitFailure
		}
		fmt.Println(out.String())
		return subcommands.ExitSuccess
	}

	reports, err := s.List(ctx, c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(historyMarkdown(reports))
	return subcommands.ExitSuccess
}

func historyMarkdown(reports []store.Report) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Archived Reports\n\n")
	fmt.Fprintln(&b, "| Id | Archived | Baseline | Period | Window | Mode | Realized | Dividends | Issues |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|:---|---:|---:|---:|")
	for _, r := range reports {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s..%s | %s | %s | %s | %d |\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Baseline, r.Period, r.From, r.To, r.Mode, r.TotalRealized, r.TotalDividends, r.Issues)
	}
	return b.String()
}
