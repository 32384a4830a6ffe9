// Package cmd implements the CLI application to report realized gains.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/etnz/realized"
	"github.com/etnz/realized/config"
	"github.com/etnz/realized/date"
	"github.com/etnz/realized/ingest"
	"github.com/etnz/realized/logging"
	"github.com/google/subcommands"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", config.DefaultFile, "Path to the configuration file (YAML)")

// commands lists the subcommands and their group, in registration order.
var commands = []struct {
	cmd   subcommands.Command
	group string
}{
	{&gainsCmd{}, "reports"},
	{&positionsCmd{}, "reports"},
	{&historyCmd{}, "archive"},
	{&serveCmd{}, "server"},
	{&topicCmd{}, "help"},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, e := range commands {
		c.Register(e.cmd, e.group)
	}
}

// loadConfig loads the application configuration and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logging.New(cfg.Log))
	return cfg, nil
}

// dataFlags select the baseline and the activities to replay.
type dataFlags struct {
	baseline   string
	activities string
}

func (d *dataFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&d.baseline, "b", "", "Baseline snapshot date. Defaults to the configured baseline_date.")
	f.StringVar(&d.activities, "a", "", "Comma separated activity files (CSV or JSON). Defaults to the configured activities.")
}

// load reads the baseline snapshot and the activities.
func (d *dataFlags) load(cfg *config.Config) (realized.Baseline, []realized.Transaction, error) {
	on := cfg.Baseline()
	if d.baseline != "" {
		var err error
		if on, err = date.Parse(d.baseline); err != nil {
			return realized.Baseline{}, nil, fmt.Errorf("parsing baseline date: %w", err)
		}
	}
	if on.IsZero() {
		return realized.Baseline{}, nil, errors.New("no baseline date, use -b or baseline_date")
	}

	b, err := ingest.ReadBaseline(cfg.BaselineDir, on)
	if err != nil {
		return b, nil, err
	}

	activities := cfg.Activities
	if d.activities != "" {
		activities = d.activities
	}
	var names []string
	for _, name := range strings.Split(activities, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return b, nil, errors.New("no activities configured, use -a or activities")
	}
	txs, err := ingest.ReadActivitiesFiles(names, cfg.Filter)
	if err != nil {
		return b, nil, err
	}
	slog.Debug("data loaded", "baseline", on.String(), "transactions", len(txs))
	return b, txs, nil
}

// windowFlags select the reporting window.
type windowFlags struct {
	period string
	start  string
	end    string
}

func (w *windowFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&w.period, "period", "", "Predefined period (day, week, month, quarter, year) ending on -e")
	f.StringVar(&w.start, "s", "", "Start date of the reporting window. Defaults to the day after the baseline.")
	f.StringVar(&w.end, "e", "", "End date of the reporting window. Defaults to the last transaction date.")
}

// resolve returns the reporting window, defaults computed from the baseline and txs.
func (w *windowFlags) resolve(baseline date.Date, txs []realized.Transaction) (date.Range, error) {
	if w.start != "" && w.period != "" {
		return date.Range{}, errors.New("-s and -period flags cannot be used together")
	}
	r := realized.DefaultRange(baseline, txs)
	if w.end != "" {
		end, err := date.Parse(w.end)
		if err != nil {
			return r, fmt.Errorf("parsing end date: %w", err)
		}
		r.To = end
	}
	if w.start != "" {
		start, err := date.Parse(w.start)
		if err != nil {
			return r, fmt.Errorf("parsing start date: %w", err)
		}
		r.From = start
	}
	if w.period != "" {
		p, err := date.ParsePeriod(w.period)
		if err != nil {
			return r, fmt.Errorf("parsing period: %w", err)
		}
		r = p.Range(r.To)
	}
	return r, nil
}

// exitStatus prints err and maps it to the exit status.
func exitStatus(err error) subcommands.ExitStatus {
	var ce *realized.ConfigurationError
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.As(err, &ce) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}
