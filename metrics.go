package realized

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/etnz/realized/date"
	"golang.org/x/sync/errgroup"
)

// Stage is a step of a category computation.
type Stage int

const (
	Init Stage = iota
	CatchUpReplay
	WindowReplay
	Aggregate
	Done
	Failed
)

func (s Stage) String() string {
	switch s {
	case Init:
		return "init"
	case CatchUpReplay:
		return "catch-up replay"
	case WindowReplay:
		return "window replay"
	case Aggregate:
		return "aggregate"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options tunes a computation.
type Options struct {
	// Policy applied to data integrity errors. Lenient by default.
	Policy Policy
	// Parallel computes account categories concurrently. Results are identical.
	Parallel bool
	// Categories to compute, in reporting order. Defaults to Categories().
	Categories []AccountCategory
}

func (o Options) categories() []AccountCategory {
	if len(o.Categories) == 0 {
		return Categories()
	}
	return o.Categories
}

// CategorySummary holds the scalar metrics of one account category.
type CategorySummary struct {
	Category       AccountCategory `json:"category"`
	TotalRealized  Amount          `json:"totalRealized"`
	TotalDividends Amount          `json:"totalDividends"`
}

// Result is the outcome of a computation over a window.
//
// In merged mode Daily and Symbols accumulate every category; in
// per-category mode each Result only holds its own category.
type Result struct {
	Window    Window                         `json:"window"`
	Summary   []CategorySummary              `json:"summary"`
	Daily     []DailyRealized                `json:"dailyRealized"`
	Symbols   []SymbolRealized               `json:"dailyRealizedSymbols"`
	Positions map[AccountCategory][]Position `json:"positions"`
	Issues    []Issue                        `json:"issues"`
}

// TotalRealized returns the realized amount of all summarized categories.
func (r *Result) TotalRealized() Amount {
	var total Amount
	for _, s := range r.Summary {
		total = total.Add(s.TotalRealized)
	}
	return total
}

// TotalDividends returns the dividends of all summarized categories.
func (r *Result) TotalDividends() Amount {
	var total Amount
	for _, s := range r.Summary {
		total = total.Add(s.TotalDividends)
	}
	return total
}

// SymbolsOn returns the sells realized on day d.
func (r *Result) SymbolsOn(d date.Date) []SymbolRealized {
	var list []SymbolRealized
	for _, s := range r.Symbols {
		if s.Date == d {
			list = append(list, s)
		}
	}
	return list
}

// categoryResult is the computation of a single category.
type categoryResult struct {
	summary   CategorySummary
	gains     *gains
	positions []Position
	issues    []Issue
}

// Compute replays txs over baseline and returns the realized gains and
// dividends within r, all categories merged into a single Result.
//
// txs must be sorted by date (see SortTransactions) and carry their account
// category. The only errors are a *ConfigurationError, or with the Strict
// policy, the first *DataIntegrityError met.
func Compute(ctx context.Context, baseline Baseline, txs []Transaction, r date.Range, opts Options) (*Result, error) {
	w := Window{Baseline: baseline.Date, Range: r}
	results, err := computeAll(ctx, baseline, txs, w, opts)
	if err != nil {
		return nil, err
	}

	merged := &Result{
		Window:    w,
		Positions: make(map[AccountCategory][]Position, len(results)),
		Issues:    slices.Clone(baseline.Issues),
	}
	daily := newGains(r)
	for _, cr := range results {
		merged.Summary = append(merged.Summary, cr.summary)
		for i, d := range cr.gains.daily {
			daily.daily[i].Gain = daily.daily[i].Gain.Add(d.Gain)
			daily.daily[i].Loss = daily.daily[i].Loss.Add(d.Loss)
		}
		merged.Symbols = append(merged.Symbols, cr.gains.symbols...)
		merged.Positions[cr.summary.Category] = cr.positions
		merged.Issues = append(merged.Issues, cr.issues...)
	}
	merged.Daily = daily.daily
	slices.SortStableFunc(merged.Symbols, func(a, b SymbolRealized) int { return a.Date.Compare(b.Date) })
	return merged, nil
}

// ComputeByCategory is like Compute but returns one Result per account category.
func ComputeByCategory(ctx context.Context, baseline Baseline, txs []Transaction, r date.Range, opts Options) (map[AccountCategory]*Result, error) {
	w := Window{Baseline: baseline.Date, Range: r}
	results, err := computeAll(ctx, baseline, txs, w, opts)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[AccountCategory]*Result, len(results))
	for _, cr := range results {
		c := cr.summary.Category
		var issues []Issue
		for _, i := range baseline.Issues {
			if i.Category == c {
				issues = append(issues, i)
			}
		}
		byCategory[c] = &Result{
			Window:    w,
			Summary:   []CategorySummary{cr.summary},
			Daily:     cr.gains.daily,
			Symbols:   cr.gains.symbols,
			Positions: map[AccountCategory][]Position{c: cr.positions},
			Issues:    append(issues, cr.issues...),
		}
	}
	return byCategory, nil
}

// computeAll validates the window and computes every requested category, in order.
func computeAll(ctx context.Context, baseline Baseline, txs []Transaction, w Window, opts Options) ([]*categoryResult, error) {
	log := loggerFrom(ctx)
	if err := w.Validate(); err != nil {
		log.Error("computation aborted", "stage", Failed.String(), "error", err)
		return nil, err
	}

	categories := opts.categories()
	perCategory := make(map[AccountCategory][]Transaction, len(categories))
	for _, tx := range txs {
		perCategory[tx.Category] = append(perCategory[tx.Category], tx)
	}

	results := make([]*categoryResult, len(categories))
	compute := func(i int) error {
		c := categories[i]
		holdings, ok := baseline.Holdings[c]
		cr, err := computeCategory(log.With("category", c.String()), c, holdings, perCategory[c], w, opts.Policy)
		if err != nil {
			return err
		}
		if !ok && !hasBaselineIssue(baseline.Issues, c) {
			cr.issues = append([]Issue{MissingBaselineWarning(baseline.Date, c, fmt.Errorf("no baseline holdings for %s", c))}, cr.issues...)
		}
		results[i] = cr
		return nil
	}

	if !opts.Parallel {
		for i := range categories {
			if err := compute(i); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	// every category runs to completion, the error reported is the first in
	// category order, as in the sequential mode.
	var g errgroup.Group
	errs := make([]error, len(categories))
	for i := range categories {
		g.Go(func() error {
			errs[i] = compute(i)
			return nil
		})
	}
	g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// computeCategory runs the stages of a single category on its own ledger.
func computeCategory(log *slog.Logger, c AccountCategory, holdings Holdings, txs []Transaction, w Window, policy Policy) (*categoryResult, error) {
	log.Debug("stage", "stage", Init.String(), "positions", len(holdings), "transactions", len(txs))
	rp := &replay{ledger: NewLedger(c, holdings), policy: policy, log: log}
	epochs := Classify(txs, w)

	log.Debug("stage", "stage", CatchUpReplay.String(), "trades", len(epochs.CatchUp))
	if err := rp.catchUp(epochs.CatchUp); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", c, CatchUpReplay, err)
	}

	log.Debug("stage", "stage", WindowReplay.String(), "trades", len(epochs.Reporting))
	g := newGains(w.Range)
	if err := rp.window(epochs.Reporting, g); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", c, WindowReplay, err)
	}

	log.Debug("stage", "stage", Aggregate.String(), "sells", len(g.symbols), "dividends", len(epochs.Dividends))
	cr := &categoryResult{
		summary: CategorySummary{
			Category:       c,
			TotalRealized:  g.total,
			TotalDividends: Dividends(epochs.Dividends, w.Range),
		},
		gains:     g,
		positions: slices.Collect(rp.ledger.Positions()),
		issues:    rp.issues,
	}
	log.Debug("stage", "stage", Done.String(), "realized", cr.summary.TotalRealized.String(), "issues", len(cr.issues))
	return cr, nil
}

func hasBaselineIssue(issues []Issue, c AccountCategory) bool {
	for _, i := range issues {
		if i.Kind == IssueMissingBaseline && i.Category == c {
			return true
		}
	}
	return false
}

type loggerKey struct{}

// WithLogger returns a context carrying the logger used by computations.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return slog.Default()
}
