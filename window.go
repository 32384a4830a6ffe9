package realized

import (
	"github.com/etnz/realized/date"
)

// Epoch locates a date relative to a Window.
type Epoch int

const (
	// PreBaseline dates are on or before the baseline; already reflected in it.
	PreBaseline Epoch = iota
	// CatchUp dates are strictly between the baseline and the window start.
	// They are replayed to keep the cost basis right, never realizing gains.
	CatchUp
	// Reporting dates are inside the window, boundaries included.
	Reporting
	// PostWindow dates are after the window end.
	PostWindow
)

func (e Epoch) String() string {
	switch e {
	case PreBaseline:
		return "pre-baseline"
	case CatchUp:
		return "catch-up"
	case Reporting:
		return "reporting"
	case PostWindow:
		return "post-window"
	default:
		return "unknown"
	}
}

// Window is a reporting range anchored on a baseline snapshot date.
type Window struct {
	Baseline date.Date  `json:"baseline"`
	Range    date.Range `json:"range"`
}

// Validate returns a *ConfigurationError unless the baseline is strictly
// before the window start and the window is not inverted.
func (w Window) Validate() error {
	if !w.Baseline.Before(w.Range.From) {
		return &ConfigurationError{Baseline: w.Baseline, Window: w.Range, Reason: "baseline date must be strictly before the window start"}
	}
	if w.Range.To.Before(w.Range.From) {
		return &ConfigurationError{Baseline: w.Baseline, Window: w.Range, Reason: "window end is before window start"}
	}
	return nil
}

// Epoch returns the epoch of d.
func (w Window) Epoch(d date.Date) Epoch {
	switch {
	case !d.After(w.Baseline):
		return PreBaseline
	case d.Before(w.Range.From):
		return CatchUp
	case !d.After(w.Range.To):
		return Reporting
	default:
		return PostWindow
	}
}

// Epochs partitions a transaction sequence for replay.
type Epochs struct {
	CatchUp   []Transaction // trades in (baseline, start)
	Reporting []Transaction // trades in [start, end]
	Dividends []Transaction // dividends in [start, end]
}

// Classify partitions txs, sorted by date, into the replay sets of w.
// Relative order is preserved within each set; other activities and
// transactions outside (baseline, end] are dropped.
func Classify(txs []Transaction, w Window) Epochs {
	var e Epochs
	for _, tx := range txs {
		epoch := w.Epoch(tx.Date)
		switch tx.Activity {
		case Trade:
			switch epoch {
			case CatchUp:
				e.CatchUp = append(e.CatchUp, tx)
			case Reporting:
				e.Reporting = append(e.Reporting, tx)
			}
		case Dividend:
			if epoch == Reporting {
				e.Dividends = append(e.Dividends, tx)
			}
		}
	}
	return e
}

// DefaultRange returns the window reported when none is given: from the day
// after the baseline to the last transaction date, or a single day if no
// transaction follows the baseline.
func DefaultRange(baseline date.Date, txs []Transaction) date.Range {
	r := date.Range{From: baseline.Add(1), To: baseline.Add(1)}
	for _, tx := range txs {
		if tx.Date.After(r.To) {
			r.To = tx.Date
		}
	}
	return r
}
