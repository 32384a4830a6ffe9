package realized

import (
	"errors"
	"log/slog"

	"github.com/etnz/realized/date"
)

// DailyRealized is the realized gain and loss booked on one day.
type DailyRealized struct {
	Date date.Date `json:"date"`
	Gain Amount    `json:"realizedGain"` // >= 0
	Loss Amount    `json:"realizedLoss"` // <= 0
}

// Net returns Gain + Loss.
func (d DailyRealized) Net() Amount { return d.Gain.Add(d.Loss) }

// IsZero reports whether nothing was realized that day.
func (d DailyRealized) IsZero() bool { return d.Gain.IsZero() && d.Loss.IsZero() }

// SymbolRealized is the signed amount realized by a single sell.
type SymbolRealized struct {
	Date     date.Date       `json:"date"`
	Symbol   string          `json:"symbol"`
	Category AccountCategory `json:"category"`
	Amount   Amount          `json:"realizedAmount"`
}

// gains accumulates realized amounts over a reporting range.
//
// daily is dense: daily[i] is the bucket of range.From+i.
type gains struct {
	window  date.Range
	daily   []DailyRealized
	symbols []SymbolRealized
	total   Amount
}

func newGains(r date.Range) *gains {
	g := &gains{window: r, daily: make([]DailyRealized, 0, r.Len())}
	for d := range r.Days() {
		g.daily = append(g.daily, DailyRealized{Date: d})
	}
	return g
}

// record books the amount realized by tx.
func (g *gains) record(tx Transaction, realized Amount) {
	i := tx.Date.DaysSince(g.window.From)
	if realized.IsPositive() {
		g.daily[i].Gain = g.daily[i].Gain.Add(realized)
	} else {
		g.daily[i].Loss = g.daily[i].Loss.Add(realized)
	}
	g.symbols = append(g.symbols, SymbolRealized{Date: tx.Date, Symbol: tx.Symbol, Category: tx.Category, Amount: realized})
	g.total = g.total.Add(realized)
}

// replay drives a category ledger through its catch-up and reporting trades.
type replay struct {
	ledger *Ledger
	policy Policy
	issues []Issue
	log    *slog.Logger
}

// catchUp applies trades between the baseline and the window start. Sells
// only reduce quantities: their gain predates the window.
func (r *replay) catchUp(txs []Transaction) error {
	for _, tx := range txs {
		switch tx.Action {
		case Buy:
			r.ledger.Buy(tx.Symbol, tx.Quantity.Abs(), tx.Price, tx.Commission.Abs())
		case Sell:
			if err := r.ledger.Reduce(tx.Date, tx.Symbol, tx.Quantity.Abs()); err != nil {
				if err := r.fail(tx, CatchUp, err); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// window applies trades inside the reporting window, booking every sell into g.
func (r *replay) window(txs []Transaction, g *gains) error {
	for _, tx := range txs {
		switch tx.Action {
		case Buy:
			r.ledger.Buy(tx.Symbol, tx.Quantity.Abs(), tx.Price, tx.Commission.Abs())
		case Sell:
			realized, err := r.ledger.SellRealize(tx.Date, tx.Symbol, tx.Quantity.Abs(), tx.Price, tx.Commission.Abs())
			if err != nil {
				if err := r.fail(tx, Reporting, err); err != nil {
					return err
				}
				continue
			}
			g.record(tx, realized)
		}
	}
	return nil
}

// fail applies the policy to a ledger error. It returns err to abort the
// replay, nil when the transaction is skipped.
func (r *replay) fail(tx Transaction, epoch Epoch, err error) error {
	var die *DataIntegrityError
	if errors.As(err, &die) {
		die.Epoch = epoch
	}
	if r.policy == Strict {
		return err
	}
	r.log.Warn("skipping transaction", "transaction", tx.String(), "epoch", epoch.String(), "error", err)
	r.issues = append(r.issues, Issue{Kind: IssueDataIntegrity, Date: tx.Date, Category: r.ledger.Category(), Symbol: tx.Symbol, Err: err})
	return nil
}
