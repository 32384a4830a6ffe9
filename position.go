package realized

import (
	"maps"
	"slices"

	"github.com/etnz/realized/date"
)

// Position is the holding of a single symbol: a quantity and its weighted
// average cost per share. AverageCost is meaningless when Quantity is zero.
type Position struct {
	Symbol      string   `json:"symbol"`
	Quantity    Quantity `json:"quantity"`
	AverageCost Amount   `json:"averageCost"`
}

// TotalCost returns the cost basis of the whole position.
func (p Position) TotalCost() Amount { return p.AverageCost.Mul(p.Quantity) }

// Holdings maps a symbol to its position.
type Holdings map[string]Position

// Baseline is a snapshot of holdings per account category, as of Date.
//
// Issues lists problems met while loading it, typically missing account
// files; they are reported with every result computed from the baseline.
type Baseline struct {
	Date     date.Date
	Holdings map[AccountCategory]Holdings
	Issues   []Issue
}

// NewBaseline returns an empty baseline as of on.
func NewBaseline(on date.Date) Baseline {
	return Baseline{Date: on, Holdings: make(map[AccountCategory]Holdings)}
}

// Category returns the holdings of category c, nil if it has none.
func (b Baseline) Category(c AccountCategory) Holdings { return b.Holdings[c] }

// Add merges positions into category c. Positions on the same symbol are
// merged by summing quantities and total costs.
func (b Baseline) Add(c AccountCategory, positions ...Position) {
	h := b.Holdings[c]
	if h == nil {
		h = make(Holdings)
		b.Holdings[c] = h
	}
	for _, p := range positions {
		if prev, exists := h[p.Symbol]; exists {
			p = MergePositions(prev, p)
		}
		h[p.Symbol] = p
	}
}

// MergePositions combines two positions on the same symbol held in different
// accounts (e.g. TFSA and RRSP). The merged average cost is the total cost
// divided by the total quantity.
func MergePositions(a, b Position) Position {
	total := a.Quantity.Add(b.Quantity)
	if total.IsZero() {
		return Position{Symbol: a.Symbol}
	}
	cost := a.TotalCost().Add(b.TotalCost())
	return Position{Symbol: a.Symbol, Quantity: total, AverageCost: cost.Div(total)}
}

// Symbols returns the held symbols in alphabetical order.
func (h Holdings) Symbols() []string {
	return slices.Sorted(maps.Keys(h))
}
