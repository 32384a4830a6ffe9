package realized

import (
	"iter"
	"maps"
	"slices"

	"github.com/etnz/realized/date"
)

// Ledger tracks the positions of one account category using a single
// weighted average cost per symbol.
//
// A Ledger is owned by a single computation, it is not safe for concurrent use.
type Ledger struct {
	category  AccountCategory
	positions map[string]Position
	// cost is the total cost of each position, the cost basis of a sale is
	// cost * sold / held.
	cost map[string]Amount
}

// NewLedger returns a ledger for category seeded with baseline positions.
// Symbols absent from baseline start at zero quantity. baseline is copied.
func NewLedger(category AccountCategory, baseline Holdings) *Ledger {
	l := &Ledger{
		category:  category,
		positions: make(map[string]Position, len(baseline)),
		cost:      make(map[string]Amount, len(baseline)),
	}
	for symbol, p := range baseline {
		p.Symbol = symbol
		l.positions[symbol] = p
		l.cost[symbol] = p.TotalCost()
	}
	return l
}

// Category returns the account category of the ledger.
func (l *Ledger) Category() AccountCategory { return l.category }

// Position returns the current position on symbol and whether it is tracked.
func (l *Ledger) Position(symbol string) (Position, bool) {
	p, ok := l.positions[symbol]
	return p, ok
}

// Positions returns an iterator over tracked positions in symbol order.
func (l *Ledger) Positions() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for _, symbol := range slices.Sorted(maps.Keys(l.positions)) {
			if !yield(l.positions[symbol]) {
				return
			}
		}
	}
}

// Buy adds quantity shares bought at price, re-averaging the cost basis.
// The commission is part of the cost. A zero quantity is ignored.
func (l *Ledger) Buy(symbol string, quantity Quantity, price, commission Amount) {
	if quantity.IsZero() {
		return
	}
	p, ok := l.positions[symbol]
	if !ok {
		p = Position{Symbol: symbol}
	}
	cost := l.cost[symbol].Add(price.Mul(quantity)).Add(commission)
	p.Quantity = p.Quantity.Add(quantity)
	p.AverageCost = cost.Div(p.Quantity)
	l.positions[symbol] = p
	l.cost[symbol] = cost
}

// Reduce removes quantity shares without realizing any gain.
//
// It returns a *DataIntegrityError, and leaves the ledger unchanged, if the
// symbol is not tracked or holds less than quantity.
func (l *Ledger) Reduce(on date.Date, symbol string, quantity Quantity) error {
	p, err := l.check(on, symbol, quantity)
	if err != nil || quantity.IsZero() {
		return err
	}
	l.remove(p, quantity)
	return nil
}

// SellRealize removes quantity shares sold at price and returns the realized
// gain (positive) or loss (negative):
//
//	(price*quantity - commission) - averageCost*quantity
//
// The average cost is left unchanged. Preconditions and errors are those of Reduce.
func (l *Ledger) SellRealize(on date.Date, symbol string, quantity Quantity, price, commission Amount) (Amount, error) {
	p, err := l.check(on, symbol, quantity)
	if err != nil {
		return Amount{}, err
	}
	if quantity.IsZero() {
		return Amount{}, nil
	}
	proceeds := price.Mul(quantity).Sub(commission)
	return proceeds.Sub(l.remove(p, quantity)), nil
}

// remove takes quantity shares out of p and returns their cost basis. The
// average cost is unchanged.
func (l *Ledger) remove(p Position, quantity Quantity) Amount {
	cost := l.cost[p.Symbol]
	basis := cost
	if !quantity.Equal(p.Quantity) {
		basis = cost.Mul(quantity).Div(p.Quantity)
	}
	p.Quantity = p.Quantity.Sub(quantity)
	l.positions[p.Symbol] = p
	l.cost[p.Symbol] = cost.Sub(basis)
	return basis
}

// check returns the position a sell of quantity symbol can be applied to.
func (l *Ledger) check(on date.Date, symbol string, quantity Quantity) (Position, error) {
	if quantity.IsZero() {
		return l.positions[symbol], nil
	}
	p, ok := l.positions[symbol]
	if !ok {
		return p, &DataIntegrityError{Date: on, Category: l.category, Symbol: symbol, Requested: quantity, err: ErrUnknownSymbol}
	}
	if p.Quantity.LessThan(quantity) {
		return p, &DataIntegrityError{Date: on, Category: l.category, Symbol: symbol, Requested: quantity, Held: p.Quantity, err: ErrInsufficientQuantity}
	}
	return p, nil
}
