package realized

import (
	"fmt"
	"slices"

	"github.com/etnz/realized/date"
)

// Transaction is a single normalized brokerage activity row.
//
// Quantity and Commission are unsigned: ingestion strips the broker's sign
// convention, the direction is carried by Action.
type Transaction struct {
	Date       date.Date       `json:"date"`
	Activity   ActivityType    `json:"-"`
	Action     Action          `json:"-"`
	Symbol     string          `json:"symbol"`
	Quantity   Quantity        `json:"quantity"`
	Price      Amount          `json:"price"`
	Commission Amount          `json:"commission"`
	NetAmount  Amount          `json:"netAmount"`
	Category   AccountCategory `json:"category"`
}

// NewBuy returns a Trade transaction buying quantity shares of symbol.
func NewBuy(on date.Date, category AccountCategory, symbol string, quantity, price, commission float64) Transaction {
	return Transaction{
		Date:       on,
		Activity:   Trade,
		Action:     Buy,
		Symbol:     symbol,
		Quantity:   Q(quantity),
		Price:      A(price),
		Commission: A(commission),
		NetAmount:  A(-quantity*price - commission),
		Category:   category,
	}
}

// NewSell returns a Trade transaction selling quantity shares of symbol.
func NewSell(on date.Date, category AccountCategory, symbol string, quantity, price, commission float64) Transaction {
	return Transaction{
		Date:       on,
		Activity:   Trade,
		Action:     Sell,
		Symbol:     symbol,
		Quantity:   Q(quantity),
		Price:      A(price),
		Commission: A(commission),
		NetAmount:  A(quantity*price - commission),
		Category:   category,
	}
}

// NewDividend returns a Dividend transaction paying net on symbol.
func NewDividend(on date.Date, category AccountCategory, symbol string, net float64) Transaction {
	return Transaction{
		Date:      on,
		Activity:  Dividend,
		Symbol:    symbol,
		NetAmount: A(net),
		Category:  category,
	}
}

func (tx Transaction) String() string {
	switch tx.Activity {
	case Trade:
		return fmt.Sprintf("%s %s %s %s %s@%s", tx.Date, tx.Category, tx.Action, tx.Symbol, tx.Quantity, tx.Price)
	default:
		return fmt.Sprintf("%s %s %s %s %s", tx.Date, tx.Category, tx.Activity, tx.Symbol, tx.NetAmount)
	}
}

// SortTransactions sorts txs by ascending date, keeping the relative order of
// transactions on the same day.
func SortTransactions(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int { return a.Date.Compare(b.Date) })
}

// IsSorted reports whether txs are in ascending date order.
func IsSorted(txs []Transaction) bool {
	return slices.IsSortedFunc(txs, func(a, b Transaction) int { return a.Date.Compare(b.Date) })
}
