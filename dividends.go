package realized

import "github.com/etnz/realized/date"

// Dividends returns the total net amount of dividend transactions dated within r.
func Dividends(txs []Transaction, r date.Range) Amount {
	var total Amount
	for _, tx := range txs {
		if tx.Activity == Dividend && r.Contains(tx.Date) {
			total = total.Add(tx.NetAmount)
		}
	}
	return total
}
