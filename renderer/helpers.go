package renderer

import (
	"bytes"
	"io"

	"github.com/Rhymond/go-money"
	"github.com/etnz/realized"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// Money formats an amount in the currency, rounded to its minor unit
// (e.g. "$1,234.50", "-$50.00").
func Money(a realized.Amount, currency string) string {
	// to get a never nil currency I need to call the Money constructor
	cur := money.New(0, currency).Currency()
	minor := a.Decimal().Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// SignedMoney is like Money but with an explicit sign, and "-" for zero.
func SignedMoney(a realized.Amount, currency string) string {
	switch {
	case a.IsZero():
		return "-"
	case a.IsPositive():
		return "+" + Money(a, currency)
	default:
		return Money(a, currency)
	}
}
