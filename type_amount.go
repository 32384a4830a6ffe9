package realized

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is an exact monetary value in the account currency: a price, a
// commission, a net cash amount or a realized gain.
//
// The engine is single currency, so Amount carries no currency code; the
// renderer attaches one for display.
type Amount struct {
	value decimal.Decimal
}

// A returns the Amount for value.
func A[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Amount {
	return Amount{value: newDecimal(value)}
}

// ParseAmount parses a decimal amount such as "-4.95".
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{value: v}, nil
}

func (m Amount) Equal(n Amount) bool       { return m.value.Equal(n.value) }
func (m Amount) IsZero() bool              { return m.value.IsZero() }
func (m Amount) IsPositive() bool          { return m.value.IsPositive() }
func (m Amount) IsNegative() bool          { return m.value.IsNegative() }
func (m Amount) LessThan(n Amount) bool    { return m.value.LessThan(n.value) }
func (m Amount) GreaterThan(n Amount) bool { return m.value.GreaterThan(n.value) }
func (m Amount) Neg() Amount               { return Amount{value: m.value.Neg()} }
func (m Amount) Abs() Amount               { return Amount{value: m.value.Abs()} }
func (m Amount) Add(n Amount) Amount       { return Amount{value: m.value.Add(n.value)} }
func (m Amount) Sub(n Amount) Amount       { return Amount{value: m.value.Sub(n.value)} }
func (m Amount) Mul(q Quantity) Amount     { return Amount{value: m.value.Mul(q.value)} }
func (m Amount) Div(q Quantity) Amount     { return Amount{value: m.value.Div(q.value)} }
func (m Amount) Decimal() decimal.Decimal  { return m.value }
func (m Amount) String() string            { return m.value.String() }

// StringFixed formats the amount rounded to places decimals.
func (m Amount) StringFixed(places int32) string { return m.value.StringFixed(places) }

func (m Amount) MarshalJSON() ([]byte, error) {
	return m.value.MarshalJSON()
}

func (m *Amount) UnmarshalJSON(decimalBytes []byte) error {
	return m.value.UnmarshalJSON(decimalBytes)
}
