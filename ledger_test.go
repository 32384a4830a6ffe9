package realized

import (
	"errors"
	"testing"

	"github.com/etnz/realized/date"
	"github.com/google/go-cmp/cmp"
)

func TestLedger_Buy(t *testing.T) {
	testCases := []struct {
		name     string
		baseline Holdings
		qty      float64
		price    float64
		comm     float64
		want     Position
	}{
		{
			name: "Unseen symbol",
			qty:  10, price: 100, comm: 10,
			want: Position{Symbol: "AAPL", Quantity: Q(10), AverageCost: A(101)}, // (1000+10)/10
		},
		{
			name:     "Re-average an existing position",
			baseline: Holdings{"AAPL": {Quantity: Q(10), AverageCost: A(10)}},
			qty:      10, price: 100, comm: 10,
			want: Position{Symbol: "AAPL", Quantity: Q(20), AverageCost: A(55.5)}, // (10*10 + 1010)/20
		},
		{
			name:     "Position closed in the baseline",
			baseline: Holdings{"AAPL": {Quantity: Q(0), AverageCost: A(999)}},
			qty:      4, price: 25, comm: 0,
			want: Position{Symbol: "AAPL", Quantity: Q(4), AverageCost: A(25)},
		},
		{
			name:     "Zero quantity is ignored",
			baseline: Holdings{"AAPL": {Quantity: Q(3), AverageCost: A(7)}},
			qty:      0, price: 100, comm: 5,
			want: Position{Symbol: "AAPL", Quantity: Q(3), AverageCost: A(7)},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger(Margin, tc.baseline)
			l.Buy("AAPL", Q(tc.qty), A(tc.price), A(tc.comm))
			got, _ := l.Position("AAPL")
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Buy() position mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLedger_Buy_Formula(t *testing.T) {
	// new average = (oldAvg*oldQty + q*p + c) / (oldQty + q)
	oldQty, oldAvg := Q(7), A(12.34)
	q, p, c := Q(3), A(20.5), A(4.95)

	l := NewLedger(Margin, Holdings{"X": {Quantity: oldQty, AverageCost: oldAvg}})
	l.Buy("X", q, p, c)

	got, _ := l.Position("X")
	wantQty := oldQty.Add(q)
	wantAvg := oldAvg.Mul(oldQty).Add(p.Mul(q)).Add(c).Div(wantQty)
	if !got.Quantity.Equal(wantQty) {
		t.Errorf("Quantity = %v, want %v", got.Quantity, wantQty)
	}
	if !got.AverageCost.Equal(wantAvg) {
		t.Errorf("AverageCost = %v, want %v", got.AverageCost, wantAvg)
	}
}

func TestLedger_SellRealize(t *testing.T) {
	on := date.MustParse("2025-01-15")

	// Scenario A: buy 10@100 with 10 commission, sell 5@150 with 5 commission.
	l := NewLedger(TFSARRSP, nil)
	l.Buy("AAPL", Q(10), A(100), A(10))
	got, err := l.SellRealize(on, "AAPL", Q(5), A(150), A(5))
	if err != nil {
		t.Fatalf("SellRealize() error = %v", err)
	}
	if want := A(240); !got.Equal(want) { // (750-5) - 101*5
		t.Errorf("SellRealize() = %v, want %v", got, want)
	}

	p, _ := l.Position("AAPL")
	if !p.Quantity.Equal(Q(5)) {
		t.Errorf("Quantity after sell = %v, want 5", p.Quantity)
	}
	if !p.AverageCost.Equal(A(101)) {
		t.Errorf("AverageCost after sell = %v, want 101 (unchanged)", p.AverageCost)
	}

	// Selling the rest at a loss.
	got, err = l.SellRealize(on, "AAPL", Q(5), A(90), A(5))
	if err != nil {
		t.Fatalf("SellRealize() error = %v", err)
	}
	if want := A(-60); !got.Equal(want) { // (450-5) - 505
		t.Errorf("SellRealize() = %v, want %v", got, want)
	}
	if p, _ := l.Position("AAPL"); !p.Quantity.IsZero() {
		t.Errorf("Quantity after selling all = %v, want 0", p.Quantity)
	}
}

func TestLedger_SellRealize_ClosingIsExact(t *testing.T) {
	on := date.MustParse("2025-01-15")
	testCases := []struct {
		name  string
		sells []float64
	}{
		{name: "Sell all at once", sells: []float64{3}},
		{name: "Sell in two steps", sells: []float64{1, 2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// 3 shares for a total cost of 4, an average cost of 1.333...
			l := NewLedger(Margin, nil)
			l.Buy("X", Q(3), A(1), A(1))
			var total Amount
			for _, q := range tc.sells {
				got, err := l.SellRealize(on, "X", Q(q), A(2), A(0))
				if err != nil {
					t.Fatalf("SellRealize() error = %v", err)
				}
				total = total.Add(got)
			}
			if want := A(2); !total.Equal(want) {
				t.Errorf("realized = %v, want %v", total, want)
			}
		})
	}
}

func TestLedger_SellErrors(t *testing.T) {
	on := date.MustParse("2025-02-01")
	baseline := Holdings{"AAPL": {Quantity: Q(10), AverageCost: A(10)}}

	testCases := []struct {
		name    string
		symbol  string
		qty     float64
		wantErr error
	}{
		{"Scenario B: more than held", "AAPL", 15, ErrInsufficientQuantity},
		{"Scenario C: unknown symbol", "MSFT", 1, ErrUnknownSymbol},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for name, sell := range map[string]func(*Ledger) error{
				"SellRealize": func(l *Ledger) error {
					_, err := l.SellRealize(on, tc.symbol, Q(tc.qty), A(150), A(5))
					return err
				},
				"Reduce": func(l *Ledger) error { return l.Reduce(on, tc.symbol, Q(tc.qty)) },
			} {
				l := NewLedger(Margin, baseline)
				err := sell(l)
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("%s() error = %v, want %v", name, err, tc.wantErr)
				}
				var die *DataIntegrityError
				if !errors.As(err, &die) {
					t.Fatalf("%s() error %T is not a *DataIntegrityError", name, err)
				}
				if die.Symbol != tc.symbol || die.Category != Margin || die.Date != on {
					t.Errorf("%s() error = %+v, want symbol %s in %s on %s", name, die, tc.symbol, Margin, on)
				}
				p, _ := l.Position("AAPL")
				if !p.Quantity.Equal(Q(10)) || !p.AverageCost.Equal(A(10)) {
					t.Errorf("%s() changed the ledger: %+v", name, p)
				}
				if _, ok := l.Position("MSFT"); ok {
					t.Errorf("%s() started tracking MSFT", name)
				}
			}
		})
	}
}

func TestLedger_Reduce(t *testing.T) {
	l := NewLedger(Margin, Holdings{"AAPL": {Quantity: Q(10), AverageCost: A(10)}})
	if err := l.Reduce(date.MustParse("2025-01-02"), "AAPL", Q(4)); err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	got, _ := l.Position("AAPL")
	want := Position{Symbol: "AAPL", Quantity: Q(6), AverageCost: A(10)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reduce() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewLedger_CopiesBaseline(t *testing.T) {
	baseline := Holdings{"AAPL": {Quantity: Q(10), AverageCost: A(10)}}
	l := NewLedger(Margin, baseline)
	l.Buy("AAPL", Q(10), A(30), A(0))
	l.Buy("GOOG", Q(1), A(30), A(0))

	if !baseline["AAPL"].Quantity.Equal(Q(10)) {
		t.Errorf("baseline mutated: %+v", baseline["AAPL"])
	}
	if _, ok := baseline["GOOG"]; ok {
		t.Errorf("baseline gained GOOG")
	}

	var symbols []string
	for p := range l.Positions() {
		symbols = append(symbols, p.Symbol)
	}
	if diff := cmp.Diff([]string{"AAPL", "GOOG"}, symbols); diff != "" {
		t.Errorf("Positions() order mismatch (-want +got):\n%s", diff)
	}
}

func TestMergePositions(t *testing.T) {
	tfsa := Position{Symbol: "AAPL", Quantity: Q(10), AverageCost: A(100)}
	rrsp := Position{Symbol: "AAPL", Quantity: Q(30), AverageCost: A(200)}
	got := MergePositions(tfsa, rrsp)
	want := Position{Symbol: "AAPL", Quantity: Q(40), AverageCost: A(175)} // (1000+6000)/40
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergePositions() mismatch (-want +got):\n%s", diff)
	}

	b := NewBaseline(date.MustParse("2024-12-31"))
	b.Add(TFSARRSP, tfsa)
	b.Add(TFSARRSP, rrsp)
	if diff := cmp.Diff(want, b.Category(TFSARRSP)["AAPL"]); diff != "" {
		t.Errorf("Baseline.Add() mismatch (-want +got):\n%s", diff)
	}
}
