package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/realized"
	"github.com/etnz/realized/date"
	"github.com/google/go-cmp/cmp"
)

const activitiesCSV = `Transaction Date,Settlement Date,Action,Symbol,Description,Quantity,Price,Gross Amount,Commission,Net Amount,Currency,Account #,Activity Type,Account Type
2025-01-16 12:00:00 AM,2025-01-17 12:00:00 AM,Sell,AAPL,APPLE INC,-5,150,750,-5,745,USD,1234,Trades,Individual TFSA
2025-01-02 12:00:00 AM,2025-01-03 12:00:00 AM,Buy,AAPL,APPLE INC,10,100,-1000,-10,-1010,USD,1234,Trades,Individual TFSA
2025-01-02 12:00:00 AM,2025-01-03 12:00:00 AM,Buy,DLR,HORIZONS US DLR ETF,100,13.5,-1350,0,-1350,CAD,5678,Trades,Individual Margin
2025-01-05 12:00:00 AM,2025-01-06 12:00:00 AM,Buy,RY,ROYAL BANK,10,150,-1500,-4.95,-1504.95,CAD,5678,Trades,Individual Margin
2025-01-10 12:00:00 AM,2025-01-10 12:00:00 AM,DIV,MSFT,MICROSOFT CORP CASH DIV,0,0,0,0,18.35,USD,5678,Dividends,Individual Margin
2025-01-03 12:00:00 AM,2025-01-03 12:00:00 AM,BRW,,JOURNAL,0,0,0,0,0,USD,5678,Transfers,Individual Margin
`

func TestReadActivities(t *testing.T) {
	txs, err := ReadActivities(strings.NewReader(activitiesCSV), DefaultFilter())
	if err != nil {
		t.Fatalf("ReadActivities() error = %v", err)
	}

	d := date.MustParse
	want := []realized.Transaction{
		{Date: d("2025-01-03"), Activity: realized.Trade, Action: realized.Buy, Symbol: "AAPL", Quantity: realized.Q(10), Price: realized.A(100), Commission: realized.A(10), NetAmount: realized.A(-1010), Category: realized.TFSARRSP},
		{Date: d("2025-01-03"), Activity: realized.Other, Action: realized.NoAction, Symbol: "", Quantity: realized.Q(0), Price: realized.A(0), Commission: realized.A(0), NetAmount: realized.A(0), Category: realized.Margin},
		{Date: d("2025-01-10"), Activity: realized.Dividend, Action: realized.NoAction, Symbol: "MSFT", Quantity: realized.Q(0), Price: realized.A(0), Commission: realized.A(0), NetAmount: realized.A(18.35), Category: realized.Margin},
		{Date: d("2025-01-17"), Activity: realized.Trade, Action: realized.Sell, Symbol: "AAPL", Quantity: realized.Q(5), Price: realized.A(150), Commission: realized.A(5), NetAmount: realized.A(745), Category: realized.TFSARRSP},
	}
	if diff := cmp.Diff(want, txs); diff != "" {
		t.Errorf("ReadActivities() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadActivities_NoFilter(t *testing.T) {
	txs, err := ReadActivities(strings.NewReader(activitiesCSV), Filter{})
	if err != nil {
		t.Fatalf("ReadActivities() error = %v", err)
	}
	if len(txs) != 6 {
		t.Errorf("ReadActivities() returned %d rows, want 6", len(txs))
	}
	if !realized.IsSorted(txs) {
		t.Errorf("ReadActivities() rows are not sorted")
	}
}

func TestReadActivities_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Missing column", "Settlement Date,Action,Symbol\n2025-01-01,Buy,AAPL\n"},
		{"Bad date", strings.Replace(activitiesCSV, "2025-01-17 12:00:00 AM", "17/01/2025", 1)},
		{"Bad quantity", strings.Replace(activitiesCSV, "-5,150", "five,150", 1)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadActivities(strings.NewReader(tc.input), DefaultFilter()); err == nil {
				t.Errorf("ReadActivities() error = nil, want an error")
			}
		})
	}
}

func TestFilter_Drops(t *testing.T) {
	f := DefaultFilter()
	testCases := []struct {
		description, currency string
		want                  bool
	}{
		{"HORIZONS US dlr ETF", "USD", true},
		{"APPLE INC", "CAD", true},
		{"APPLE INC", "cad", true},
		{"APPLE INC", "USD", false},
		{"", "", false},
	}
	for _, tc := range testCases {
		if got := f.Drops(tc.description, tc.currency); got != tc.want {
			t.Errorf("Drops(%q, %q) = %v, want %v", tc.description, tc.currency, got, tc.want)
		}
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestReadBaseline(t *testing.T) {
	dir := t.TempDir()
	on := date.MustParse("2024-12-31")
	writeFile(t, dir, "margin-20241231.csv", "Symbol,Quantity,AverageCost\nAAPL,10,10\nMSFT,2,400.5\n")
	writeFile(t, dir, "tfsa-20241231.csv", "Symbol,Quantity,AverageCost\nVFV,10,100\n")
	writeFile(t, dir, "rrsp-20241231.csv", "Symbol,Quantity,AverageCost\nVFV,30,200\nXEQT,5,30\n")

	b, err := ReadBaseline(dir, on)
	if err != nil {
		t.Fatalf("ReadBaseline() error = %v", err)
	}
	if len(b.Issues) != 0 {
		t.Errorf("Issues = %v, want none", b.Issues)
	}
	want := map[realized.AccountCategory]realized.Holdings{
		realized.Margin: {
			"AAPL": {Symbol: "AAPL", Quantity: realized.Q(10), AverageCost: realized.A(10)},
			"MSFT": {Symbol: "MSFT", Quantity: realized.Q(2), AverageCost: realized.A(400.5)},
		},
		realized.TFSARRSP: {
			"VFV":  {Symbol: "VFV", Quantity: realized.Q(40), AverageCost: realized.A(175)},
			"XEQT": {Symbol: "XEQT", Quantity: realized.Q(5), AverageCost: realized.A(30)},
		},
	}
	if diff := cmp.Diff(want, b.Holdings); diff != "" {
		t.Errorf("ReadBaseline() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadBaseline_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	on := date.MustParse("2024-12-31")
	writeFile(t, dir, "rrsp-20241231.csv", "Symbol,Quantity,AverageCost\nVFV,30,200\n")

	b, err := ReadBaseline(dir, on)
	if err != nil {
		t.Fatalf("ReadBaseline() error = %v", err)
	}
	if len(b.Issues) != 2 {
		t.Fatalf("Issues = %v, want margin and tfsa missing", b.Issues)
	}
	for _, i := range b.Issues {
		if i.Kind != realized.IssueMissingBaseline || !errors.Is(i, os.ErrNotExist) {
			t.Errorf("issue %v is not a missing baseline", i)
		}
	}
	if b.Issues[0].Category != realized.Margin || b.Issues[1].Category != realized.TFSARRSP {
		t.Errorf("Issues = %v, want Margin then TFSA_RRSP", b.Issues)
	}
	if _, ok := b.Holdings[realized.Margin]; ok {
		t.Errorf("Margin holdings loaded from a missing file")
	}
	if got := b.Category(realized.TFSARRSP)["VFV"]; !got.Quantity.Equal(realized.Q(30)) {
		t.Errorf("VFV = %+v, want 30 from rrsp", got)
	}
}

func TestReadBaseline_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "margin-20241231.csv", "Symbol,Quantity\nAAPL,10\n")
	if _, err := ReadBaseline(dir, date.MustParse("2024-12-31")); err == nil {
		t.Errorf("ReadBaseline() error = nil, want missing column")
	}
}

const activitiesJSON = `{
  "activities": [
    {"tradeDate": "2024-12-11T00:00:00.000000-05:00", "settlementDate": "2024-12-12T00:00:00.000000-05:00", "action": "DIV", "symbol": "MSFT",
     "description": "MICROSOFT CORP CASH DIV", "currency": "USD", "quantity": 0, "price": 0, "grossAmount": 0, "commission": 0, "netAmount": 18.35, "type": "Dividends"},
    {"tradeDate": "2024-12-03T00:00:00.000000-05:00", "settlementDate": "2024-12-04T00:00:00.000000-05:00", "action": "Buy", "symbol": "AMZN",
     "description": "AMAZON.COM INC WE ACTED AS AGENT", "currency": "USD", "quantity": 30, "price": 213.6006, "grossAmount": -6408.02, "commission": -4.95, "netAmount": -6412.97, "type": "Trades"},
    {"tradeDate": "2024-12-03T00:00:00.000000-05:00", "settlementDate": "2024-12-04T00:00:00.000000-05:00", "action": "Buy", "symbol": "RY.TO",
     "description": "ROYAL BANK", "currency": "CAD", "quantity": 1, "price": 150, "grossAmount": -150, "commission": 0, "netAmount": -150, "type": "Trades"}
  ]
}`

func TestReadActivitiesJSON(t *testing.T) {
	txs, err := ReadActivitiesJSON(strings.NewReader(activitiesJSON), realized.Margin, DefaultFilter())
	if err != nil {
		t.Fatalf("ReadActivitiesJSON() error = %v", err)
	}
	d := date.MustParse
	want := []realized.Transaction{
		{Date: d("2024-12-04"), Activity: realized.Trade, Action: realized.Buy, Symbol: "AMZN", Quantity: realized.Q(30), Price: realized.A(213.6006), Commission: realized.A(4.95), NetAmount: realized.A(-6412.97), Category: realized.Margin},
		{Date: d("2024-12-12"), Activity: realized.Dividend, Action: realized.NoAction, Symbol: "MSFT", Quantity: realized.Q(0), Price: realized.A(0), Commission: realized.A(0), NetAmount: realized.A(18.35), Category: realized.Margin},
	}
	if diff := cmp.Diff(want, txs); diff != "" {
		t.Errorf("ReadActivitiesJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadActivitiesJSON_Errors(t *testing.T) {
	for _, input := range []string{`not json`, `{"positions": []}`, `{"activities": [1]}`} {
		if _, err := ReadActivitiesJSON(strings.NewReader(input), realized.Margin, Filter{}); err == nil {
			t.Errorf("ReadActivitiesJSON(%s) error = nil, want an error", input)
		}
	}
}

func TestReadActivitiesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "activities.csv", activitiesCSV)
	writeFile(t, dir, "rrsp-activities.json", activitiesJSON)
	writeFile(t, dir, "unknown.json", activitiesJSON)

	txs, err := ReadActivitiesFiles([]string{filepath.Join(dir, "activities.csv"), filepath.Join(dir, "rrsp-activities.json")}, DefaultFilter())
	if err != nil {
		t.Fatalf("ReadActivitiesFiles() error = %v", err)
	}
	if len(txs) != 6 {
		t.Fatalf("ReadActivitiesFiles() returned %d rows, want 6", len(txs))
	}
	if !realized.IsSorted(txs) {
		t.Errorf("ReadActivitiesFiles() rows are not sorted")
	}
	if txs[0].Symbol != "AMZN" || txs[0].Category != realized.TFSARRSP {
		t.Errorf("first row = %v, want the AMZN buy in TFSA_RRSP", txs[0])
	}

	if _, err := ReadActivitiesFile(filepath.Join(dir, "unknown.json"), DefaultFilter()); err == nil {
		t.Errorf("ReadActivitiesFile(unknown.json) error = nil, want an error")
	}
	if _, err := ReadActivitiesFile(filepath.Join(dir, "missing.csv"), DefaultFilter()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadActivitiesFile(missing.csv) error = %v, want not exist", err)
	}
}
