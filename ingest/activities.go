// Package ingest reads broker exports into realized transactions and baselines.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/realized"
	"github.com/etnz/realized/date"
)

// Activity export columns.
const (
	colTransactionDate = "Transaction Date"
	colSettlementDate  = "Settlement Date"
	colAction          = "Action"
	colSymbol          = "Symbol"
	colDescription     = "Description"
	colQuantity        = "Quantity"
	colPrice           = "Price"
	colCommission      = "Commission"
	colNetAmount       = "Net Amount"
	colCurrency        = "Currency"
	colActivityType    = "Activity Type"
	colAccountType     = "Account Type"
)

var requiredActivityColumns = []string{colSettlementDate, colAction, colSymbol, colQuantity, colPrice, colCommission, colNetAmount, colActivityType, colAccountType}

// Filter drops activity rows that must not reach the ledger.
type Filter struct {
	// Rows whose description contains one of these markers (case insensitive) are dropped.
	ExcludeDescriptions []string `yaml:"exclude_descriptions"`
	// Rows whose currency contains one of these codes (case insensitive) are dropped.
	ExcludeCurrencies []string `yaml:"exclude_currencies"`
}

// DefaultFilter drops Canadian dollar rows and DLR (Norbert's gambit) journaling.
func DefaultFilter() Filter {
	return Filter{ExcludeDescriptions: []string{"DLR"}, ExcludeCurrencies: []string{"CAD"}}
}

// Drops reports whether a row with this description and currency is excluded.
func (f Filter) Drops(description, currency string) bool {
	return containsAny(description, f.ExcludeDescriptions) || containsAny(currency, f.ExcludeCurrencies)
}

func containsAny(s string, markers []string) bool {
	s = strings.ToUpper(s)
	for _, m := range markers {
		if m != "" && strings.Contains(s, strings.ToUpper(m)) {
			return true
		}
	}
	return false
}

// header maps column names to their index in a CSV record.
type header map[string]int

func readHeader(r *csv.Reader, required []string) (header, error) {
	names, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	h := make(header, len(names))
	for i, name := range names {
		// Excel exports may start with a byte order mark.
		h[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return h, nil
}

// get returns the trimmed value of column name, "" if the column is absent.
func (h header) get(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ReadActivities reads a broker activity CSV export.
//
// Dates are taken from the settlement date. Rows dropped by f are skipped,
// quantity and commission signs are stripped, and the result is stably sorted
// by date.
func ReadActivities(r io.Reader, f Filter) ([]realized.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	h, err := readHeader(cr, requiredActivityColumns)
	if err != nil {
		return nil, err
	}

	var txs []realized.Transaction
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if f.Drops(h.get(record, colDescription), h.get(record, colCurrency)) {
			continue
		}
		tx, err := parseActivity(h, record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	realized.SortTransactions(txs)
	return txs, nil
}

func parseActivity(h header, record []string) (tx realized.Transaction, err error) {
	on := h.get(record, colSettlementDate)
	if on == "" {
		on = h.get(record, colTransactionDate)
	}
	if tx.Date, err = date.Parse(on); err != nil {
		return tx, err
	}
	tx.Activity = realized.ParseActivityType(h.get(record, colActivityType))
	tx.Action = realized.ParseAction(h.get(record, colAction))
	tx.Symbol = h.get(record, colSymbol)
	tx.Category = realized.Categorize(h.get(record, colAccountType))

	quantity, err := realized.ParseQuantity(h.get(record, colQuantity))
	if err != nil {
		return tx, err
	}
	tx.Quantity = quantity.Abs()
	if tx.Price, err = realized.ParseAmount(h.get(record, colPrice)); err != nil {
		return tx, err
	}
	commission, err := realized.ParseAmount(h.get(record, colCommission))
	if err != nil {
		return tx, err
	}
	tx.Commission = commission.Abs()
	if tx.NetAmount, err = realized.ParseAmount(h.get(record, colNetAmount)); err != nil {
		return tx, err
	}
	return tx, nil
}
