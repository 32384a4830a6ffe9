package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/realized"
	"github.com/etnz/realized/date"
)

var requiredBaselineColumns = []string{"Symbol", "Quantity", "AverageCost"}

// BaselineFile returns the name of the holdings snapshot of account as of on,
// e.g. "tfsa-20241231.csv".
func BaselineFile(account realized.AccountName, on date.Date) string {
	return fmt.Sprintf("%s-%s.csv", strings.ToLower(string(account)), on.Format("20060102"))
}

// ReadBaseline reads the holdings snapshots of every account found in dir as
// of on. TFSA and RRSP holdings are merged into their common category.
//
// A missing file is not an error: it is recorded in Baseline.Issues and the
// account starts empty.
func ReadBaseline(dir string, on date.Date) (realized.Baseline, error) {
	b := realized.NewBaseline(on)
	for _, account := range realized.AccountNames() {
		name := filepath.Join(dir, BaselineFile(account, on))
		positions, err := readHoldingsFile(name)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("baseline file does not exist", "file", name, "account", string(account))
			b.Issues = append(b.Issues, realized.MissingBaselineWarning(on, account.Category(), fmt.Errorf("%s: %w", account, err)))
			continue
		}
		if err != nil {
			return b, fmt.Errorf("reading %s baseline: %w", account, err)
		}
		b.Add(account.Category(), positions...)
	}
	return b, nil
}

func readHoldingsFile(name string) ([]realized.Position, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	positions, err := ReadHoldings(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return positions, nil
}

// ReadHoldings reads a holdings snapshot with columns Symbol, Quantity and AverageCost.
func ReadHoldings(r io.Reader) ([]realized.Position, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	h, err := readHeader(cr, requiredBaselineColumns)
	if err != nil {
		return nil, err
	}

	var positions []realized.Position
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		p := realized.Position{Symbol: h.get(record, "Symbol")}
		if p.Symbol == "" {
			continue
		}
		if p.Quantity, err = realized.ParseQuantity(h.get(record, "Quantity")); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if p.AverageCost, err = realized.ParseAmount(h.get(record, "AverageCost")); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		positions = append(positions, p)
	}
	return positions, nil
}
