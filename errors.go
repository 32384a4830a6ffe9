package realized

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/etnz/realized/date"
)

var (
	// ErrUnknownSymbol is wrapped by a DataIntegrityError when a symbol is sold
	// with no tracked position.
	ErrUnknownSymbol = errors.New("no tracked position")
	// ErrInsufficientQuantity is wrapped by a DataIntegrityError when a sell
	// exceeds the tracked quantity.
	ErrInsufficientQuantity = errors.New("selling more than held")
)

// ConfigurationError reports a window that cannot be computed. It is fatal:
// nothing is replayed.
type ConfigurationError struct {
	Baseline date.Date
	Window   date.Range
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid window %s with baseline %s: %s", e.Window, e.Baseline, e.Reason)
}

// DataIntegrityError reports a sell the ledger cannot honor. The transaction
// is skipped and the ledger left unchanged.
type DataIntegrityError struct {
	Date      date.Date
	Category  AccountCategory
	Symbol    string
	Requested Quantity
	Held      Quantity
	Epoch     Epoch
	err       error
}

func (e *DataIntegrityError) Error() string {
	if errors.Is(e.err, ErrUnknownSymbol) {
		return fmt.Sprintf("%s %s: sell %s %s during %s: %v", e.Date, e.Category, e.Requested, e.Symbol, e.Epoch, e.err)
	}
	return fmt.Sprintf("%s %s: sell %s %s during %s: %v (%s held)", e.Date, e.Category, e.Requested, e.Symbol, e.Epoch, e.err, e.Held)
}

func (e *DataIntegrityError) Unwrap() error { return e.err }

// IssueKind classifies recoverable problems found during a computation.
type IssueKind int

const (
	IssueDataIntegrity IssueKind = iota
	IssueMissingBaseline
)

func (k IssueKind) String() string {
	switch k {
	case IssueDataIntegrity:
		return "data-integrity"
	case IssueMissingBaseline:
		return "missing-baseline"
	default:
		return "unknown"
	}
}

// Issue is a recoverable problem recorded alongside a result.
type Issue struct {
	Kind     IssueKind
	Date     date.Date
	Category AccountCategory
	Symbol   string
	Err      error
}

func (i Issue) Error() string { return fmt.Sprintf("%s: %v", i.Kind, i.Err) }

func (i Issue) Unwrap() error { return i.Err }

func (i Issue) MarshalJSON() ([]byte, error) {
	type jissue struct {
		Kind     string          `json:"kind"`
		Date     date.Date       `json:"date"`
		Category AccountCategory `json:"category,omitempty"`
		Symbol   string          `json:"symbol,omitempty"`
		Message  string          `json:"message"`
	}
	msg := ""
	if i.Err != nil {
		msg = i.Err.Error()
	}
	return json.Marshal(jissue{Kind: i.Kind.String(), Date: i.Date, Category: i.Category, Symbol: i.Symbol, Message: msg})
}

// MissingBaselineWarning returns the issue recorded when no baseline holdings
// could be found for an account. The category starts empty.
func MissingBaselineWarning(on date.Date, category AccountCategory, err error) Issue {
	return Issue{Kind: IssueMissingBaseline, Date: on, Category: category, Err: err}
}

// Policy decides what a DataIntegrityError does to a computation.
type Policy int

const (
	// Lenient skips the offending transaction and records an Issue.
	Lenient Policy = iota
	// Strict aborts the computation on the first DataIntegrityError.
	Strict
)

// ParsePolicy parses "lenient" or "strict".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown policy %q want lenient or strict", s)
	}
}

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}
