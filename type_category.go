package realized

import (
	"fmt"
	"strings"
)

// AccountCategory groups one or more brokerage accounts that are reported
// together, sharing a single position ledger.
type AccountCategory string

const (
	// Margin is the taxable margin account.
	Margin AccountCategory = "Margin"
	// TFSARRSP groups the tax-advantaged TFSA and RRSP accounts.
	TFSARRSP AccountCategory = "TFSA_RRSP"
)

// Categories returns all account categories, in reporting order.
func Categories() []AccountCategory { return []AccountCategory{Margin, TFSARRSP} }

// Categorize maps a broker account type (e.g. "Individual Margin", "Individual TFSA")
// to its category.
func Categorize(accountType string) AccountCategory {
	if strings.Contains(accountType, "Margin") {
		return Margin
	}
	return TFSARRSP
}

// ParseAccountCategory parses the string form of a category, case insensitive.
func ParseAccountCategory(s string) (AccountCategory, error) {
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown account category %q", s)
}

func (c AccountCategory) String() string { return string(c) }

// AccountName identifies an individual brokerage account holding a baseline file.
type AccountName string

const (
	MarginAccount AccountName = "Margin"
	TFSAAccount   AccountName = "TFSA"
	RRSPAccount   AccountName = "RRSP"
)

// AccountNames returns all account names.
func AccountNames() []AccountName { return []AccountName{MarginAccount, TFSAAccount, RRSPAccount} }

// Category returns the category the account reports into.
func (n AccountName) Category() AccountCategory {
	if n == MarginAccount {
		return Margin
	}
	return TFSARRSP
}
