package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/realized"
)

// ReadActivitiesFile reads the activities in name, a CSV export or a JSON API
// response. The account of a JSON response is taken from the file name prefix,
// e.g. "tfsa-2025.json".
func ReadActivitiesFile(name string, f Filter) ([]realized.Transaction, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var txs []realized.Transaction
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		account, ok := accountOf(filepath.Base(name))
		if !ok {
			return nil, fmt.Errorf("%s: cannot tell the account from the file name", name)
		}
		txs, err = ReadActivitiesJSON(file, account.Category(), f)
	default:
		txs, err = ReadActivities(file, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return txs, nil
}

// ReadActivitiesFiles reads every file and merges their activities in date order.
func ReadActivitiesFiles(names []string, f Filter) ([]realized.Transaction, error) {
	var txs []realized.Transaction
	for _, name := range names {
		list, err := ReadActivitiesFile(name, f)
		if err != nil {
			return nil, err
		}
		txs = append(txs, list...)
	}
	realized.SortTransactions(txs)
	return txs, nil
}

func accountOf(base string) (realized.AccountName, bool) {
	base = strings.ToLower(base)
	for _, account := range realized.AccountNames() {
		if strings.HasPrefix(base, strings.ToLower(string(account))) {
			return account, true
		}
	}
	return "", false
}
