package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/realized"
	"github.com/etnz/realized/date"
)

// ActivitiesPath selects the activity objects in a broker API response.
const ActivitiesPath = "$.activities[*]"

/*
	{
	    "activities": [
	        {
	            "tradeDate": "2024-12-04T00:00:00.000000-05:00",
	            "settlementDate": "2024-12-05T00:00:00.000000-05:00",
	            "action": "Buy",
	            "symbol": "AMZN",
	            "description": "AMAZON.COM INC  WE ACTED AS AGENT",
	            "currency": "USD",
	            "quantity": 30,
	            "price": 213.6006,
	            "grossAmount": -6408.02,
	            "commission": -4.95,
	            "netAmount": -6412.97,
	            "type": "Trades"
	        }
	    ]
	}
*/

// ReadActivitiesJSON reads the activities of a single account from a broker
// API response. The response carries no account type, every activity is
// booked in category.
func ReadActivitiesJSON(r io.Reader, category realized.AccountCategory, f Filter) ([]realized.Transaction, error) {
	dec := json.NewDecoder(r)
	// keep amounts as their decimal text
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("decoding activities: %w", err)
	}

	jval, err := jsonpath.Get(ActivitiesPath, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", ActivitiesPath, err)
	}
	jlist, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing %q: not a list %v", ActivitiesPath, jval)
	}

	var txs []realized.Transaction
	for i, item := range jlist {
		jact, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("activity %d: not an object", i)
		}
		if f.Drops(jstring(jact["description"]), jstring(jact["currency"])) {
			continue
		}
		tx, err := parseJSONActivity(jact)
		if err != nil {
			return nil, fmt.Errorf("activity %d: %w", i, err)
		}
		tx.Category = category
		txs = append(txs, tx)
	}
	realized.SortTransactions(txs)
	return txs, nil
}

func parseJSONActivity(jact map[string]any) (tx realized.Transaction, err error) {
	on := jstring(jact["settlementDate"])
	if on == "" {
		on = jstring(jact["transactionDate"])
	}
	if tx.Date, err = date.Parse(on); err != nil {
		return tx, err
	}
	tx.Activity = realized.ParseActivityType(jstring(jact["type"]))
	tx.Action = realized.ParseAction(jstring(jact["action"]))
	tx.Symbol = jstring(jact["symbol"])

	quantity, err := realized.ParseQuantity(jstring(jact["quantity"]))
	if err != nil {
		return tx, err
	}
	tx.Quantity = quantity.Abs()
	if tx.Price, err = realized.ParseAmount(jstring(jact["price"])); err != nil {
		return tx, err
	}
	commission, err := realized.ParseAmount(jstring(jact["commission"]))
	if err != nil {
		return tx, err
	}
	tx.Commission = commission.Abs()
	if tx.NetAmount, err = realized.ParseAmount(jstring(jact["netAmount"])); err != nil {
		return tx, err
	}
	return tx, nil
}

// jstring returns the text of a decoded JSON scalar, "" for null.
func jstring(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
