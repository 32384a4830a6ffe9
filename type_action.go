package realized

import "strings"

// ActivityType is the broker's classification of an activity row.
type ActivityType int

const (
	Other ActivityType = iota
	Trade
	Dividend
)

// ParseActivityType maps the broker "Activity Type" column to an ActivityType.
// Unknown values are Other, they are never replayed.
func ParseActivityType(s string) ActivityType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trades", "trade":
		return Trade
	case "dividends", "dividend":
		return Dividend
	default:
		return Other
	}
}

func (a ActivityType) String() string {
	switch a {
	case Trade:
		return "Trades"
	case Dividend:
		return "Dividends"
	default:
		return "Other"
	}
}

// Action is the direction of a trade.
type Action int

const (
	NoAction Action = iota
	Buy
	Sell
)

// ParseAction maps the broker "Action" column to an Action. Non trade actions
// (DIV, WDR, ...) are NoAction.
func ParseAction(s string) Action {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy
	case "sell":
		return Sell
	default:
		return NoAction
	}
}

func (a Action) String() string {
	switch a {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "-"
	}
}
