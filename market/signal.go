package market

import "fmt"

// Signal is the categorical trading recommendation produced by the
// classifier. The set is closed: anything else is a parse error and never
// reaches the execution engine.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
	AverageDown
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case AverageDown:
		return "AVERAGE_DOWN"
	default:
		return "HOLD"
	}
}

// ParseSignal converts a label string into a Signal. Unknown labels are an
// error so a corrupted label mapping cannot leak free-form strings into the
// decision path.
func ParseSignal(s string) (Signal, error) {
	switch s {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	case "HOLD":
		return Hold, nil
	case "AVERAGE_DOWN":
		return AverageDown, nil
	default:
		return Hold, fmt.Errorf("unknown signal label %q", s)
	}
}
