package exchange

import (
	"errors"

	"github.com/adshao/go-binance/v2/common"
)

// Sentinel error kinds for the taxonomy the orchestrator logs by. Adapter
// methods wrap their causes with one of these so callers can errors.Is
// without knowing the underlying client library.
var (
	// ErrConnectivity covers network and transport failures. Always
	// recoverable: log at warn, retry next cycle.
	ErrConnectivity = errors.New("exchange: connectivity")

	// ErrRejected covers exchange-side validation failures. The action is
	// abandoned but the symbol stays in the universe.
	ErrRejected = errors.New("exchange: rejected")

	// ErrBadSymbol is a rejection for a symbol the exchange no longer knows.
	ErrBadSymbol = errors.New("exchange: bad symbol")

	// ErrInsufficientFunds is a rejection for an order the account cannot
	// cover.
	ErrInsufficientFunds = errors.New("exchange: insufficient funds")
)

// Binance API error codes that need their own taxonomy bucket.
const (
	codeBadSymbol           = -1121
	codeInsufficientBalance = -2010
	codeInsufficientMargin  = -2019
)

// classify maps a raw client error onto the taxonomy. An API-level error is
// a rejection of some flavor; anything else is transport trouble.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case codeBadSymbol:
			return ErrBadSymbol
		case codeInsufficientBalance, codeInsufficientMargin:
			return ErrInsufficientFunds
		default:
			return ErrRejected
		}
	}
	return ErrConnectivity
}
