package eventmodels

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientData = errors.New("insufficient data: fewer than two usable call/put pairs")
	ErrInvalidSnapshot  = errors.New("invalid option chain snapshot")

	// ErrDegenerateEstimate means enough pairs exist but together imply a non-positive price.
	ErrDegenerateEstimate = errors.New("degenerate estimate: parity price is not positive")
)

type DegenerateQuoteError struct {
	Strike decimal.Decimal `json:"strike"`
	Reason string          `json:"reason"`
}

func (e *DegenerateQuoteError) Error() string {
	return fmt.Sprintf("degenerate quote at strike %s: %s", e.Strike.String(), e.Reason)
}

func NewDegenerateQuoteError(strike decimal.Decimal, reason string) *DegenerateQuoteError {
	return &DegenerateQuoteError{
		Strike: strike,
		Reason: reason,
	}
}
