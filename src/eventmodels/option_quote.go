package eventmodels

import (
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// OptionQuote is a single leg of the chain. Mark is the representative price used for parity.
type OptionQuote struct {
	Symbol     string          `json:"symbol,omitempty"`
	Strike     decimal.Decimal `json:"strike"`
	Bid        decimal.Decimal `json:"bid"`
	Ask        decimal.Decimal `json:"ask"`
	Mark       decimal.Decimal `json:"mark"`
	OptionType OptionType      `json:"option_type"`
}

// Spread returns ask - bid.
func (q OptionQuote) Spread() decimal.Decimal {
	return q.Ask.Sub(q.Bid)
}

// Validate reports a DegenerateQuoteError when the quote breaks 0 <= bid <= mark <= ask or strike > 0.
func (q OptionQuote) Validate() error {
	if err := q.OptionType.Validate(); err != nil {
		return NewDegenerateQuoteError(q.Strike, err.Error())
	}

	if !q.Strike.IsPositive() {
		return NewDegenerateQuoteError(q.Strike, "non-positive strike")
	}

	if q.Bid.IsNegative() {
		return NewDegenerateQuoteError(q.Strike, "negative bid on "+string(q.OptionType))
	}

	if q.Bid.GreaterThan(q.Ask) {
		return NewDegenerateQuoteError(q.Strike, "bid greater than ask on "+string(q.OptionType))
	}

	if q.Mark.LessThan(q.Bid) || q.Mark.GreaterThan(q.Ask) {
		return NewDegenerateQuoteError(q.Strike, "mark outside bid/ask on "+string(q.OptionType))
	}

	return nil
}

func Midpoint(bid, ask decimal.Decimal) decimal.Decimal {
	return bid.Add(ask).Div(two)
}

// NewOptionQuote builds a quote whose mark is the bid/ask midpoint.
func NewOptionQuote(optionType OptionType, strike, bid, ask decimal.Decimal) OptionQuote {
	return OptionQuote{
		Strike:     strike,
		Bid:        bid,
		Ask:        ask,
		Mark:       Midpoint(bid, ask),
		OptionType: optionType,
	}
}
