package eventmodels

import "github.com/shopspring/decimal"

// StrikeEstimate is the parity price implied by one call/put pair.
type StrikeEstimate struct {
	Strike   decimal.Decimal `json:"strike"`
	CallMark decimal.Decimal `json:"call_mark"`
	PutMark  decimal.Decimal `json:"put_mark"`
	Price    decimal.Decimal `json:"price"`
	Spread   decimal.Decimal `json:"spread"`
}
