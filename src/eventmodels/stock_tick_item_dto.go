package eventmodels

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type StockTickDTO struct {
	Quotes StockTickQuoteDTO `json:"quotes"`
}

type StockTickQuoteDTO struct {
	Tick StockTickItemDTO `json:"quote"`
}

type StockTickItemDTO struct {
	Symbol           string  `json:"symbol"`
	LastPrice        float64 `json:"last"`
	Volume           float64 `json:"volume"`
	High             float64 `json:"high"`
	Low              float64 `json:"low"`
	Open             float64 `json:"open"`
	Close            float64 `json:"close"`
	ChangePercentage float64 `json:"change_percentage"`
	AskSize          int     `json:"asksize"`
	BidSize          int     `json:"bidsize"`
	Ask              float64 `json:"ask"`
	Bid              float64 `json:"bid"`
}

// Mid falls back to the last trade when the book is empty.
func (d *StockTickItemDTO) Mid() (decimal.Decimal, error) {
	if d.Bid > 0 && d.Ask >= d.Bid {
		return Midpoint(decimal.NewFromFloat(d.Bid), decimal.NewFromFloat(d.Ask)), nil
	}

	if d.LastPrice > 0 {
		return decimal.NewFromFloat(d.LastPrice), nil
	}

	return decimal.Zero, fmt.Errorf("StockTickItemDTO: %s has no usable price", d.Symbol)
}
