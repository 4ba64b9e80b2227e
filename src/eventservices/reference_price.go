package eventservices

import (
	"github.com/shopspring/decimal"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
)

// ResolveReferencePrice picks the center of the strike search band: the last same-day estimate
// when there is one, otherwise the proxy mid times multiplier. Zero means no banding. The result
// only bounds the strike search.
func ResolveReferencePrice(last *eventmodels.FairPriceEstimate, today string, proxy *eventmodels.StockTickItemDTO, multiplier decimal.Decimal) decimal.Decimal {
	if last != nil && last.Price.IsPositive() {
		if date, err := tradingDate(last); err == nil && date == today {
			return last.Price
		}
	}

	if proxy != nil && multiplier.IsPositive() {
		if mid, err := proxy.Mid(); err == nil {
			return mid.Mul(multiplier)
		}
	}

	return decimal.Zero
}
