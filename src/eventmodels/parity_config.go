package eventmodels

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const MinParityPairs = 2

// ParityConfig tunes the put-call parity extractor. Tolerance is a fraction of price.
type ParityConfig struct {
	ReferencePrice decimal.Decimal
	StrikeBand     decimal.Decimal
	Tolerance      decimal.Decimal
	MinPairs       int
	MaxStrikes     int
}

func (c ParityConfig) Validate() error {
	if c.ReferencePrice.IsNegative() {
		return fmt.Errorf("ParityConfig: negative reference price %s", c.ReferencePrice)
	}

	if c.StrikeBand.IsNegative() {
		return fmt.Errorf("ParityConfig: negative strike band %s", c.StrikeBand)
	}

	if c.Tolerance.IsNegative() {
		return fmt.Errorf("ParityConfig: negative tolerance %s", c.Tolerance)
	}

	if c.MaxStrikes < 0 {
		return fmt.Errorf("ParityConfig: negative max strikes %d", c.MaxStrikes)
	}

	return nil
}

func (c ParityConfig) WithReferencePrice(price decimal.Decimal) ParityConfig {
	c.ReferencePrice = price
	return c
}

func DefaultParityConfig() ParityConfig {
	return ParityConfig{
		StrikeBand: decimal.NewFromInt(50),
		Tolerance:  decimal.RequireFromString("0.005"),
		MinPairs:   MinParityPairs,
	}
}
