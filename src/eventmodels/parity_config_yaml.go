package eventmodels

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type ParityConfigYAML struct {
	Symbols []ParitySymbolYAML `yaml:"symbols"`
}

func (o *ParityConfigYAML) GetSymbol(symbol StockSymbol) (*ParitySymbolYAML, error) {
	for _, s := range o.Symbols {
		if strings.EqualFold(string(symbol), s.Symbol) {
			return &s, nil
		}
	}

	return nil, fmt.Errorf("ParityConfigYAML: symbol %s not found", symbol)
}

type ParitySymbolYAML struct {
	Symbol          string   `yaml:"symbol"`
	Root            string   `yaml:"root"`
	ProxySymbol     string   `yaml:"proxySymbol"`
	ProxyMultiplier *float64 `yaml:"proxyMultiplier,omitempty"`
	StrikeBand      *float64 `yaml:"strikeBand,omitempty"`
	Tolerance       *float64 `yaml:"tolerance,omitempty"`
	MinPairs        int      `yaml:"minPairs"`
	MaxStrikes      int      `yaml:"maxStrikes"`
}

// GetProxyMultiplier defaults to 10, the SPX/SPY ratio.
func (s *ParitySymbolYAML) GetProxyMultiplier() decimal.Decimal {
	if s.ProxyMultiplier == nil {
		return decimal.NewFromInt(10)
	}

	return decimal.NewFromFloat(*s.ProxyMultiplier)
}

func (s *ParitySymbolYAML) ToParityConfig() (ParityConfig, error) {
	cfg := DefaultParityConfig()

	if s.StrikeBand != nil {
		cfg.StrikeBand = decimal.NewFromFloat(*s.StrikeBand)
	}

	if s.Tolerance != nil {
		cfg.Tolerance = decimal.NewFromFloat(*s.Tolerance)
	}

	if s.MinPairs > 0 {
		if s.MinPairs < MinParityPairs {
			return ParityConfig{}, fmt.Errorf("ParitySymbolYAML: %s: minPairs must be at least %d", s.Symbol, MinParityPairs)
		}

		cfg.MinPairs = s.MinPairs
	}

	cfg.MaxStrikes = s.MaxStrikes

	if err := cfg.Validate(); err != nil {
		return ParityConfig{}, fmt.Errorf("ParitySymbolYAML: %s: %w", s.Symbol, err)
	}

	return cfg, nil
}
