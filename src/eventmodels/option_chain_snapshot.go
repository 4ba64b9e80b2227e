package eventmodels

import (
	"time"
)

// OptionChainSnapshot holds the quotes of a single expiration of one underlying, captured at Timestamp.
type OptionChainSnapshot struct {
	Underlying StockSymbol   `json:"underlying"`
	Root       string        `json:"root,omitempty"`
	Expiration time.Time     `json:"expiration"`
	Timestamp  time.Time     `json:"timestamp"`
	Quotes     []OptionQuote `json:"quotes"`
}

func (s *OptionChainSnapshot) Calls() []OptionQuote {
	return s.filter(Call)
}

func (s *OptionChainSnapshot) Puts() []OptionQuote {
	return s.filter(Put)
}

func (s *OptionChainSnapshot) filter(optionType OptionType) []OptionQuote {
	var out []OptionQuote
	for _, q := range s.Quotes {
		if q.OptionType == optionType {
			out = append(out, q)
		}
	}

	return out
}
