package eventmodels

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type OptionContractChainDTO struct {
	Options OptionChainDTO `json:"options"`
}

type OptionChainDTO struct {
	Values []*OptionChainTickDTO `json:"option"`
}

// UnmarshalJSON accepts Tradier's single-option shape, where "option" is an object instead of a list.
func (d *OptionChainDTO) UnmarshalJSON(data []byte) error {
	var raw struct {
		Option json.RawMessage `json:"option"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("OptionChainDTO: %w", err)
	}

	body := bytes.TrimSpace(raw.Option)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		d.Values = nil
		return nil
	}

	if body[0] == '{' {
		var single OptionChainTickDTO
		if err := json.Unmarshal(body, &single); err != nil {
			return fmt.Errorf("OptionChainDTO: failed to decode option: %w", err)
		}

		d.Values = []*OptionChainTickDTO{&single}
		return nil
	}

	if err := json.Unmarshal(body, &d.Values); err != nil {
		return fmt.Errorf("OptionChainDTO: failed to decode options: %w", err)
	}

	return nil
}

type OptionChainTickDTO struct {
	Symbol         string  `json:"symbol"`
	Description    string  `json:"description"`
	Underlying     string  `json:"underlying"`
	RootSymbol     string  `json:"root_symbol"`
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	Last           float64 `json:"last"`
	Volume         int     `json:"volume"`
	BidSize        int     `json:"bidsize"`
	AskSize        int     `json:"asksize"`
	OpenInterest   int     `json:"open_interest"`
	Strike         float64 `json:"strike"`
	ContractSize   int     `json:"contract_size"`
	OptionType     string  `json:"option_type"`
	ExpirationDate string  `json:"expiration_date"`
	ExpirationType string  `json:"expiration_type"`
}

func (d *OptionChainTickDTO) ToOptionQuote() (OptionQuote, error) {
	optionType, err := NewOptionType(d.OptionType)
	if err != nil {
		return OptionQuote{}, fmt.Errorf("OptionChainTickDTO: %s: %w", d.Symbol, err)
	}

	quote := NewOptionQuote(optionType, decimal.NewFromFloat(d.Strike), decimal.NewFromFloat(d.Bid), decimal.NewFromFloat(d.Ask))
	quote.Symbol = d.Symbol

	return quote, nil
}
