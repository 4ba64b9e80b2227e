package utils

import (
	"encoding/json"
	"fmt"
)

// ParseTradierResponse unwraps Tradier's {"outer": {"inner": value}} envelope, where value is
// either a single T or a list of T. A "null" outer value yields an empty slice.
func ParseTradierResponse[T any](response []byte) ([]T, error) {
	header := make(map[string]json.RawMessage)

	if err := json.Unmarshal(response, &header); err != nil {
		return nil, fmt.Errorf("ParseTradierResponse(): failed to unmarshal header in response: %w", err)
	}

	if len(header) != 1 {
		return nil, fmt.Errorf("ParseTradierResponse(): expected 1 key in header, got %v", len(header))
	}

	var v json.RawMessage
	for _, raw := range header {
		v = raw
	}

	if string(v) == "null" || string(v) == "\"null\"" {
		return []T{}, nil
	}

	data := make(map[string]json.RawMessage)
	if err := json.Unmarshal(v, &data); err != nil {
		return nil, fmt.Errorf("ParseTradierResponse(): failed to unmarshal data in response: %w", err)
	}

	if len(data) != 1 {
		return nil, fmt.Errorf("ParseTradierResponse(): expected 1 key in data, got %v", len(data))
	}

	var inner json.RawMessage
	for _, raw := range data {
		inner = raw
	}

	var dtos []T

	var singleDTO T
	if err := json.Unmarshal(inner, &singleDTO); err == nil {
		dtos = append(dtos, singleDTO)
	} else if err := json.Unmarshal(inner, &dtos); err != nil {
		return nil, fmt.Errorf("ParseTradierResponse(): failed to unmarshal dtos in response: %w", err)
	}

	return dtos, nil
}
