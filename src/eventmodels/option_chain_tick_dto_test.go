package eventmodels

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionContractChainDTOUnmarshal(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
		symbols []string
	}{
		{
			name:    "list of options",
			payload: `{"options":{"option":[{"symbol":"SPXW251017C06620000","strike":6620,"option_type":"call","bid":94.7,"ask":95.7},{"symbol":"SPXW251017P06620000","strike":6620,"option_type":"put","bid":84.9,"ask":85.9}]}}`,
			symbols: []string{"SPXW251017C06620000", "SPXW251017P06620000"},
		},
		{
			name:    "single option object",
			payload: `{"options":{"option":{"symbol":"SPXW251017C06620000","strike":6620,"option_type":"call","bid":94.7,"ask":95.7}}}`,
			symbols: []string{"SPXW251017C06620000"},
		},
		{
			name:    "null options",
			payload: `{"options":null}`,
		},
		{
			name:    "null option",
			payload: `{"options":{"option":null}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var dto OptionContractChainDTO
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &dto))

			var symbols []string
			for _, v := range dto.Options.Values {
				symbols = append(symbols, v.Symbol)
			}

			assert.Equal(t, tc.symbols, symbols)
		})
	}

	t.Run("single option converts to a quote", func(t *testing.T) {
		var dto OptionContractChainDTO
		require.NoError(t, json.Unmarshal([]byte(`{"options":{"option":{"symbol":"SPXW251017P06620000","strike":6620,"option_type":"put","bid":84.9,"ask":85.9}}}`), &dto))
		require.Len(t, dto.Options.Values, 1)

		quote, err := dto.Options.Values[0].ToOptionQuote()
		require.NoError(t, err)
		assert.Equal(t, Put, quote.OptionType)
		assert.Equal(t, "85.4", quote.Mark.String())
	})

	t.Run("malformed option", func(t *testing.T) {
		var dto OptionContractChainDTO
		assert.Error(t, json.Unmarshal([]byte(`{"options":{"option":"oops"}}`), &dto))
	})
}
