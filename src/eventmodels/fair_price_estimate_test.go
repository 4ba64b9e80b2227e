package eventmodels

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func estimateFixture() *FairPriceEstimate {
	dec := decimal.RequireFromString

	return &FairPriceEstimate{
		Underlying:     "SPX",
		Expiration:     time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC),
		Price:          dec("6628.15"),
		SourceStrike:   dec("6620"),
		Method:         PutCallParityMethod,
		Timestamp:      time.Date(2025, 10, 17, 14, 30, 0, 0, time.UTC),
		EstimatedError: dec("3.30"),
		Confidence:     ConfidenceNormal,
		Strikes: []StrikeEstimate{
			{Strike: dec("6620"), CallMark: dec("95.20"), PutMark: dec("85.40"), Price: dec("6629.80"), Spread: dec("2")},
			{Strike: dec("6630"), CallMark: dec("88.10"), PutMark: dec("91.60"), Price: dec("6626.50"), Spread: dec("2.4")},
		},
		Excluded: []*DegenerateQuoteError{NewDegenerateQuoteError(dec("6640"), "bid greater than ask on call")},
	}
}

func TestFairPriceEstimateString(t *testing.T) {
	out := estimateFixture().String()

	assert.Contains(t, out, "SPX fair price (put_call_parity, exp 2025-10-17)")
	assert.Contains(t, out, "*6,620.00")
	assert.Contains(t, out, "$6,626.50")
	assert.Contains(t, out, "price: $6,628.15")
	assert.Contains(t, out, "confidence: normal")
	assert.Contains(t, out, "excluded: degenerate quote at strike 6640")
}

func TestFairPriceEstimateJSON(t *testing.T) {
	data, err := json.Marshal(estimateFixture())
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(data), `"method":"put_call_parity"`))
	assert.True(t, strings.Contains(string(data), `"underlying":"SPX"`))

	var decoded FairPriceEstimate
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Price.Equal(decimal.RequireFromString("6628.15")))
	assert.Len(t, decoded.Excluded, 1)
}

func TestFairPriceEstimateToCsvDTO(t *testing.T) {
	row := estimateFixture().ToCsvDTO()

	assert.Equal(t, "SPX", row.Underlying)
	assert.Equal(t, "6628.15", row.Price)
	assert.Equal(t, "3.30", row.EstimatedError)
	assert.Equal(t, 2, row.Strikes)
	assert.InDelta(t, 0.0498, row.ErrorPercent, 1e-4)
}

func TestSessionLatestEstimate(t *testing.T) {
	session := NewSession("2025-10-17")
	assert.Nil(t, session.LatestEstimate("SPX"))

	early := estimateFixture()
	late := estimateFixture()
	late.Timestamp = late.Timestamp.Add(time.Hour)
	other := estimateFixture()
	other.Underlying = "NDX"
	other.Timestamp = other.Timestamp.Add(2 * time.Hour)

	session.Estimates = append(session.Estimates, late, early, other)

	assert.Same(t, late, session.LatestEstimate("spx"))
	assert.Same(t, other, session.LatestEstimate("NDX"))
}
