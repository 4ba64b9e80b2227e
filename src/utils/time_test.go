package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradingDate(t *testing.T) {
	// 01:30 UTC is still the previous evening in New York
	date, err := TradingDate(time.Date(2025, 10, 18, 1, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-10-17", date)

	date, err = TradingDate(time.Date(2025, 10, 17, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-10-17", date)
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2025-10-17")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC), parsed)

	_, err = ParseDate("10/17/2025")
	assert.Error(t, err)
}
