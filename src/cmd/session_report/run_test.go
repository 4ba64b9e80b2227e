package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
	"github.com/jiaming2012/spx-fair-value/src/eventservices"
)

func setupReportEnv(t *testing.T) string {
	t.Helper()

	sessionsDir := t.TempDir()

	t.Setenv("ENV", "production")
	t.Setenv("TRADIER_BEARER_TOKEN", "token")
	t.Setenv("OPTION_CHAIN_URL", "http://chains")
	t.Setenv("OPTION_EXPIRATIONS_URL", "http://expirations")
	t.Setenv("STOCK_QUOTES_URL", "http://quotes")
	t.Setenv("SESSIONS_DIR", sessionsDir)
	t.Setenv("SESSION_STORE", "file")

	return sessionsDir
}

func seedEstimate(t *testing.T, sessionsDir string) *eventmodels.FairPriceEstimate {
	t.Helper()

	q := func(optionType eventmodels.OptionType, strike, bid, ask string) eventmodels.OptionQuote {
		return eventmodels.NewOptionQuote(optionType, decimal.RequireFromString(strike), decimal.RequireFromString(bid), decimal.RequireFromString(ask))
	}

	estimate, err := eventservices.EstimateFairPrice(&eventmodels.OptionChainSnapshot{
		Underlying: eventmodels.NewStockSymbol("spx"),
		Root:       "SPXW",
		Expiration: time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC),
		Timestamp:  time.Date(2025, 10, 17, 14, 30, 0, 0, time.UTC),
		Quotes: []eventmodels.OptionQuote{
			q(eventmodels.Call, "6620", "94.70", "95.70"),
			q(eventmodels.Put, "6620", "84.90", "85.90"),
			q(eventmodels.Call, "6630", "87.50", "88.70"),
			q(eventmodels.Put, "6630", "91.00", "92.20"),
		},
	}, eventmodels.DefaultParityConfig())
	require.NoError(t, err)

	_, err = eventservices.NewFileSessionStore(sessionsDir).Append(context.Background(), estimate)
	require.NoError(t, err)

	return estimate
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("summary and csv export", func(t *testing.T) {
		sessionsDir := setupReportEnv(t)
		estimate := seedEstimate(t, sessionsDir)

		csvPath := filepath.Join(t.TempDir(), "spx.csv")
		err := Run(ctx, RunArgs{
			Date:      "2025-10-17",
			Symbol:    "SPX",
			ExportCSV: csvPath,
			GoEnv:     "production",
		})
		require.NoError(t, err)

		data, err := os.ReadFile(csvPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "id,underlying,expiration")
		assert.Contains(t, string(data), estimate.ID.String())
		assert.Contains(t, string(data), "6628.15")
	})

	t.Run("empty day", func(t *testing.T) {
		setupReportEnv(t)

		err := Run(ctx, RunArgs{Date: "2025-10-16", Symbol: "SPX", GoEnv: "production"})
		assert.ErrorContains(t, err, "no SPX estimates")
	})

	t.Run("invalid date", func(t *testing.T) {
		setupReportEnv(t)

		err := Run(ctx, RunArgs{Date: "yesterday", Symbol: "SPX", GoEnv: "production"})
		assert.Error(t, err)
	})
}
