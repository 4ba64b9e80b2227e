package eventservices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
)

const optionChainFixture = `{"options":{"option":[
{"symbol":"SPXW251017C06620000","root_symbol":"SPXW","strike":6620,"option_type":"call","bid":94.7,"ask":95.7},
{"symbol":"SPXW251017P06620000","root_symbol":"SPXW","strike":6620,"option_type":"put","bid":84.9,"ask":85.9},
{"symbol":"SPXW251017C06630000","root_symbol":"SPXW","strike":6630,"option_type":"call","bid":87.5,"ask":88.7},
{"symbol":"SPXW251017P06630000","root_symbol":"SPXW","strike":6630,"option_type":"put","bid":91.0,"ask":92.2},
{"symbol":"SPX251017C06620000","root_symbol":"SPX","strike":6620,"option_type":"call","bid":90.0,"ask":99.0},
{"symbol":"SPXW251017X06640000","root_symbol":"SPXW","strike":6640,"option_type":"straddle","bid":1,"ask":2}
]}}`

func newTradierServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/chains", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "SPX", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2025-10-17", r.URL.Query().Get("expiration"))
		w.Write([]byte(optionChainFixture))
	})

	mux.HandleFunc("/expirations", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("includeAllRoots"))
		w.Write([]byte(`{"expirations":{"date":["2025-10-16","2025-10-20","2025-10-17"]}}`))
	})

	mux.HandleFunc("/quotes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SPY", r.URL.Query().Get("symbols"))
		w.Write([]byte(`{"quotes":{"quote":{"symbol":"SPY","last":662.6,"bid":662.5,"ask":662.7}}}`))
	})

	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestFetchOptionChainSnapshot(t *testing.T) {
	srv := newTradierServer(t)
	now := time.Date(2025, 10, 17, 14, 30, 0, 0, time.UTC)
	expiration := time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC)

	t.Run("filters root and converts quotes", func(t *testing.T) {
		snapshot, err := FetchOptionChainSnapshot(context.Background(), srv.URL+"/chains", "token", "SPX", "spxw", expiration, now)
		require.NoError(t, err)

		assert.Equal(t, "SPXW", snapshot.Root)
		assert.Equal(t, now, snapshot.Timestamp)
		require.Len(t, snapshot.Quotes, 4)
		assert.Len(t, snapshot.Calls(), 2)
		assert.Len(t, snapshot.Puts(), 2)
		assert.Equal(t, "95.2", snapshot.Quotes[0].Mark.String())

		estimate, err := EstimateFairPrice(snapshot, eventmodels.DefaultParityConfig())
		require.NoError(t, err)
		assert.Equal(t, "6628.15", estimate.Price.String())
	})

	t.Run("without root keeps every valid contract", func(t *testing.T) {
		snapshot, err := FetchOptionChainSnapshot(context.Background(), srv.URL+"/chains", "token", "SPX", "", expiration, now)
		require.NoError(t, err)
		assert.Len(t, snapshot.Quotes, 5)
	})

	t.Run("http error", func(t *testing.T) {
		_, err := FetchOptionChainSnapshot(context.Background(), srv.URL+"/down", "token", "SPX", "", expiration, now)
		assert.Error(t, err)
	})
}

func TestFetchNearestExpiration(t *testing.T) {
	srv := newTradierServer(t)

	expiration, err := FetchNearestExpiration(context.Background(), srv.URL+"/expirations", "token", "SPX", time.Date(2025, 10, 17, 14, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC), expiration)

	expiration, err = FetchNearestExpiration(context.Background(), srv.URL+"/expirations", "token", "SPX", time.Date(2025, 10, 18, 14, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), expiration)

	_, err = FetchNearestExpiration(context.Background(), srv.URL+"/expirations", "token", "SPX", time.Date(2025, 10, 21, 14, 30, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestFetchStockTicks(t *testing.T) {
	srv := newTradierServer(t)

	tick, err := FetchStockTicks(context.Background(), srv.URL+"/quotes", "token", "spy")
	require.NoError(t, err)

	mid, err := tick.Mid()
	require.NoError(t, err)
	assert.Equal(t, "662.6", mid.String())

	_, err = FetchStockTicks(context.Background(), srv.URL+"/down", "token", "spy")
	assert.Error(t, err)
}

func TestTradierClientFetchSnapshot(t *testing.T) {
	srv := newTradierServer(t)
	client := NewTradierClient("token", srv.URL+"/chains", srv.URL+"/expirations", srv.URL+"/quotes")

	snapshot, err := client.FetchSnapshot(context.Background(), "SPX", "SPXW", time.Date(2025, 10, 17, 14, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-10-17", snapshot.Expiration.Format("2006-01-02"))
	assert.Len(t, snapshot.Quotes, 4)
}
