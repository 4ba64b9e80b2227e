package eventservices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
)

type fakeFetcher struct {
	snapshot   *eventmodels.OptionChainSnapshot
	proxy      *eventmodels.StockTickItemDTO
	proxyCalls int
	root       string
	err        error
}

func (f *fakeFetcher) FetchSnapshot(ctx context.Context, symbol eventmodels.StockSymbol, root string, now time.Time) (*eventmodels.OptionChainSnapshot, error) {
	f.root = root
	if f.err != nil {
		return nil, f.err
	}

	s := *f.snapshot
	s.Timestamp = now
	return &s, nil
}

func (f *fakeFetcher) FetchProxyQuote(ctx context.Context, symbol eventmodels.StockSymbol) (*eventmodels.StockTickItemDTO, error) {
	f.proxyCalls++
	if f.proxy == nil {
		return nil, errors.New("no proxy")
	}

	return f.proxy, nil
}

type fixedClock struct {
	open  bool
	calls int
}

func (c *fixedClock) IsOpen(ctx context.Context, now time.Time) (bool, error) {
	c.calls++
	return c.open, nil
}

func newTestService(t *testing.T, fetcher *fakeFetcher) *FairValueService {
	t.Helper()

	config, err := ParseParityConfigYAML([]byte(parityConfigFixture))
	require.NoError(t, err)

	svc := NewFairValueService(fetcher, NewFileSessionStore(t.TempDir()), config)
	svc.Now = func() time.Time {
		return time.Date(2025, 10, 17, 14, 30, 0, 0, time.UTC)
	}

	return svc
}

func TestFairValueServiceEstimate(t *testing.T) {
	ctx := context.Background()

	t.Run("estimates and saves", func(t *testing.T) {
		fetcher := &fakeFetcher{
			snapshot: newSnapshot(
				quoteWithMark(eventmodels.Call, "6620", "95.20", "0.50"),
				quoteWithMark(eventmodels.Put, "6620", "85.40", "0.50"),
				quoteWithMark(eventmodels.Call, "6630", "88.10", "0.60"),
				quoteWithMark(eventmodels.Put, "6630", "91.60", "0.60"),
				quoteWithMark(eventmodels.Call, "6640", "81.00", "0.70"),
				quoteWithMark(eventmodels.Put, "6640", "97.50", "0.70"),
			),
			proxy: &eventmodels.StockTickItemDTO{Symbol: "SPY", Bid: 662.5, Ask: 662.7},
		}
		svc := newTestService(t, fetcher)

		estimate, err := svc.Estimate(ctx, EstimateRequest{Symbol: "SPX", Save: true})
		require.NoError(t, err)

		assert.Equal(t, "SPXW", fetcher.root)
		assert.Equal(t, 1, fetcher.proxyCalls)
		assert.Len(t, estimate.Strikes, 3)

		session, err := svc.Store.Load(ctx, "2025-10-17")
		require.NoError(t, err)
		require.Len(t, session.Estimates, 1)

		// the saved estimate becomes the reference, so the proxy is not consulted again
		_, err = svc.Estimate(ctx, EstimateRequest{Symbol: "SPX"})
		require.NoError(t, err)
		assert.Equal(t, 1, fetcher.proxyCalls)
	})

	t.Run("insufficient data is not masked by the proxy", func(t *testing.T) {
		fetcher := &fakeFetcher{
			snapshot: newSnapshot(
				quoteWithMark(eventmodels.Put, "6620", "85.40", "0.50"),
				quoteWithMark(eventmodels.Put, "6630", "91.60", "0.60"),
			),
			proxy: &eventmodels.StockTickItemDTO{Symbol: "SPY", Bid: 662.5, Ask: 662.7},
		}
		svc := newTestService(t, fetcher)

		estimate, err := svc.Estimate(ctx, EstimateRequest{Symbol: "SPX", Save: true})
		assert.Nil(t, estimate)
		assert.ErrorIs(t, err, eventmodels.ErrInsufficientData)

		session, err := svc.Store.Load(ctx, "2025-10-17")
		require.NoError(t, err)
		assert.Empty(t, session.Estimates)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		svc := newTestService(t, &fakeFetcher{})

		_, err := svc.Estimate(ctx, EstimateRequest{Symbol: "RUT"})
		assert.Error(t, err)
	})

	t.Run("fetch failure", func(t *testing.T) {
		svc := newTestService(t, &fakeFetcher{err: errors.New("tradier down")})

		_, err := svc.Estimate(ctx, EstimateRequest{Symbol: "SPX"})
		assert.ErrorContains(t, err, "tradier down")
	})

	t.Run("closed market still estimates", func(t *testing.T) {
		fetcher := &fakeFetcher{
			snapshot: newSnapshot(
				quoteWithMark(eventmodels.Call, "6620", "95.20", "0.50"),
				quoteWithMark(eventmodels.Put, "6620", "85.40", "0.50"),
				quoteWithMark(eventmodels.Call, "6630", "88.10", "0.60"),
				quoteWithMark(eventmodels.Put, "6630", "91.60", "0.60"),
				quoteWithMark(eventmodels.Call, "6640", "81.00", "0.70"),
				quoteWithMark(eventmodels.Put, "6640", "97.50", "0.70"),
			),
		}
		clock := &fixedClock{open: false}
		svc := newTestService(t, fetcher)
		svc.Clock = clock

		estimate, err := svc.Estimate(ctx, EstimateRequest{Symbol: "SPX"})
		require.NoError(t, err)
		assert.Equal(t, "6626.6", estimate.Price.String())
		assert.Equal(t, 1, clock.calls)
	})
}
