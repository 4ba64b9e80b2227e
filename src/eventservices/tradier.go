package eventservices

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
)

func tradierGet(ctx context.Context, url, bearerToken string, params map[string]string) ([]byte, error) {
	client := http.Client{
		Timeout: 10 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("tradierGet: failed to create request: %w", err)
	}

	q := req.URL.Query()
	for k, v := range params {
		q.Add(k, v)
	}

	req.URL.RawQuery = q.Encode()
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", bearerToken))

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tradierGet: failed to fetch %s: %w", url, err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tradierGet: failed to fetch %s, http code %v", url, res.Status)
	}

	bytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("tradierGet: failed to read response body: %w", err)
	}

	return bytes, nil
}

// SnapshotFetcher supplies materialized option chains and proxy quotes to the estimator.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, symbol eventmodels.StockSymbol, root string, now time.Time) (*eventmodels.OptionChainSnapshot, error)
	FetchProxyQuote(ctx context.Context, symbol eventmodels.StockSymbol) (*eventmodels.StockTickItemDTO, error)
}

type TradierClient struct {
	BearerToken          string
	OptionChainURL       string
	OptionExpirationsURL string
	StockQuotesURL       string
}

func (c *TradierClient) FetchSnapshot(ctx context.Context, symbol eventmodels.StockSymbol, root string, now time.Time) (*eventmodels.OptionChainSnapshot, error) {
	expiration, err := FetchNearestExpiration(ctx, c.OptionExpirationsURL, c.BearerToken, symbol, now)
	if err != nil {
		return nil, fmt.Errorf("TradierClient: %w", err)
	}

	return c.FetchSnapshotForExpiration(ctx, symbol, root, expiration, now)
}

func (c *TradierClient) FetchSnapshotForExpiration(ctx context.Context, symbol eventmodels.StockSymbol, root string, expiration, now time.Time) (*eventmodels.OptionChainSnapshot, error) {
	snapshot, err := FetchOptionChainSnapshot(ctx, c.OptionChainURL, c.BearerToken, symbol, root, expiration, now)
	if err != nil {
		return nil, fmt.Errorf("TradierClient: %w", err)
	}

	return snapshot, nil
}

func (c *TradierClient) FetchProxyQuote(ctx context.Context, symbol eventmodels.StockSymbol) (*eventmodels.StockTickItemDTO, error) {
	tick, err := FetchStockTicks(ctx, c.StockQuotesURL, c.BearerToken, symbol)
	if err != nil {
		return nil, fmt.Errorf("TradierClient: %w", err)
	}

	return tick, nil
}

func NewTradierClient(bearerToken, optionChainURL, optionExpirationsURL, stockQuotesURL string) *TradierClient {
	return &TradierClient{
		BearerToken:          bearerToken,
		OptionChainURL:       optionChainURL,
		OptionExpirationsURL: optionExpirationsURL,
		StockQuotesURL:       stockQuotesURL,
	}
}
