package eventservices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
	"github.com/jiaming2012/spx-fair-value/src/utils"
)

// FetchOptionChainSnapshot fetches one expiration of the Tradier option chain. When root is set,
// only contracts of that root symbol (e.g. SPXW) are kept.
func FetchOptionChainSnapshot(ctx context.Context, url, bearerToken string, symbol eventmodels.StockSymbol, root string, expiration time.Time, now time.Time) (*eventmodels.OptionChainSnapshot, error) {
	tracer := otel.Tracer("FetchOptionChainSnapshot")
	ctx, span := tracer.Start(ctx, "FetchOptionChainSnapshot")
	defer span.End()

	span.SetAttributes(
		attribute.String("symbol", symbol.String()),
		attribute.String("expiration", expiration.Format(utils.DateLayout)),
	)

	client := http.Client{
		Timeout: 10 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("FetchOptionChainSnapshot: failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Add("symbol", symbol.String())
	q.Add("expiration", expiration.Format(utils.DateLayout))

	req.URL.RawQuery = q.Encode()
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", bearerToken))

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FetchOptionChainSnapshot: failed to fetch option chain: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FetchOptionChainSnapshot: failed to fetch option chain, http code %v", res.Status)
	}

	var dto eventmodels.OptionContractChainDTO
	if err := json.NewDecoder(res.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("FetchOptionChainSnapshot: failed to decode json: %w", err)
	}

	snapshot := &eventmodels.OptionChainSnapshot{
		Underlying: symbol,
		Root:       strings.ToUpper(root),
		Expiration: expiration,
		Timestamp:  now,
	}

	for _, tick := range dto.Options.Values {
		if root != "" && !strings.EqualFold(tick.RootSymbol, root) {
			continue
		}

		quote, err := tick.ToOptionQuote()
		if err != nil {
			log.Warnf("FetchOptionChainSnapshot: skipping tick: %v", err)
			continue
		}

		snapshot.Quotes = append(snapshot.Quotes, quote)
	}

	span.SetAttributes(attribute.Int("quotes", len(snapshot.Quotes)))

	return snapshot, nil
}

// FetchNearestExpiration returns the first listed expiration on or after the trading date of now.
func FetchNearestExpiration(ctx context.Context, url, bearerToken string, symbol eventmodels.StockSymbol, now time.Time) (time.Time, error) {
	tracer := otel.Tracer("FetchNearestExpiration")
	ctx, span := tracer.Start(ctx, "FetchNearestExpiration")
	defer span.End()

	body, err := tradierGet(ctx, url, bearerToken, map[string]string{
		"symbol":          symbol.String(),
		"includeAllRoots": "true",
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("FetchNearestExpiration: %w", err)
	}

	dates, err := utils.ParseTradierResponse[string](body)
	if err != nil {
		return time.Time{}, fmt.Errorf("FetchNearestExpiration: failed to parse response: %w", err)
	}

	today, err := utils.TradingDate(now)
	if err != nil {
		return time.Time{}, fmt.Errorf("FetchNearestExpiration: %w", err)
	}

	return nearestExpiration(dates, today)
}

func nearestExpiration(dates []string, today string) (time.Time, error) {
	var nearest string
	for _, date := range dates {
		// YYYY-MM-DD compares lexically
		if date < today {
			continue
		}

		if nearest == "" || date < nearest {
			nearest = date
		}
	}

	if nearest == "" {
		return time.Time{}, fmt.Errorf("nearestExpiration: no expiration on or after %s", today)
	}

	return utils.ParseDate(nearest)
}

func FetchStockTicks(ctx context.Context, url, bearerToken string, symbol eventmodels.StockSymbol) (*eventmodels.StockTickItemDTO, error) {
	tracer := otel.Tracer("FetchStockTicks")
	ctx, span := tracer.Start(ctx, "FetchStockTicks")
	defer span.End()

	body, err := tradierGet(ctx, url, bearerToken, map[string]string{
		"symbols": symbol.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("FetchStockTicks: %w", err)
	}

	var dto eventmodels.StockTickDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("FetchStockTicks: failed to decode json: %w", err)
	}

	if dto.Quotes.Tick.Symbol == "" {
		return nil, fmt.Errorf("FetchStockTicks: no quote returned for %s", symbol)
	}

	return &dto.Quotes.Tick, nil
}
