package eventservices

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
	"github.com/jiaming2012/spx-fair-value/src/utils"
)

type MarketClock interface {
	IsOpen(ctx context.Context, now time.Time) (bool, error)
}

type FairValueService struct {
	Fetcher SnapshotFetcher
	Store   SessionStore
	Config  *eventmodels.ParityConfigYAML
	Clock   MarketClock
	Now     func() time.Time
}

var (
	meter               = otel.Meter("FairValueService")
	estimatesCounter, _ = meter.Int64Counter("fair_value.estimates",
		metric.WithDescription("Fair price estimates produced, by confidence"))
	rejectedCounter, _ = meter.Int64Counter("fair_value.rejected",
		metric.WithDescription("Estimate requests rejected for insufficient or degenerate data"))
)

type EstimateRequest struct {
	Symbol eventmodels.StockSymbol
	Save   bool
}

// Estimate fetches a fresh snapshot for the symbol, bounds the strike search around the reference
// price and runs the parity extractor. Errors from EstimateFairPrice are returned unchanged in the
// chain so callers can match eventmodels.ErrInsufficientData.
func (s *FairValueService) Estimate(ctx context.Context, req EstimateRequest) (*eventmodels.FairPriceEstimate, error) {
	tracer := otel.Tracer("FairValueService")
	ctx, span := tracer.Start(ctx, "FairValueService.Estimate")
	defer span.End()

	span.SetAttributes(attribute.String("symbol", req.Symbol.String()))

	logger := log.WithContext(ctx)

	symbolConfig, err := s.Config.GetSymbol(req.Symbol)
	if err != nil {
		return nil, fmt.Errorf("FairValueService.Estimate: %w", err)
	}

	cfg, err := symbolConfig.ToParityConfig()
	if err != nil {
		return nil, fmt.Errorf("FairValueService.Estimate: %w", err)
	}

	now := s.Now()

	today, err := utils.TradingDate(now)
	if err != nil {
		return nil, fmt.Errorf("FairValueService.Estimate: %w", err)
	}

	if s.Clock != nil {
		open, err := s.Clock.IsOpen(ctx, now)
		if err != nil {
			logger.Warnf("FairValueService.Estimate: failed to check market hours: %v", err)
		} else if !open {
			logger.Warnf("market is closed: %s quotes may be stale", req.Symbol)
		}
	}

	var last *eventmodels.FairPriceEstimate
	if s.Store != nil {
		session, err := s.Store.Load(ctx, today)
		if err != nil {
			logger.Warnf("FairValueService.Estimate: failed to load session %s: %v", today, err)
		} else {
			last = session.LatestEstimate(req.Symbol)
		}
	}

	var proxy *eventmodels.StockTickItemDTO
	if last == nil && symbolConfig.ProxySymbol != "" {
		proxy, err = s.Fetcher.FetchProxyQuote(ctx, eventmodels.NewStockSymbol(symbolConfig.ProxySymbol))
		if err != nil {
			logger.Warnf("FairValueService.Estimate: proxy quote unavailable, strike band disabled: %v", err)
		}
	}

	reference := ResolveReferencePrice(last, today, proxy, symbolConfig.GetProxyMultiplier())
	cfg = cfg.WithReferencePrice(reference)

	snapshot, err := s.Fetcher.FetchSnapshot(ctx, req.Symbol, symbolConfig.Root, now)
	if err != nil {
		return nil, fmt.Errorf("FairValueService.Estimate: failed to fetch snapshot: %w", err)
	}

	estimate, err := EstimateFairPrice(snapshot, cfg)
	if err != nil {
		if errors.Is(err, eventmodels.ErrInsufficientData) || errors.Is(err, eventmodels.ErrDegenerateEstimate) {
			rejectedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", req.Symbol.String())))
		}

		return nil, fmt.Errorf("FairValueService.Estimate: %w", err)
	}

	estimatesCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("symbol", req.Symbol.String()),
		attribute.String("confidence", string(estimate.Confidence)),
	))

	span.SetAttributes(
		attribute.String("price", estimate.Price.String()),
		attribute.String("confidence", string(estimate.Confidence)),
	)

	if estimate.IsLowConfidence() {
		logger.Warnf("%s estimate %s is low confidence: strikes disagree by %s", estimate.Underlying, estimate.Price.StringFixed(2), estimate.EstimatedError.StringFixed(2))
	}

	for _, ex := range estimate.Excluded {
		logger.Debugf("FairValueService.Estimate: %v", ex)
	}

	if req.Save {
		if s.Store == nil {
			return nil, fmt.Errorf("FairValueService.Estimate: save requested without a session store")
		}

		if _, err := s.Store.Append(ctx, estimate); err != nil {
			return nil, fmt.Errorf("FairValueService.Estimate: failed to save estimate: %w", err)
		}
	}

	return estimate, nil
}

func NewFairValueService(fetcher SnapshotFetcher, store SessionStore, config *eventmodels.ParityConfigYAML) *FairValueService {
	return &FairValueService{
		Fetcher: fetcher,
		Store:   store,
		Config:  config,
		Now:     time.Now,
	}
}
