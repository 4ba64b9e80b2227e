package eventservices

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
)

var estimateNamespace = uuid.MustParse("5c2f5bb8-7a4e-4c55-9a8f-2f1f4f2b6a10")

type parityPair struct {
	strike decimal.Decimal
	call   eventmodels.OptionQuote
	put    eventmodels.OptionQuote
}

func (p *parityPair) price() decimal.Decimal {
	return p.call.Mark.Sub(p.put.Mark).Add(p.strike)
}

func (p *parityPair) spread() decimal.Decimal {
	return p.call.Spread().Add(p.put.Spread())
}

// EstimateFairPrice derives the underlying spot price from put-call parity, S = C - P + K, across
// the tightest call/put pairs of the snapshot. It never substitutes a proxy price: when fewer than
// cfg.MinPairs usable pairs exist it fails with eventmodels.ErrInsufficientData, and with
// eventmodels.ErrDegenerateEstimate when the pairs imply a non-positive price.
func EstimateFairPrice(snapshot *eventmodels.OptionChainSnapshot, cfg eventmodels.ParityConfig) (*eventmodels.FairPriceEstimate, error) {
	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("EstimateFairPrice: %w", err)
	}

	minPairs := cfg.MinPairs
	if minPairs < eventmodels.MinParityPairs {
		minPairs = eventmodels.MinParityPairs
	}

	pairs, excluded := buildParityPairs(snapshot.Quotes)
	pairs = filterByBand(pairs, cfg.ReferencePrice, cfg.StrikeBand)

	if len(pairs) < minPairs {
		return nil, fmt.Errorf("EstimateFairPrice: %s: found %d usable pairs, need %d: %w", snapshot.Underlying, len(pairs), minPairs, eventmodels.ErrInsufficientData)
	}

	sortBySpread(pairs, cfg.ReferencePrice)

	selected := pairs
	if cfg.MaxStrikes > 0 {
		n := cfg.MaxStrikes
		if n < minPairs {
			n = minPairs
		}

		if n < len(selected) {
			selected = selected[:n]
		}
	}

	strikes := make([]eventmodels.StrikeEstimate, 0, len(selected))
	prices := make([]decimal.Decimal, 0, len(selected))
	for i := range selected {
		p := &selected[i]
		price := p.price()
		prices = append(prices, price)
		strikes = append(strikes, eventmodels.StrikeEstimate{
			Strike:   p.strike,
			CallMark: p.call.Mark,
			PutMark:  p.put.Mark,
			Price:    price,
			Spread:   p.spread(),
		})
	}

	mean := decimal.Avg(prices[0], prices[1:]...)
	deviation := decimal.Max(prices[0], prices[1:]...).Sub(decimal.Min(prices[0], prices[1:]...))

	if !mean.IsPositive() {
		return nil, fmt.Errorf("EstimateFairPrice: %s: non-positive parity price %s: %w", snapshot.Underlying, mean, eventmodels.ErrDegenerateEstimate)
	}

	confidence := eventmodels.ConfidenceNormal
	if deviation.GreaterThan(cfg.Tolerance.Mul(mean)) {
		confidence = eventmodels.ConfidenceLow
	}

	sort.Slice(strikes, func(i, j int) bool {
		return strikes[i].Strike.LessThan(strikes[j].Strike)
	})

	return &eventmodels.FairPriceEstimate{
		ID:             snapshotID(snapshot),
		Underlying:     snapshot.Underlying,
		Expiration:     snapshot.Expiration,
		Price:          mean,
		SourceStrike:   selected[0].strike,
		Method:         eventmodels.PutCallParityMethod,
		Timestamp:      snapshot.Timestamp,
		EstimatedError: deviation,
		Confidence:     confidence,
		Strikes:        strikes,
		Excluded:       excluded,
	}, nil
}

func validateSnapshot(snapshot *eventmodels.OptionChainSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("EstimateFairPrice: missing snapshot: %w", eventmodels.ErrInvalidSnapshot)
	}

	if snapshot.Underlying == "" {
		return fmt.Errorf("EstimateFairPrice: missing underlying symbol: %w", eventmodels.ErrInvalidSnapshot)
	}

	if snapshot.Timestamp.IsZero() {
		return fmt.Errorf("EstimateFairPrice: %s: missing capture timestamp: %w", snapshot.Underlying, eventmodels.ErrInvalidSnapshot)
	}

	return nil
}

// buildParityPairs groups legs by strike. Strikes missing a leg are skipped silently; strikes with
// a degenerate leg, duplicate legs or a zero combined spread are reported back as excluded.
func buildParityPairs(quotes []eventmodels.OptionQuote) ([]parityPair, []*eventmodels.DegenerateQuoteError) {
	type legs struct {
		strike decimal.Decimal
		calls  []eventmodels.OptionQuote
		puts   []eventmodels.OptionQuote
	}

	var order []string
	byStrike := make(map[string]*legs)
	var excluded []*eventmodels.DegenerateQuoteError

	for _, q := range quotes {
		if !q.Strike.IsPositive() {
			excluded = append(excluded, eventmodels.NewDegenerateQuoteError(q.Strike, "non-positive strike"))
			continue
		}

		// decimal values with different exponents must land in the same bucket
		key := q.Strike.String()
		l, ok := byStrike[key]
		if !ok {
			l = &legs{strike: q.Strike}
			byStrike[key] = l
			order = append(order, key)
		}

		switch q.OptionType {
		case eventmodels.Call:
			l.calls = append(l.calls, q)
		case eventmodels.Put:
			l.puts = append(l.puts, q)
		default:
			excluded = append(excluded, eventmodels.NewDegenerateQuoteError(q.Strike, fmt.Sprintf("unknown option type %q", q.OptionType)))
		}
	}

	var pairs []parityPair
	for _, key := range order {
		l := byStrike[key]
		if len(l.calls) == 0 || len(l.puts) == 0 {
			continue
		}

		if len(l.calls) > 1 || len(l.puts) > 1 {
			excluded = append(excluded, eventmodels.NewDegenerateQuoteError(l.strike, "duplicate legs"))
			continue
		}

		if err := l.calls[0].Validate(); err != nil {
			excluded = append(excluded, asDegenerate(l.strike, err))
			continue
		}

		if err := l.puts[0].Validate(); err != nil {
			excluded = append(excluded, asDegenerate(l.strike, err))
			continue
		}

		pair := parityPair{
			strike: l.strike,
			call:   l.calls[0],
			put:    l.puts[0],
		}

		// a locked or empty book carries no price information
		if !pair.spread().IsPositive() {
			excluded = append(excluded, eventmodels.NewDegenerateQuoteError(l.strike, "non-positive combined spread"))
			continue
		}

		pairs = append(pairs, pair)
	}

	return pairs, excluded
}

func asDegenerate(strike decimal.Decimal, err error) *eventmodels.DegenerateQuoteError {
	if d, ok := err.(*eventmodels.DegenerateQuoteError); ok {
		return d
	}

	return eventmodels.NewDegenerateQuoteError(strike, err.Error())
}

// filterByBand keeps strikes within band of the reference price. A zero reference or band disables it.
func filterByBand(pairs []parityPair, reference, band decimal.Decimal) []parityPair {
	if !reference.IsPositive() || !band.IsPositive() {
		return pairs
	}

	var out []parityPair
	for _, p := range pairs {
		if p.strike.Sub(reference).Abs().LessThanOrEqual(band) {
			out = append(out, p)
		}
	}

	return out
}

func sortBySpread(pairs []parityPair, reference decimal.Decimal) {
	sort.SliceStable(pairs, func(i, j int) bool {
		si, sj := pairs[i].spread(), pairs[j].spread()
		if !si.Equal(sj) {
			return si.LessThan(sj)
		}

		if reference.IsPositive() {
			di := pairs[i].strike.Sub(reference).Abs()
			dj := pairs[j].strike.Sub(reference).Abs()
			if !di.Equal(dj) {
				return di.LessThan(dj)
			}
		}

		return pairs[i].strike.LessThan(pairs[j].strike)
	})
}

func snapshotID(snapshot *eventmodels.OptionChainSnapshot) uuid.UUID {
	var b strings.Builder
	b.WriteString(snapshot.Underlying.String())
	b.WriteString("|")
	b.WriteString(snapshot.Expiration.Format("2006-01-02"))
	b.WriteString("|")
	b.WriteString(snapshot.Timestamp.UTC().Format(time.RFC3339Nano))

	for _, q := range snapshot.Quotes {
		fmt.Fprintf(&b, "|%s:%s:%s:%s:%s", q.OptionType, q.Strike, q.Bid, q.Ask, q.Mark)
	}

	return uuid.NewSHA1(estimateNamespace, []byte(b.String()))
}
