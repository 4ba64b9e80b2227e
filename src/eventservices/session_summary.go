package eventservices

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
)

func SummarizeSession(session *eventmodels.Session, symbol eventmodels.StockSymbol) (*eventmodels.SessionSummary, error) {
	var prices, errs []float64
	lowConfidence := 0

	for _, e := range session.Estimates {
		if !e.Underlying.Equals(symbol) {
			continue
		}

		prices = append(prices, e.Price.InexactFloat64())
		errs = append(errs, e.EstimatedError.InexactFloat64())

		if e.IsLowConfidence() {
			lowConfidence++
		}
	}

	if len(prices) == 0 {
		return nil, fmt.Errorf("SummarizeSession: no %s estimates on %s", symbol, session.Date)
	}

	mean, err := stats.Mean(prices)
	if err != nil {
		return nil, fmt.Errorf("SummarizeSession: failed to calculate mean: %v", err)
	}

	median, err := stats.Median(prices)
	if err != nil {
		return nil, fmt.Errorf("SummarizeSession: failed to calculate median: %v", err)
	}

	sd, err := stats.StandardDeviation(prices)
	if err != nil {
		return nil, fmt.Errorf("SummarizeSession: failed to calculate the standard deviation: %v", err)
	}

	min, err := stats.Min(prices)
	if err != nil {
		return nil, fmt.Errorf("SummarizeSession: failed to calculate min: %v", err)
	}

	max, err := stats.Max(prices)
	if err != nil {
		return nil, fmt.Errorf("SummarizeSession: failed to calculate max: %v", err)
	}

	meanErr, err := stats.Mean(errs)
	if err != nil {
		return nil, fmt.Errorf("SummarizeSession: failed to calculate mean error: %v", err)
	}

	return &eventmodels.SessionSummary{
		Date:          session.Date,
		Underlying:    symbol,
		Count:         len(prices),
		LowConfidence: lowConfidence,
		Mean:          mean,
		Median:        median,
		StdDev:        sd,
		Min:           min,
		Max:           max,
		MeanError:     meanErr,
	}, nil
}

func ExportSessionCSV(w io.Writer, session *eventmodels.Session) error {
	rows := make([]*eventmodels.FairPriceEstimateCsvDTO, 0, len(session.Estimates))
	for _, e := range session.Estimates {
		rows = append(rows, e.ToCsvDTO())
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("ExportSessionCSV: failed to marshal session %s: %w", session.Date, err)
	}

	return nil
}
