package eventmodels

import (
	"time"
)

// Session is one trading day of persisted estimates.
type Session struct {
	Date      string               `json:"date"`
	UpdatedAt time.Time            `json:"updated_at"`
	Estimates []*FairPriceEstimate `json:"estimates"`
}

// LatestEstimate returns the most recent estimate for symbol, or nil.
func (s *Session) LatestEstimate(symbol StockSymbol) *FairPriceEstimate {
	var latest *FairPriceEstimate
	for _, e := range s.Estimates {
		if !e.Underlying.Equals(symbol) {
			continue
		}

		if latest == nil || e.Timestamp.After(latest.Timestamp) {
			latest = e
		}
	}

	return latest
}

func NewSession(date string) *Session {
	return &Session{
		Date:      date,
		Estimates: []*FairPriceEstimate{},
	}
}
