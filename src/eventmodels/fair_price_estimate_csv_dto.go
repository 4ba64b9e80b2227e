package eventmodels

import "time"

type FairPriceEstimateCsvDTO struct {
	ID             string  `csv:"id"`
	Underlying     string  `csv:"underlying"`
	Expiration     string  `csv:"expiration"`
	Timestamp      string  `csv:"timestamp"`
	Price          string  `csv:"price"`
	SourceStrike   string  `csv:"source_strike"`
	EstimatedError string  `csv:"estimated_error"`
	Confidence     string  `csv:"confidence"`
	Strikes        int     `csv:"strikes"`
	ErrorPercent   float64 `csv:"error_percent"`
}

func (e *FairPriceEstimate) ToCsvDTO() *FairPriceEstimateCsvDTO {
	var errPerc float64
	if e.Price.IsPositive() {
		errPerc = e.EstimatedError.Div(e.Price).InexactFloat64() * 100
	}

	return &FairPriceEstimateCsvDTO{
		ID:             e.ID.String(),
		Underlying:     e.Underlying.String(),
		Expiration:     e.Expiration.Format("2006-01-02"),
		Timestamp:      e.Timestamp.Format(time.RFC3339),
		Price:          e.Price.StringFixed(2),
		SourceStrike:   e.SourceStrike.String(),
		EstimatedError: e.EstimatedError.StringFixed(2),
		Confidence:     string(e.Confidence),
		Strikes:        len(e.Strikes),
		ErrorPercent:   errPerc,
	}
}
