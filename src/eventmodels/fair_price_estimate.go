package eventmodels

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const PutCallParityMethod = "put_call_parity"

type FairPriceEstimate struct {
	ID             uuid.UUID               `json:"id"`
	Underlying     StockSymbol             `json:"underlying"`
	Expiration     time.Time               `json:"expiration"`
	Price          decimal.Decimal         `json:"price"`
	SourceStrike   decimal.Decimal         `json:"source_strike"`
	Method         string                  `json:"method"`
	Timestamp      time.Time               `json:"timestamp"`
	EstimatedError decimal.Decimal         `json:"estimated_error"`
	Confidence     Confidence              `json:"confidence"`
	Strikes        []StrikeEstimate        `json:"strikes"`
	Excluded       []*DegenerateQuoteError `json:"excluded,omitempty"`
}

func (e *FairPriceEstimate) IsLowConfidence() bool {
	return e.Confidence == ConfidenceLow
}

func (e *FairPriceEstimate) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	fmt.Fprintf(display, "%s fair price (%s, exp %s):\n", e.Underlying, e.Method, e.Expiration.Format("2006-01-02"))

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Strike", "Call Mark", "Put Mark", "Spread", "Implied"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")

	for _, s := range e.Strikes {
		strike := p.Sprintf("%.2f", s.Strike.InexactFloat64())
		if s.Strike.Equal(e.SourceStrike) {
			strike = "*" + strike
		}

		table.Append([]string{
			strike,
			s.CallMark.StringFixed(2),
			s.PutMark.StringFixed(2),
			s.Spread.StringFixed(2),
			p.Sprintf("$%.2f", s.Price.InexactFloat64()),
		})
	}

	table.Render()

	fmt.Fprintf(display, "price: $%s  error: +/-%s  confidence: %s\n",
		p.Sprintf("%.2f", e.Price.InexactFloat64()), e.EstimatedError.StringFixed(2), e.Confidence)

	for _, ex := range e.Excluded {
		fmt.Fprintf(display, "excluded: %v\n", ex)
	}

	return display.String()
}
