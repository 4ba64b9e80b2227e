package eventmodels

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type SessionSummary struct {
	Date          string      `json:"date"`
	Underlying    StockSymbol `json:"underlying"`
	Count         int         `json:"count"`
	LowConfidence int         `json:"low_confidence"`
	Mean          float64     `json:"mean"`
	Median        float64     `json:"median"`
	StdDev        float64     `json:"std_dev"`
	Min           float64     `json:"min"`
	Max           float64     `json:"max"`
	MeanError     float64     `json:"mean_error"`
}

func (s *SessionSummary) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	fmt.Fprintf(display, "Session %s (%s):\n", s.Date, s.Underlying)

	table := tablewriter.NewWriter(display)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")

	table.Append([]string{"estimates", fmt.Sprintf("%d", s.Count)})
	table.Append([]string{"low confidence", fmt.Sprintf("%d", s.LowConfidence)})
	table.Append([]string{"mean", p.Sprintf("$%.2f", s.Mean)})
	table.Append([]string{"median", p.Sprintf("$%.2f", s.Median)})
	table.Append([]string{"std dev", p.Sprintf("%.2f", s.StdDev)})
	table.Append([]string{"range", p.Sprintf("$%.2f - $%.2f", s.Min, s.Max)})
	table.Append([]string{"mean error", p.Sprintf("%.2f", s.MeanError)})

	table.Render()
	return display.String()
}
