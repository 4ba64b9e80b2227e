package eventmodels

type MarketCalendarSession struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type MarketCalendarDay struct {
	Date        string                `json:"date"`
	Status      string                `json:"status"`
	Description string                `json:"description"`
	Premarket   MarketCalendarSession `json:"premarket"`
	Open        MarketCalendarSession `json:"open"`
	Postmarket  MarketCalendarSession `json:"postmarket"`
}

type MarketCalendar struct {
	Calendar struct {
		Month int `json:"month"`
		Year  int `json:"year"`
		Days  struct {
			Day []MarketCalendarDay `json:"day"`
		} `json:"days"`
	} `json:"calendar"`
}
