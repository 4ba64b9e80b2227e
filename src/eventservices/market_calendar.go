package eventservices

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
	"github.com/jiaming2012/spx-fair-value/src/utils"
)

// IsMarketOpen reports whether now falls inside the regular session of its New York trading day.
func IsMarketOpen(calendar *eventmodels.MarketCalendar, now time.Time) (bool, error) {
	loc, err := utils.NewYorkLocation()
	if err != nil {
		return false, err
	}

	local := now.In(loc)
	dateStr := local.Format(utils.DateLayout)
	timeStr := local.Format("15:04")

	for _, day := range calendar.Calendar.Days.Day {
		if day.Date != dateStr {
			continue
		}

		if day.Status != "open" {
			return false, nil
		}

		start, err := time.Parse("15:04", day.Open.Start)
		if err != nil {
			return false, fmt.Errorf("IsMarketOpen: invalid open time %q: %w", day.Open.Start, err)
		}

		end, err := time.Parse("15:04", day.Open.End)
		if err != nil {
			return false, fmt.Errorf("IsMarketOpen: invalid close time %q: %w", day.Open.End, err)
		}

		currentTime, err := time.Parse("15:04", timeStr)
		if err != nil {
			return false, err
		}

		return !currentTime.Before(start) && currentTime.Before(end), nil
	}

	return false, fmt.Errorf("IsMarketOpen: %s not found in calendar", dateStr)
}

// MarketCalendarCache keeps the calendar of the current month.
type MarketCalendarCache struct {
	url         string
	bearerToken string
	mu          sync.Mutex
	cached      *eventmodels.MarketCalendar
}

// Fetch returns the calendar of the New York month containing now.
func (c *MarketCalendarCache) Fetch(ctx context.Context, now time.Time) (*eventmodels.MarketCalendar, error) {
	loc, err := utils.NewYorkLocation()
	if err != nil {
		return nil, fmt.Errorf("FetchMarketCalendar: %w", err)
	}

	now = now.In(loc)
	currentMonth := now.Format("2006-01")
	currentMonthInt := int(now.Month())

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.cached.Calendar.Month == currentMonthInt && c.cached.Calendar.Year == now.Year() {
		return c.cached, nil
	}

	log.Debugf("Cache invalid. Fetching market calendar for %v", currentMonth)

	body, err := tradierGet(ctx, c.url, c.bearerToken, map[string]string{
		"month": fmt.Sprintf("%02d", currentMonthInt),
		"year":  strconv.Itoa(now.Year()),
	})
	if err != nil {
		return nil, fmt.Errorf("FetchMarketCalendar: %w", err)
	}

	var dto eventmodels.MarketCalendar
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("FetchMarketCalendar: failed to decode json: %w", err)
	}

	c.cached = &dto

	return &dto, nil
}

func (c *MarketCalendarCache) IsOpen(ctx context.Context, now time.Time) (bool, error) {
	calendar, err := c.Fetch(ctx, now)
	if err != nil {
		return false, err
	}

	return IsMarketOpen(calendar, now)
}

func NewMarketCalendarCache(url, bearerToken string) *MarketCalendarCache {
	return &MarketCalendarCache{
		url:         url,
		bearerToken: bearerToken,
	}
}
