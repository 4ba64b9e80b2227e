package utils

import (
	"fmt"
	"sync"
	"time"
)

const DateLayout = "2006-01-02"

var (
	newYork     *time.Location
	newYorkErr  error
	newYorkOnce sync.Once
)

func NewYorkLocation() (*time.Location, error) {
	newYorkOnce.Do(func() {
		newYork, newYorkErr = time.LoadLocation("America/New_York")
		if newYorkErr != nil {
			newYorkErr = fmt.Errorf("NewYorkLocation: failed to load location: %w", newYorkErr)
		}
	})

	return newYork, newYorkErr
}

// TradingDate formats t as a YYYY-MM-DD date in New York time.
func TradingDate(t time.Time) (string, error) {
	loc, err := NewYorkLocation()
	if err != nil {
		return "", err
	}

	return t.In(loc).Format(DateLayout), nil
}

func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDate: invalid date %q: %w", date, err)
	}

	return t, nil
}
