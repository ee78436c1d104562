package utils

import (
	"fmt"
	"time"
)

// DateLayout is the layout used for price history dates.
const DateLayout = "2006-01-02"

// LoadLocation resolves a zone name, falling back to UTC when the name is empty or unknown.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DateKey formats t as a calendar date in its own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a date produced by DateKey as midnight UTC.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// PrettyDate renders t as "02 Jan 2006 15:04".
func PrettyDate(t time.Time) string {
	return fmt.Sprintf("%02d %s %d %02d:%02d", t.Day(), monthNames[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}
