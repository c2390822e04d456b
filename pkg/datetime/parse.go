// Package datetime provides date helpers for cohort histories.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/vehicle-afford/pkg/constants"
)

const (
	// DateLayout is the format used for observation dates in input and output.
	DateLayout = constants.DateLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate accepts either a bare date or an RFC3339 timestamp.
func ParseDate(date string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, date); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q: %w", date, err)
	}
	return t, nil
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// OffsetYears moves date by whole 365-day years; negative values move backwards.
func OffsetYears(date time.Time, years int) time.Time {
	return date.AddDate(0, 0, years*constants.DaysPerYear)
}

// Truncate drops the time of day, keeping the date in UTC.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// OnOrAfter returns true if first is the same day as, or later than, second.
func OnOrAfter(first, second time.Time) bool {
	return !Truncate(first).Before(Truncate(second))
}
