// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/propforma/propforma/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
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

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// MonthsBetween returns the number of whole months from start to end. The
// result is negative when end precedes start.
func MonthsBetween(layout, start, end string) (int, error) {
	startT, err := time.Parse(layout, start)
	if err != nil {
		return 0, err
	}
	endT, err := time.Parse(layout, end)
	if err != nil {
		return 0, err
	}
	return (endT.Year()-startT.Year())*constants.MonthsPerYear + int(endT.Month()) - int(startT.Month()), nil
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate string, secondDate string) (bool, error) {
	firstDateT, err := time.Parse(DateTimeLayout, firstDate)
	if err != nil {
		return false, err
	}
	secondDateT, err := time.Parse(DateTimeLayout, secondDate)
	if err != nil {
		return false, err
	}
	return firstDateT.Before(secondDateT), nil
}
