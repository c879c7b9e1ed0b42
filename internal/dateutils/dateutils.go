// Package dateutils provides the date parsing and normalization helpers used
// when ingesting statement rows from heterogeneous sources.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts encountered in exported bank statements.
const (
	LayoutISO      = "2006-01-02"
	LayoutEuropean = "02.01.2006"
	LayoutUS       = "01/02/2006"
	LayoutMonthKey = "2006-01"
)

// commonFormats is the ordered list of layouts tried when parsing dates.
var commonFormats = []string{
	LayoutISO,
	LayoutEuropean,
	LayoutUS,
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02 15:04:05",
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseDate attempts to parse a date string using the common layouts.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = CleanDateString(dateStr)
	for _, format := range commonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToISODate normalizes a date string from any supported layout to YYYY-MM-DD.
// The input is returned unchanged when it cannot be parsed.
func ToISODate(dateStr string) string {
	t, err := ParseDate(dateStr)
	if err != nil {
		return dateStr
	}
	return t.Format(LayoutISO)
}

// MonthKey derives the YYYY-MM breakdown key from an ISO date string. Dates
// that cannot be parsed yield an empty key.
func MonthKey(isoDate string) string {
	t, err := time.Parse(LayoutISO, isoDate)
	if err != nil {
		t, err = ParseDate(isoDate)
		if err != nil {
			return ""
		}
	}
	return t.Format(LayoutMonthKey)
}

// CleanDateString trims and collapses whitespace in a date string.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
