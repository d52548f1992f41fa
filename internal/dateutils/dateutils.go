// Package dateutils provides day-first date parsing for notification text.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts used when parsing and rendering dates.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutNumeric   = "2-1-2006"
	DateLayoutMonthDay  = "1-2-2006"
	DateLayoutWithMonth = "2 Jan 2006"
)

var spaceRun = regexp.MustCompile(`\s+`)

// ParseDayFirst parses dates such as "15-12-2023", "5/1/2023", "15 Dec 2023" or
// "15 September 2023". Numeric dates are read day first; only when that yields
// no valid date is the month-first reading tried ("12/15/2023"). Month names
// are matched on their first three letters. Calendar-invalid dates return an
// error.
func ParseDayFirst(dateStr string) (time.Time, error) {
	clean := CleanDateString(dateStr)
	if clean == "" {
		return time.Time{}, fmt.Errorf("unable to parse date: empty string")
	}

	if strings.ContainsAny(strings.ToLower(clean), "abcdefghijklmnopqrstuvwxyz") {
		parts := strings.Split(clean, " ")
		if len(parts) != 3 || len(parts[1]) < 3 {
			return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
		}
		month := strings.ToUpper(parts[1][:1]) + strings.ToLower(parts[1][1:3])
		t, err := time.Parse(DateLayoutWithMonth, parts[0]+" "+month+" "+parts[2])
		if err != nil {
			return time.Time{}, fmt.Errorf("unable to parse date %s: %w", dateStr, err)
		}
		return t, nil
	}

	numeric := strings.ReplaceAll(clean, "/", "-")
	t, err := time.Parse(DateLayoutNumeric, numeric)
	if err == nil {
		return t, nil
	}
	if swapped, swapErr := time.Parse(DateLayoutMonthDay, numeric); swapErr == nil {
		return swapped, nil
	}
	return time.Time{}, fmt.Errorf("unable to parse date %s: %w", dateStr, err)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// DateOf returns midnight UTC of the calendar date t falls on in its own
// location, so dates compare equal regardless of the clock's zone.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CleanDateString trims the string and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	return spaceRun.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
