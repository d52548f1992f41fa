package extractor

import (
	"regexp"
	"time"

	"fjacquet/sms-ledger/internal/dateutils"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/parsererror"
)

// DateResult is the outcome of ExtractDate.
type DateResult struct {
	Date       time.Time
	Confidence float64
	Pattern    string
	Misses     []error
	Fallback   bool
}

// ExtractDate returns the first date a pattern captures that is also a valid
// calendar date. Without one the date falls back to today's date.
func ExtractDate(text string, patterns []*regexp.Regexp, today time.Time) DateResult {
	var res DateResult
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := captured(m)
		date, err := dateutils.ParseDayFirst(raw)
		if err != nil {
			res.Misses = append(res.Misses, &parsererror.ParseError{
				Field:   string(models.FieldDate),
				Pattern: re.String(),
				Value:   raw,
				Err:     err,
			})
			continue
		}
		res.Date = dateutils.DateOf(date)
		res.Confidence = DateMatchConfidence
		res.Pattern = re.String()
		return res
	}

	res.Date = dateutils.DateOf(today)
	res.Confidence = DateFallbackConfidence
	res.Fallback = true
	return res
}
