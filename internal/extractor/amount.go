// Package extractor implements the field extractors that read amount, date,
// merchant, bank and direction out of a notification. Every extractor is a
// pure function of the text and the pattern tables it is given.
package extractor

import (
	"github.com/shopspring/decimal"

	"fjacquet/sms-ledger/internal/currencyutils"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/parsererror"
)

// AmountResult is the outcome of ExtractAmount.
type AmountResult struct {
	Amount     decimal.NullDecimal
	Confidence float64
	// Pattern is the source of the rule that matched, empty on a miss.
	Pattern string
	// Misses lists matched substrings that failed to convert.
	Misses []error
}

// ExtractAmount returns the amount captured by the first rule whose match
// converts to a decimal. Nothing found yields an invalid Amount and 0.
func ExtractAmount(text string, rules []AmountRule) AmountResult {
	var res AmountResult
	for _, rule := range rules {
		m := rule.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := captured(m)
		amount, err := currencyutils.ParseAmount(raw)
		if err != nil {
			res.Misses = append(res.Misses, &parsererror.ParseError{
				Field:   string(models.FieldAmount),
				Pattern: rule.Pattern.String(),
				Value:   raw,
				Err:     err,
			})
			continue
		}
		res.Amount = decimal.NullDecimal{Decimal: amount, Valid: true}
		res.Confidence = rule.Confidence
		res.Pattern = rule.Pattern.String()
		return res
	}
	return res
}
