package extractor

import (
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/textutils"
)

// BankResult is the outcome of DetectBank.
type BankResult struct {
	Bank       models.Bank
	Confidence float64
	Keyword    string
}

// DetectBank walks rules in order and returns the first bank whose keyword
// occurs in text. Failing that, a transaction keyword yields UNKNOWN_BANK and
// anything else no bank at all.
//
// sender is accepted for callers that have it but does not influence the
// result.
func DetectBank(text, sender string, rules []BankRule, transactionKeywords []string) BankResult {
	for _, rule := range rules {
		if k, ok := textutils.FirstKeyword(text, rule.Keywords); ok {
			return BankResult{Bank: rule.Bank, Confidence: rule.Confidence, Keyword: k}
		}
	}
	if k, ok := textutils.FirstKeyword(text, transactionKeywords); ok {
		return BankResult{Bank: models.BankUnknown, Confidence: UnknownBankConfidence, Keyword: k}
	}
	return BankResult{Bank: models.BankNone, Confidence: NoBankConfidence}
}
