package extractor

import (
	"regexp"

	"fjacquet/sms-ledger/internal/models"
)

// Confidence levels reported by the extractors.
const (
	AmountSpecificConfidence   = 0.95
	AmountGenericConfidence    = 0.85
	DateMatchConfidence        = 0.9
	DateFallbackConfidence     = 0.3
	MerchantConfidence         = 0.8
	UnknownBankConfidence      = 0.7
	NoBankConfidence           = 0.5
	DirectionConfidence        = 0.9
	UnknownDirectionConfidence = 0.5
)

// AmountRule is one amount pattern and the confidence a match earns. The
// pattern's first capture group holds the number.
type AmountRule struct {
	Pattern    *regexp.Regexp
	Confidence float64
}

// BankRule attributes a message to Bank when any of Keywords (lower case)
// occurs in its text.
type BankRule struct {
	Bank       models.Bank
	Keywords   []string
	Confidence float64
}

// Tables holds the ordered pattern lists every extractor walks. Earlier
// entries win. Tables are read-only once built and may be shared freely.
type Tables struct {
	Amount              []AmountRule
	Date                []*regexp.Regexp
	Merchant            []*regexp.Regexp
	Banks               []BankRule
	TransactionKeywords []string
	DebitKeywords       []string
	CreditKeywords      []string
}

var (
	defaultAmountRules = []AmountRule{
		// Rs. 1,500.00 / INR 1,500.00 / ₹1,500.00
		{regexp.MustCompile(`(?i)(?:Rs\.?|INR|₹)\s*([\d,]+\.\d{2})\b`), AmountSpecificConfidence},
		// 1,500.00 INR
		{regexp.MustCompile(`(?i)([\d,]+\.\d{2})\s*(?:Rs|INR|₹)\b`), AmountSpecificConfidence},
		// debited ... 1,500.00
		{regexp.MustCompile(`(?i)(?:debited|paid|spent|credited)\D*?([\d,]+\.\d{2})\b`), AmountSpecificConfidence},
		// Amt: 4,500.00
		{regexp.MustCompile(`(?i)(?:Amount|Amt)[:\s]*([\d,]+\.\d{2})\b`), AmountSpecificConfidence},
		// Rs. 1,500
		{regexp.MustCompile(`(?i)(?:Rs\.?|INR|₹)\s*([\d,]+)\b`), AmountGenericConfidence},
		// 1,500 Rs
		{regexp.MustCompile(`(?i)([\d,]+)\s*(?:Rs|INR|₹)\b`), AmountGenericConfidence},
		// 1500 debited
		{regexp.MustCompile(`(?i)\b([\d,]+\.?\d*)\s+(?:debited|paid|spent|credited|rs|inr)\b`), AmountGenericConfidence},
		// bare grouped number followed by a currency word, a space or the end
		{regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})*\.?\d*)\b(?:\s*(?:rs|inr|₹)?\s|$)`), AmountGenericConfidence},
	}

	defaultDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)on\s+(\d{2}-\d{2}-\d{4})`),
		regexp.MustCompile(`(?i)on\s+(\d{1,2}/\d{1,2}/\d{4})`),
		regexp.MustCompile(`(?i)Date[:\s]*(\d{2}-\d{2}-\d{4})`),
		regexp.MustCompile(`(?i)(\d{2}-\d{2}-\d{4})`),
		regexp.MustCompile(`(?i)(\d{1,2}/\d{1,2}/\d{4})`),
		regexp.MustCompile(`(?i)(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4})`),
	}

	// Merchant patterns are case-sensitive: names are written in capitals.
	defaultMerchantPatterns = []*regexp.Regexp{
		regexp.MustCompile(`at\s+([A-Z][A-Z\s&]+?)(?:\s+on|\.|,|$)`),
		regexp.MustCompile(`to\s+([A-Z][A-Z\s&]+?)(?:\s+on|\.|,|$)`),
		regexp.MustCompile(`@\s+([A-Z][A-Z\s&]+?)(?:\s+on|\.|,|$)`),
		regexp.MustCompile(`(?:Info|Merchant)[:\s]*([^\n.,]+)`),
		regexp.MustCompile(`(?:via|through)\s+([A-Z][A-Z\s&]+)`),
		regexp.MustCompile(`[^\w]([A-Z]{2,}[A-Z\s&]+)(?:\s+(?:on|at|\.|,|$))`),
	}

	defaultTransactionKeywords = []string{"debited", "credited", "paid", "withdrawn", "transaction"}
	defaultDebitKeywords       = []string{"debited", "spent", "paid", "withdrawn", "purchase"}
	defaultCreditKeywords      = []string{"credited", "received", "deposited", "refund"}
)

// DefaultTables returns the built-in pattern lists. Banks is left empty: bank
// rules come from the template registry.
func DefaultTables() Tables {
	return Tables{
		Amount:              append([]AmountRule(nil), defaultAmountRules...),
		Date:                append([]*regexp.Regexp(nil), defaultDatePatterns...),
		Merchant:            append([]*regexp.Regexp(nil), defaultMerchantPatterns...),
		TransactionKeywords: append([]string(nil), defaultTransactionKeywords...),
		DebitKeywords:       append([]string(nil), defaultDebitKeywords...),
		CreditKeywords:      append([]string(nil), defaultCreditKeywords...),
	}
}

// captured returns the first capture group, or the whole match for patterns
// without one.
func captured(m []string) string {
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}
