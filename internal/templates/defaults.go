package templates

import "fjacquet/sms-ledger/internal/models"

// Defaults returns the built-in templates in detection priority order. They
// carry no patterns, so extraction runs on the built-in tables alone; per-bank
// overrides come from a templates file.
func Defaults() []Template {
	return []Template{
		{Bank: models.BankHDFC, Keywords: []string{"hdfc"}, Confidence: 0.95, Active: true},
		{Bank: models.BankICICI, Keywords: []string{"icici"}, Confidence: 0.93, Active: true},
		{Bank: models.BankSBI, Keywords: []string{"sbi", "state bank"}, Confidence: 0.92, Active: true},
		{Bank: models.BankAxis, Keywords: []string{"axis"}, Confidence: 0.91, Active: true},
		{Bank: models.BankUPI, Keywords: []string{"upi"}, Confidence: 0.90, Active: true},
		{Bank: models.BankPaytm, Keywords: []string{"paytm"}, Confidence: 0.89, Active: true},
		{Bank: models.BankPhonePe, Keywords: []string{"phonepe"}, Confidence: 0.89, Active: true},
	}
}
