package extractor_test

import (
	"testing"

	"fjacquet/sms-ledger/internal/extractor"

	"github.com/stretchr/testify/assert"
)

func TestExtractMerchant(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"at", "HDFC Bank: Rs. 1,500.00 debited from A/c XX1234 on 15-12-2023 at AMAZON INDIA.", "Amazon India"},
		{"to", "UPI: Rs. 500.00 paid to KIRANA STORE on 15-12-2023.", "Kirana Store"},
		{"at sign", "Spent Rs 300 @ STARBUCKS on 01-01-2024", "Starbucks"},
		{"info label", "Info: Swiggy Order. Rs 320 debited", "Swiggy Order"},
		{"via", "Paid via PAYTM WALLET", "Paytm Wallet"},
		{"capitalised run", "Txn of Rs 200 for BIGBASKET on 02-02-2024", "Bigbasket"},
		{"single suffix stripped", "Rs 99.00 paid at FLIPKART INTERNET PVT LTD on 01-01-2024", "Flipkart Internet Pvt"},
		{"whitespace collapsed", "debited at BIG   BAZAAR, thanks", "Big Bazaar"},
	}

	patterns := extractor.DefaultTables().Merchant
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extractor.ExtractMerchant(tt.text, patterns)
			assert.Equal(t, tt.expected, res.Name)
			assert.Equal(t, 0.8, res.Confidence)
		})
	}
}

func TestExtractMerchantNoMatch(t *testing.T) {
	res := extractor.ExtractMerchant("your a/c balance is low", extractor.DefaultTables().Merchant)
	assert.Empty(t, res.Name)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Empty(t, res.Pattern)
}

func TestExtractMerchantEmptyCaptureEndsSearch(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"blank label", "Merchant: , ref"},
		{"blank label before via", "Merchant: , via PAYTM WALLET"},
	}

	patterns := extractor.DefaultTables().Merchant
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extractor.ExtractMerchant(tt.text, patterns)
			assert.Empty(t, res.Name)
			assert.Equal(t, 0.8, res.Confidence)
			assert.Contains(t, res.Pattern, "Merchant")
		})
	}
}
