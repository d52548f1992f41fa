package extractor

import (
	"regexp"

	"fjacquet/sms-ledger/internal/textutils"
)

// MerchantResult is the outcome of ExtractMerchant.
type MerchantResult struct {
	Name       string
	Confidence float64
	Pattern    string
}

// ExtractMerchant returns the cleaned name captured by the first pattern that
// matches. The first match ends the search even when its capture cleans down
// to nothing; Name is then empty while Confidence stays MerchantConfidence.
func ExtractMerchant(text string, patterns []*regexp.Regexp) MerchantResult {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := textutils.CleanMerchantName(captured(m))
		return MerchantResult{Name: name, Confidence: MerchantConfidence, Pattern: re.String()}
	}
	return MerchantResult{}
}
