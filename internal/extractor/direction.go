package extractor

import (
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/textutils"
)

// DirectionResult is the outcome of ExtractDirection.
type DirectionResult struct {
	Direction  models.Direction
	Confidence float64
	Keyword    string
}

// ExtractDirection classifies the money flow. Debit keywords are checked
// before credit keywords.
func ExtractDirection(text string, debitKeywords, creditKeywords []string) DirectionResult {
	if k, ok := textutils.FirstKeyword(text, debitKeywords); ok {
		return DirectionResult{Direction: models.DirectionDebit, Confidence: DirectionConfidence, Keyword: k}
	}
	if k, ok := textutils.FirstKeyword(text, creditKeywords); ok {
		return DirectionResult{Direction: models.DirectionCredit, Confidence: DirectionConfidence, Keyword: k}
	}
	return DirectionResult{Direction: models.DirectionUnknown, Confidence: UnknownDirectionConfidence}
}
