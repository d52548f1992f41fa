// Package smsparser runs the field extractors over a notification and merges
// their confidences into one ExtractionResult.
package smsparser

import (
	"math"
	"time"

	"fjacquet/sms-ledger/internal/extractor"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/templates"
)

// noFieldFactor scales bank and direction confidence when neither amount,
// date nor merchant produced anything.
const noFieldFactor = 0.5

// Parser extracts structured transactions from notification text. It holds
// no mutable state and is safe for concurrent use.
type Parser struct {
	registry  *templates.Registry
	bankRules []extractor.BankRule
	base      extractor.Tables
	now       func() time.Time
	logger    logging.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the source of "today" used when a message carries no date.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithTables replaces the built-in pattern tables.
func WithTables(tables extractor.Tables) Option {
	return func(p *Parser) {
		p.base = tables
	}
}

// New creates a Parser using registry for bank detection and bank-specific
// patterns.
func New(registry *templates.Registry, logger logging.Logger, opts ...Option) *Parser {
	if registry == nil {
		registry = templates.Default()
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	p := &Parser{
		registry:  registry,
		bankRules: registry.BankRules(),
		base:      extractor.DefaultTables(),
		now:       time.Now,
		logger:    logger.WithField(logging.FieldComponent, "smsparser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts every field from text. sender is passed to bank detection,
// which currently ignores it. The bank is detected first so that its template
// patterns can be tried ahead of the built-in tables.
func (p *Parser) Parse(text, sender string) models.ExtractionResult {
	bank := extractor.DetectBank(text, sender, p.bankRules, p.base.TransactionKeywords)
	tables := p.registry.TablesFor(bank.Bank, p.base)

	direction := extractor.ExtractDirection(text, tables.DebitKeywords, tables.CreditKeywords)
	amount := extractor.ExtractAmount(text, tables.Amount)
	date := extractor.ExtractDate(text, tables.Date, p.now())
	merchant := extractor.ExtractMerchant(text, tables.Merchant)

	overall := MergeConfidence(amount.Confidence, date.Confidence, merchant.Confidence,
		bank.Confidence, direction.Confidence)

	result := models.ExtractionResult{
		Amount:            amount.Amount,
		Merchant:          merchant.Name,
		TransactionDate:   date.Date,
		Bank:              bank.Bank,
		Direction:         direction.Direction,
		OverallConfidence: Round(overall),
		RawConfidence:     overall,
		FieldConfidences: map[models.Field]float64{
			models.FieldAmount:    Round(amount.Confidence),
			models.FieldDate:      Round(date.Confidence),
			models.FieldMerchant:  Round(merchant.Confidence),
			models.FieldBank:      Round(bank.Confidence),
			models.FieldDirection: Round(direction.Confidence),
		},
		Success: amount.Amount.Valid,
	}

	for _, miss := range append(amount.Misses, date.Misses...) {
		p.logger.WithError(miss).Debug("Discarded pattern match")
	}
	p.logger.Debug("Parsed message",
		logging.F(logging.FieldBank, string(result.Bank)),
		logging.F(logging.FieldDirection, string(result.Direction)),
		logging.F(logging.FieldAmount, result.Amount.Decimal.String()),
		logging.F(logging.FieldMerchant, result.Merchant),
		logging.F(logging.FieldPattern, amount.Pattern),
		logging.F("date_fallback", date.Fallback),
		logging.F(logging.FieldConfidence, result.OverallConfidence))

	return result
}

// MergeConfidence combines the per-field confidences. The mean of the
// non-zero amount, date and merchant confidences is scaled by the bank and
// direction confidences; with no such field the product of bank and direction
// is halved.
func MergeConfidence(amount, date, merchant, bank, direction float64) float64 {
	var sum float64
	n := 0
	for _, c := range []float64{amount, date, merchant} {
		if c > 0 {
			sum += c
			n++
		}
	}
	if n == 0 {
		return bank * direction * noFieldFactor
	}
	return sum / float64(n) * bank * direction
}

// Round rounds a confidence to three decimals for reporting.
func Round(c float64) float64 {
	return math.Round(c*1000) / 1000
}
