package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ExtractionResult is the structured reading of one message.
type ExtractionResult struct {
	Amount            decimal.NullDecimal
	Merchant          string
	TransactionDate   time.Time
	Bank              Bank
	Direction         Direction
	OverallConfidence float64
	FieldConfidences  map[Field]float64
	Success           bool

	// RawConfidence is OverallConfidence before rounding. Persistence gates
	// on it and stores it.
	RawConfidence float64
}

// HasMerchant reports whether a merchant name was extracted.
func (r ExtractionResult) HasMerchant() bool {
	return r.Merchant != ""
}

// HasBank reports whether any bank, including UNKNOWN_BANK, was detected.
func (r ExtractionResult) HasBank() bool {
	return r.Bank != BankNone
}

// ParseOutcome is what the ingest boundary hands back: the extraction plus the
// storage identifiers, which stay nil whenever nothing was persisted.
type ParseOutcome struct {
	ExtractionResult
	MessageID     *int64
	TransactionID *int64

	// StorageError is the persistence failure, if any. The extraction above
	// stays valid when it is set.
	StorageError error
}

type parsedData struct {
	Amount          decimal.NullDecimal `json:"amount"`
	Merchant        *string             `json:"merchant"`
	Date            string              `json:"date"`
	Bank            *Bank               `json:"bank"`
	TransactionType Direction           `json:"transaction_type"`
}

type outcomeJSON struct {
	Success          bool              `json:"success"`
	MessageID        *int64            `json:"sms_id"`
	TransactionID    *int64            `json:"transaction_id"`
	ParsedData       parsedData        `json:"parsed_data"`
	Confidence       float64           `json:"confidence"`
	FieldConfidences map[Field]float64 `json:"field_confidences"`
}

// MarshalJSON renders the outcome in the response shape clients of the parse
// endpoint consume.
func (o ParseOutcome) MarshalJSON() ([]byte, error) {
	data := parsedData{
		Amount:          o.Amount,
		TransactionType: o.Direction,
	}
	if o.HasMerchant() {
		m := o.Merchant
		data.Merchant = &m
	}
	if o.HasBank() {
		b := o.Bank
		data.Bank = &b
	}
	if !o.TransactionDate.IsZero() {
		data.Date = o.TransactionDate.Format(DateLayout)
	}
	return json.Marshal(outcomeJSON{
		Success:          o.Success,
		MessageID:        o.MessageID,
		TransactionID:    o.TransactionID,
		ParsedData:       data,
		Confidence:       o.OverallConfidence,
		FieldConfidences: o.FieldConfidences,
	})
}
