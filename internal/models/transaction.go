package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoredTransaction is the record derived from an accepted extraction. It is
// written once and never updated.
type StoredTransaction struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	MessageID  int64           `json:"sms_id"`
	Amount     decimal.Decimal `json:"amount"`
	Merchant   string          `json:"merchant"`
	Date       time.Time       `json:"transaction_date"`
	BankName   string          `json:"bank_name"`
	Confidence float64         `json:"confidence"`
	CreatedAt  time.Time       `json:"created_at"`
}

// LedgerEntry is a row of the general transaction ledger.
type LedgerEntry struct {
	ID        int64           `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Merchant  string          `json:"merchant"`
	Category  string          `json:"category"`
	Source    string          `json:"source"`
	MessageID *int64          `json:"sms_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// HistoryEntry pairs a stored message with its transaction fields, which are
// nil when the message produced no transaction.
type HistoryEntry struct {
	ID             int64               `json:"id"`
	MessagePreview string              `json:"message_preview"`
	Sender         string              `json:"sender"`
	Bank           string              `json:"bank"`
	ReceivedAt     time.Time           `json:"received_at"`
	Processed      bool                `json:"processed"`
	ParsedAmount   decimal.NullDecimal `json:"parsed_amount"`
	ParsedMerchant *string             `json:"parsed_merchant"`
	Confidence     *float64            `json:"confidence"`
}

// PreviewLength is the number of characters of message text kept in history
// previews before the ellipsis.
const PreviewLength = 80

// Preview shortens text to PreviewLength runes followed by "..." when longer.
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= PreviewLength {
		return text
	}
	return string(r[:PreviewLength]) + "..."
}
