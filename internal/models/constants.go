package models

// Bank identifies the institution a notification was attributed to. The zero
// value means no bank was detected.
type Bank string

const (
	BankHDFC    Bank = "HDFC"
	BankICICI   Bank = "ICICI"
	BankSBI     Bank = "SBI"
	BankAxis    Bank = "AXIS"
	BankUPI     Bank = "UPI"
	BankPaytm   Bank = "PAYTM"
	BankPhonePe Bank = "PHONEPE"
	BankUnknown Bank = "UNKNOWN_BANK"
	BankNone    Bank = ""
)

// KnownBanks lists every non-empty Bank value.
var KnownBanks = []Bank{
	BankHDFC, BankICICI, BankSBI, BankAxis, BankUPI, BankPaytm, BankPhonePe, BankUnknown,
}

// IsValid reports whether b is one of KnownBanks.
func (b Bank) IsValid() bool {
	for _, k := range KnownBanks {
		if b == k {
			return true
		}
	}
	return false
}

// Direction is the money flow of a transaction relative to the account holder.
type Direction string

const (
	DirectionDebit   Direction = "DEBIT"
	DirectionCredit  Direction = "CREDIT"
	DirectionUnknown Direction = "UNKNOWN"
)

// Field names an extracted attribute in the per-field confidence map.
type Field string

const (
	FieldAmount    Field = "amount"
	FieldDate      Field = "date"
	FieldMerchant  Field = "merchant"
	FieldBank      Field = "bank"
	FieldDirection Field = "transaction_type"
)

// Placeholders written to storage when an accepted extraction lacks a value.
const (
	UnknownMerchant = "Unknown Merchant"
	UnknownBank     = "Unknown Bank"
)

// Ledger defaults for rows produced from notifications.
const (
	CategoryUncategorized = "Uncategorized"
	SourceSMSParser       = "sms_parser"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"
