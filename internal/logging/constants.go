package logging

// Field names shared by every component so log output can be filtered
// consistently.
const (
	FieldRequestID     = "request_id"
	FieldUserID        = "user_id"
	FieldMessageID     = "message_id"
	FieldTransactionID = "transaction_id"
	FieldSender        = "sender"
	FieldBank          = "bank"
	FieldDirection     = "direction"
	FieldAmount        = "amount"
	FieldMerchant      = "merchant"
	FieldConfidence    = "confidence"
	FieldPattern       = "pattern"
	FieldOperation     = "operation"
	FieldComponent     = "component"
	FieldError         = "error"
	FieldCount         = "count"
	FieldFile          = "file_path"
	FieldDuration      = "duration_ms"
)
