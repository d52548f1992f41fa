// Package store persists notifications, the transactions extracted from them
// and the ledger rows derived from those transactions.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/parsererror"
)

// MessageRecord is a received notification as written to storage.
type MessageRecord struct {
	UserID        int64
	Text          string
	SenderNumber  string
	SenderName    string
	IsBankMessage bool
	BankDetected  models.Bank
	// ReceivedAt defaults to the store's clock when zero.
	ReceivedAt time.Time
}

// TransactionRecord is an accepted extraction as written to storage.
type TransactionRecord struct {
	UserID     int64
	MessageID  int64
	Amount     decimal.Decimal
	Merchant   string
	Date       time.Time
	BankName   string
	Direction  models.Direction
	Confidence float64
}

// Tx is the unit of work handed to Store.RunInTx. Its writes become visible
// together when the callback returns nil and are discarded otherwise.
type Tx interface {
	// SaveMessage stores a message and returns its identifier.
	SaveMessage(ctx context.Context, rec MessageRecord) (int64, error)
	// SaveTransaction stores the transaction and its ledger row and returns
	// the transaction identifier.
	SaveTransaction(ctx context.Context, rec TransactionRecord) (int64, error)
	// MarkMessageProcessed flags a message as having produced a transaction.
	MarkMessageProcessed(ctx context.Context, messageID int64) error
}

// Store is the storage collaborator used by the ingest service and the read
// APIs. Implementations are safe for concurrent use.
type Store interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error

	// GetUserTransactions returns ledger rows, newest date first and then
	// newest creation first. A limit <= 0 returns every row.
	GetUserTransactions(ctx context.Context, userID int64, limit int) ([]models.LedgerEntry, error)

	// GetMessageHistory returns messages, newest first, each with the fields
	// of the transaction it produced when there is one. A limit <= 0
	// returns every row.
	GetMessageHistory(ctx context.Context, userID int64, limit int) ([]models.HistoryEntry, error)

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Default page sizes of the read operations.
const (
	DefaultTransactionsLimit = 100
	DefaultHistoryLimit      = 50
)

// Driver names accepted by the storage.driver setting.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// IsDuplicate reports whether err is a message rejected by the dedup window.
func IsDuplicate(err error) bool {
	return errors.Is(err, parsererror.ErrDuplicateMessage)
}
