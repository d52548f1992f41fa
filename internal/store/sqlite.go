package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/parsererror"
)

// timestampLayout is fixed width so that stored timestamps sort as text.
const timestampLayout = "2006-01-02 15:04:05.000000000"

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db          *sql.DB
	logger      logging.Logger
	now         func() time.Time
	dedupWindow time.Duration
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithDedupWindow makes SaveMessage reject a message whose user, sender and
// text match a stored message received less than window apart from it. Zero
// disables the check.
func WithDedupWindow(window time.Duration) SQLiteOption {
	return func(s *SQLiteStore) { s.dedupWindow = window }
}

// WithSQLiteClock sets the clock used for creation timestamps.
func WithSQLiteClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) { s.now = now }
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// migrates it to the current schema.
func NewSQLiteStore(dbPath string, logger logging.Logger, opts ...SQLiteOption) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := RunMigrations(db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	logger.Debug("Opened SQLite store", logging.F(logging.FieldFile, dbPath))
	return s, nil
}

// RunInTx runs fn inside one database transaction and commits when fn
// returns nil.
func (s *SQLiteStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return parsererror.NewStorageError("begin", err)
	}
	if err := fn(&sqliteTx{tx: tx, store: s}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.WithError(rbErr).Warn("Rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return parsererror.NewStorageError("commit", err)
	}
	return nil
}

type sqliteTx struct {
	tx    *sql.Tx
	store *SQLiteStore
}

func (t *sqliteTx) SaveMessage(ctx context.Context, rec MessageRecord) (int64, error) {
	now := t.store.now().UTC()
	received := rec.ReceivedAt
	if received.IsZero() {
		received = now
	}
	received = received.UTC()

	if t.store.dedupWindow > 0 {
		var count int
		err := t.tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sms_messages
			 WHERE user_id = ? AND COALESCE(sender_number, '') = ? AND message_text = ?
			   AND received_at > ? AND received_at < ?`,
			rec.UserID, rec.SenderNumber, rec.Text,
			received.Add(-t.store.dedupWindow).Format(timestampLayout),
			received.Add(t.store.dedupWindow).Format(timestampLayout),
		).Scan(&count)
		if err != nil {
			return 0, parsererror.NewStorageError("save message", err)
		}
		if count > 0 {
			return 0, parsererror.NewStorageError("save message", parsererror.ErrDuplicateMessage)
		}
	}

	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO sms_messages
		 (user_id, message_text, sender_number, sender_name, received_at, is_bank_sms, bank_detected, processed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		rec.UserID, rec.Text, nullString(rec.SenderNumber), nullString(rec.SenderName),
		received.Format(timestampLayout), rec.IsBankMessage, nullString(string(rec.BankDetected)),
		now.Format(timestampLayout),
	)
	if err != nil {
		return 0, parsererror.NewStorageError("save message", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, parsererror.NewStorageError("save message", err)
	}
	return id, nil
}

func (t *sqliteTx) SaveTransaction(ctx context.Context, rec TransactionRecord) (int64, error) {
	created := t.store.now().UTC().Format(timestampLayout)
	date := rec.Date.Format(models.DateLayout)

	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO sms_transactions
		 (user_id, sms_id, amount, merchant, transaction_date, bank_name, confidence, transaction_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.MessageID, rec.Amount.String(), rec.Merchant, date, rec.BankName,
		rec.Confidence, string(rec.Direction), created,
	)
	if err != nil {
		return 0, parsererror.NewStorageError("save transaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, parsererror.NewStorageError("save transaction", err)
	}

	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, amount, date, merchant, category, source, sms_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.Amount.String(), date, rec.Merchant,
		models.CategoryUncategorized, models.SourceSMSParser, rec.MessageID, created,
	); err != nil {
		return 0, parsererror.NewStorageError("save ledger entry", err)
	}
	return id, nil
}

func (t *sqliteTx) MarkMessageProcessed(ctx context.Context, messageID int64) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE sms_messages SET processed = 1 WHERE id = ?`, messageID)
	if err != nil {
		return parsererror.NewStorageError("mark processed", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return parsererror.NewStorageError("mark processed", fmt.Errorf("message %d: %w", messageID, sql.ErrNoRows))
	}
	return nil
}

// GetUserTransactions implements Store.
func (s *SQLiteStore) GetUserTransactions(ctx context.Context, userID int64, limit int) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amount, date, merchant, category, source, sms_id, created_at
		 FROM transactions
		 WHERE user_id = ?
		 ORDER BY date DESC, created_at DESC, id DESC
		 LIMIT ?`,
		userID, sqlLimit(limit),
	)
	if err != nil {
		return nil, parsererror.NewStorageError("get transactions", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.LedgerEntry
	for rows.Next() {
		var (
			e             models.LedgerEntry
			amount        decimal.Decimal
			date, created string
			merchant      sql.NullString
			messageID     sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &amount, &date, &merchant, &e.Category, &e.Source, &messageID, &created); err != nil {
			return nil, parsererror.NewStorageError("get transactions", err)
		}
		e.Amount = amount
		e.Merchant = merchant.String
		if messageID.Valid {
			id := messageID.Int64
			e.MessageID = &id
		}
		if e.Date, err = time.Parse(models.DateLayout, date); err != nil {
			return nil, parsererror.NewStorageError("get transactions", err)
		}
		if e.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, parsererror.NewStorageError("get transactions", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, parsererror.NewStorageError("get transactions", err)
	}
	return out, nil
}

// GetMessageHistory implements Store.
func (s *SQLiteStore) GetMessageHistory(ctx context.Context, userID int64, limit int) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sm.id, sm.message_text, sm.sender_number, sm.bank_detected, sm.received_at, sm.processed,
		        st.amount, st.merchant, st.confidence
		 FROM sms_messages sm
		 LEFT JOIN sms_transactions st ON sm.id = st.sms_id
		 WHERE sm.user_id = ?
		 ORDER BY sm.received_at DESC, sm.id DESC
		 LIMIT ?`,
		userID, sqlLimit(limit),
	)
	if err != nil {
		return nil, parsererror.NewStorageError("get history", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.HistoryEntry
	for rows.Next() {
		var (
			e              models.HistoryEntry
			text, received string
			sender, bank   sql.NullString
			merchant       sql.NullString
			confidence     sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &text, &sender, &bank, &received, &e.Processed,
			&e.ParsedAmount, &merchant, &confidence); err != nil {
			return nil, parsererror.NewStorageError("get history", err)
		}
		e.MessagePreview = models.Preview(text)
		e.Sender = sender.String
		e.Bank = bank.String
		if merchant.Valid {
			m := merchant.String
			e.ParsedMerchant = &m
		}
		if confidence.Valid {
			c := confidence.Float64
			e.Confidence = &c
		}
		if e.ReceivedAt, err = parseTimestamp(received); err != nil {
			return nil, parsererror.NewStorageError("get history", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, parsererror.NewStorageError("get history", err)
	}
	return out, nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return parsererror.NewStorageError("ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func parseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(timestampLayout, s, time.UTC)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// sqlLimit maps "no limit" onto SQLite's -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

var _ Store = (*SQLiteStore)(nil)
