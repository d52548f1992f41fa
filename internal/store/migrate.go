package store

import (
	"database/sql"
	"fmt"

	"fjacquet/sms-ledger/internal/logging"
)

// schemaVersion is the version RunMigrations brings a database to.
const schemaVersion = 2

type migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations are applied in order, each exactly once, tracked in the
// schema_version table.
var migrations = []migration{
	{
		Version:     1,
		Description: "base schema: sms_messages, sms_transactions, transactions",
		SQL: `
		CREATE TABLE IF NOT EXISTS sms_messages (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id        INTEGER NOT NULL DEFAULT 1,
			message_text   TEXT NOT NULL,
			sender_number  TEXT,
			sender_name    TEXT,
			received_at    TEXT NOT NULL,
			is_bank_sms    INTEGER NOT NULL DEFAULT 0,
			bank_detected  TEXT,
			processed      INTEGER NOT NULL DEFAULT 0,
			created_at     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sms_messages_user ON sms_messages(user_id, received_at);

		CREATE TABLE IF NOT EXISTS sms_transactions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id          INTEGER NOT NULL DEFAULT 1,
			sms_id           INTEGER NOT NULL REFERENCES sms_messages(id),
			amount           TEXT NOT NULL,
			merchant         TEXT,
			transaction_date TEXT NOT NULL,
			bank_name        TEXT,
			confidence       REAL NOT NULL DEFAULT 0,
			created_at       TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sms_transactions_sms ON sms_transactions(sms_id);

		CREATE TABLE IF NOT EXISTS transactions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL DEFAULT 1,
			amount      TEXT NOT NULL,
			date        TEXT NOT NULL,
			merchant    TEXT,
			category    TEXT NOT NULL DEFAULT 'Uncategorized',
			source      TEXT NOT NULL DEFAULT 'sms_parser',
			sms_id      INTEGER,
			created_at  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, date, created_at);
		`,
	},
	{
		Version:     2,
		Description: "v2: transaction direction, duplicate lookup index",
		SQL: `
		ALTER TABLE sms_transactions ADD COLUMN transaction_type TEXT NOT NULL DEFAULT 'UNKNOWN';
		CREATE INDEX IF NOT EXISTS idx_sms_messages_dedup ON sms_messages(user_id, sender_number, message_text);
		`,
	},
}

// RunMigrations applies every pending migration, each in its own
// transaction.
func RunMigrations(db *sql.DB, logger logging.Logger) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version     INTEGER PRIMARY KEY,
			description TEXT,
			applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		logger.Info("Applying migration",
			logging.F("version", m.Version),
			logging.F("description", m.Description))

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration v%d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.Version, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_version (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.Version, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration, 0 for a fresh
// database.
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return version, nil
}
