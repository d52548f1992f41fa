// Package export writes ledger and message history rows as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"fjacquet/sms-ledger/internal/dateutils"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// LedgerRow is the CSV layout of a ledger entry.
type LedgerRow struct {
	ID        int64  `csv:"ID"`
	Date      string `csv:"Date"`
	Amount    string `csv:"Amount"`
	Merchant  string `csv:"Merchant"`
	Category  string `csv:"Category"`
	Source    string `csv:"Source"`
	MessageID string `csv:"SMSID"`
	CreatedAt string `csv:"CreatedAt"`
}

// HistoryRow is the CSV layout of a message history entry.
type HistoryRow struct {
	ID             int64  `csv:"ID"`
	ReceivedAt     string `csv:"ReceivedAt"`
	Sender         string `csv:"Sender"`
	Bank           string `csv:"Bank"`
	Processed      bool   `csv:"Processed"`
	ParsedAmount   string `csv:"ParsedAmount"`
	ParsedMerchant string `csv:"ParsedMerchant"`
	Confidence     string `csv:"Confidence"`
	MessagePreview string `csv:"MessagePreview"`
}

// Exporter writes CSV with a configurable delimiter.
type Exporter struct {
	delimiter rune
	logger    logging.Logger
}

// NewExporter returns an Exporter. A zero delimiter means comma.
func NewExporter(delimiter rune, logger logging.Logger) *Exporter {
	if delimiter == 0 {
		delimiter = ','
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Exporter{
		delimiter: delimiter,
		logger:    logger.WithField(logging.FieldComponent, "export"),
	}
}

// LedgerRows converts entries to their CSV layout. Amounts keep two decimals.
func LedgerRows(entries []models.LedgerEntry) []LedgerRow {
	rows := make([]LedgerRow, 0, len(entries))
	for _, e := range entries {
		row := LedgerRow{
			ID:        e.ID,
			Date:      dateutils.ToISODate(e.Date),
			Amount:    e.Amount.StringFixed(2),
			Merchant:  e.Merchant,
			Category:  e.Category,
			Source:    e.Source,
			CreatedAt: formatTimestamp(e.CreatedAt),
		}
		if e.MessageID != nil {
			row.MessageID = strconv.FormatInt(*e.MessageID, 10)
		}
		rows = append(rows, row)
	}
	return rows
}

// HistoryRows converts history entries to their CSV layout. Fields of messages
// without a transaction are left empty.
func HistoryRows(entries []models.HistoryEntry) []HistoryRow {
	rows := make([]HistoryRow, 0, len(entries))
	for _, e := range entries {
		row := HistoryRow{
			ID:             e.ID,
			ReceivedAt:     formatTimestamp(e.ReceivedAt),
			Sender:         e.Sender,
			Bank:           e.Bank,
			Processed:      e.Processed,
			MessagePreview: e.MessagePreview,
		}
		if e.ParsedAmount.Valid {
			row.ParsedAmount = e.ParsedAmount.Decimal.StringFixed(2)
		}
		if e.ParsedMerchant != nil {
			row.ParsedMerchant = *e.ParsedMerchant
		}
		if e.Confidence != nil {
			row.Confidence = strconv.FormatFloat(*e.Confidence, 'f', 3, 64)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteLedgerCSV writes entries to w.
func (e *Exporter) WriteLedgerCSV(w io.Writer, entries []models.LedgerEntry) error {
	return e.write(w, LedgerRows(entries), len(entries))
}

// WriteHistoryCSV writes history entries to w.
func (e *Exporter) WriteHistoryCSV(w io.Writer, entries []models.HistoryEntry) error {
	return e.write(w, HistoryRows(entries), len(entries))
}

// WriteLedgerFile writes entries to path, creating parent directories.
func (e *Exporter) WriteLedgerFile(path string, entries []models.LedgerEntry) error {
	return e.writeFile(path, func(w io.Writer) error { return e.WriteLedgerCSV(w, entries) })
}

// WriteHistoryFile writes history entries to path, creating parent directories.
func (e *Exporter) WriteHistoryFile(path string, entries []models.HistoryEntry) error {
	return e.writeFile(path, func(w io.Writer) error { return e.WriteHistoryCSV(w, entries) })
}

func (e *Exporter) write(w io.Writer, rows interface{}, count int) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = e.delimiter

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		e.logger.WithError(err).Error("Failed to marshal rows to CSV")
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	e.logger.Debug("Wrote CSV rows", logging.F(logging.FieldCount, count))
	return nil
}

func (e *Exporter) writeFile(path string, writeFn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := writeFn(file); err != nil {
		return err
	}
	e.logger.Info("Exported CSV file", logging.F(logging.FieldFile, path))
	return nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}
