package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

func ledgerEntries() []models.LedgerEntry {
	smsID := int64(12)
	return []models.LedgerEntry{
		{
			ID:        3,
			Amount:    decimal.RequireFromString("1500"),
			Date:      time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC),
			Merchant:  "Amazon India",
			Category:  models.CategoryUncategorized,
			Source:    models.SourceSMSParser,
			MessageID: &smsID,
			CreatedAt: time.Date(2023, 12, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:        2,
			Amount:    decimal.RequireFromString("99.5"),
			Date:      time.Date(2023, 12, 14, 0, 0, 0, 0, time.UTC),
			Merchant:  "Shop, Ltd",
			Category:  "Shopping",
			Source:    "receipt_ocr",
			CreatedAt: time.Date(2023, 12, 14, 18, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteLedgerCSV(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewExporter(',', logging.NewMockLogger())

	require.NoError(t, exporter.WriteLedgerCSV(&buf, ledgerEntries()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Date,Amount,Merchant,Category,Source,SMSID,CreatedAt", lines[0])
	assert.Equal(t, "3,2023-12-15,1500.00,Amazon India,Uncategorized,sms_parser,12,2023-12-15 09:30:00", lines[1])
	assert.Equal(t, `2,2023-12-14,99.50,"Shop, Ltd",Shopping,receipt_ocr,,2023-12-14 18:00:00`, lines[2])

	var rows []LedgerRow
	require.NoError(t, gocsv.UnmarshalString(buf.String(), &rows))
	assert.Equal(t, LedgerRows(ledgerEntries()), rows)
}

func TestWriteLedgerCSV_Delimiter(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewExporter(';', logging.NewMockLogger())

	require.NoError(t, exporter.WriteLedgerCSV(&buf, ledgerEntries()[:1]))
	assert.True(t, strings.HasPrefix(buf.String(), "ID;Date;Amount;"))
}

func TestWriteHistoryCSV(t *testing.T) {
	merchant := "Swiggy"
	confidence := 0.7551
	entries := []models.HistoryEntry{
		{
			ID:             5,
			MessagePreview: "ICICI Bank: Rs. 2,750.00 spent",
			Sender:         "ICICIB",
			Bank:           "ICICI",
			ReceivedAt:     time.Date(2023, 12, 15, 10, 0, 0, 0, time.UTC),
			Processed:      true,
			ParsedAmount:   decimal.NewNullDecimal(decimal.RequireFromString("2750")),
			ParsedMerchant: &merchant,
			Confidence:     &confidence,
		},
		{
			ID:             4,
			MessagePreview: "Your OTP is 1234",
			Sender:         "VM-OTP",
			ReceivedAt:     time.Date(2023, 12, 15, 9, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	exporter := NewExporter(0, logging.NewMockLogger())
	require.NoError(t, exporter.WriteHistoryCSV(&buf, entries))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,ReceivedAt,Sender,Bank,Processed,ParsedAmount,ParsedMerchant,Confidence,MessagePreview", lines[0])
	assert.Equal(t, `5,2023-12-15 10:00:00,ICICIB,ICICI,true,2750.00,Swiggy,0.755,"ICICI Bank: Rs. 2,750.00 spent"`, lines[1])
	assert.Equal(t, "4,2023-12-15 09:00:00,VM-OTP,,false,,,,Your OTP is 1234", lines[2])
}

func TestWriteLedgerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.csv")
	logger := logging.NewMockLogger()
	exporter := NewExporter(',', logger)

	require.NoError(t, exporter.WriteLedgerFile(path, ledgerEntries()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Amazon India")
	assert.True(t, logger.HasEntry("INFO", "Exported CSV file"))
}

func TestWriteHistoryFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	exporter := NewExporter(',', logging.NewMockLogger())

	require.NoError(t, exporter.WriteHistoryFile(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID,ReceivedAt,Sender,Bank,Processed,ParsedAmount,ParsedMerchant,Confidence,MessagePreview\n", string(data))
}
