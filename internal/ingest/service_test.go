package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/parsererror"
	"fjacquet/sms-ledger/internal/smsparser"
	"fjacquet/sms-ledger/internal/store"
	"fjacquet/sms-ledger/internal/templates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hdfcMessage = "HDFC Bank: Rs. 1,500.00 debited from A/c XX1234 on 15-12-2023 at AMAZON INDIA."
	lowMessage  = "Rs 50"
	noAmount    = "Hello, your appointment is confirmed"
)

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

// spyStore records the transactions written through it.
type spyStore struct {
	*store.MemoryStore
	saved []store.TransactionRecord
}

func (s *spyStore) RunInTx(ctx context.Context, fn func(store.Tx) error) error {
	return s.MemoryStore.RunInTx(ctx, func(tx store.Tx) error {
		return fn(&spyTx{Tx: tx, spy: s})
	})
}

type spyTx struct {
	store.Tx
	spy *spyStore
}

func (t *spyTx) SaveTransaction(ctx context.Context, rec store.TransactionRecord) (int64, error) {
	t.spy.saved = append(t.spy.saved, rec)
	return t.Tx.SaveTransaction(ctx, rec)
}

func newTestService(t *testing.T, opts ...Option) (*Service, *spyStore, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	clock := func() time.Time { return fixedNow }
	parser := smsparser.New(templates.Default(), logger, smsparser.WithClock(clock))
	st := &spyStore{MemoryStore: store.NewMemoryStore()}
	opts = append([]Option{WithClock(clock), WithRequestIDs(func() string { return "req-1" })}, opts...)
	return NewService(parser, st, logger, opts...), st, logger
}

func TestParseMessageRecordsConfidentTransaction(t *testing.T) {
	svc, st, logger := newTestService(t)

	out := svc.ParseMessage(context.Background(), 1, hdfcMessage, "VM-HDFCBK", "HDFC Bank")

	require.True(t, out.Success)
	require.NotNil(t, out.MessageID)
	require.NotNil(t, out.TransactionID)
	assert.NoError(t, out.StorageError)
	assert.True(t, st.IsProcessed(*out.MessageID))

	msgs, txns, ledger := st.Counts()
	assert.Equal(t, 1, msgs)
	assert.Equal(t, 1, txns)
	assert.Equal(t, 1, ledger)

	require.Len(t, st.saved, 1)
	rec := st.saved[0]
	assert.Equal(t, "Amazon India", rec.Merchant)
	assert.Equal(t, "HDFC", rec.BankName)
	assert.Equal(t, models.DirectionDebit, rec.Direction)
	assert.Equal(t, *out.MessageID, rec.MessageID)
	assert.InDelta(t, 0.755, rec.Confidence, 0.001)
	assert.True(t, time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC).Equal(rec.Date))

	history, err := st.GetMessageHistory(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, fixedNow.Equal(history[0].ReceivedAt))
	assert.Equal(t, "HDFC", history[0].Bank)

	assert.True(t, logger.HasEntry("INFO", "Transaction recorded"))
	for _, e := range logger.EntriesByLevel("INFO") {
		assert.Contains(t, e.Fields, logging.F(logging.FieldRequestID, "req-1"))
	}
}

func TestParseMessageBelowThresholdStoresOnlyMessage(t *testing.T) {
	svc, st, logger := newTestService(t)

	out := svc.ParseMessage(context.Background(), 1, lowMessage, "", "")

	require.True(t, out.Success)
	assert.LessOrEqual(t, out.OverallConfidence, 0.5)
	require.NotNil(t, out.MessageID)
	assert.Nil(t, out.TransactionID)
	assert.Zero(t, st.SaveTransactionCalls)
	assert.False(t, st.IsProcessed(*out.MessageID))
	assert.True(t, logger.HasEntry("INFO", "Message stored below confidence threshold"))
}

func TestParseMessageWithoutAmountTouchesNoStorage(t *testing.T) {
	svc, st, _ := newTestService(t)

	out := svc.ParseMessage(context.Background(), 1, noAmount, "", "")

	assert.False(t, out.Success)
	assert.Nil(t, out.MessageID)
	assert.Nil(t, out.TransactionID)
	assert.Zero(t, st.TxCalls)
	assert.Zero(t, st.SaveMessageCalls)
}

func TestParseMessageConfigurableThreshold(t *testing.T) {
	svc, st, _ := newTestService(t, WithThreshold(0.8))

	out := svc.ParseMessage(context.Background(), 1, hdfcMessage, "", "")

	assert.NotNil(t, out.MessageID)
	assert.Nil(t, out.TransactionID)
	assert.Zero(t, st.SaveTransactionCalls)
}

func TestParseMessagePlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		merchant string
		bank     string
	}{
		{"no merchant", "Rs 500.00 debited from your account on 01-01-2024", models.UnknownMerchant, "UNKNOWN_BANK"},
		{"no bank", "INR 900.00 on 02-02-2024", models.UnknownMerchant, models.UnknownBank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, _ := newTestService(t, WithThreshold(0.1))
			out := svc.ParseMessage(context.Background(), 1, tt.text, "", "")
			require.NotNil(t, out.TransactionID)
			require.Len(t, st.saved, 1)
			assert.Equal(t, tt.merchant, st.saved[0].Merchant)
			assert.Equal(t, tt.bank, st.saved[0].BankName)
		})
	}
}

func TestParseMessageStorageFailures(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*store.MemoryStore)
		operation string
	}{
		{"save message", func(m *store.MemoryStore) { m.SaveMessageError = errors.New("db down") }, "save message"},
		{"save transaction", func(m *store.MemoryStore) { m.SaveTransactionError = errors.New("db down") }, "save transaction"},
		{"mark processed", func(m *store.MemoryStore) { m.MarkProcessedError = errors.New("db down") }, "mark processed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, logger := newTestService(t)
			tt.configure(st.MemoryStore)

			out := svc.ParseMessage(context.Background(), 1, hdfcMessage, "", "")

			assert.True(t, out.Success, "extraction survives storage failures")
			assert.Equal(t, "1500", out.Amount.Decimal.String())
			assert.Nil(t, out.MessageID)
			assert.Nil(t, out.TransactionID)

			var serr *parsererror.StorageError
			require.ErrorAs(t, out.StorageError, &serr)
			assert.Equal(t, tt.operation, serr.Operation)

			msgs, txns, ledger := st.Counts()
			assert.Zero(t, msgs, "the unit of work is rolled back")
			assert.Zero(t, txns)
			assert.Zero(t, ledger)

			errs := logger.EntriesByLevel("ERROR")
			require.Len(t, errs, 1)
			assert.Equal(t, "Failed to persist message", errs[0].Message)
			assert.Error(t, errs[0].Error)
		})
	}
}

func TestParseMessageDuplicate(t *testing.T) {
	svc, st, logger := newTestService(t)
	st.DedupWindow = time.Hour

	first := svc.ParseMessage(context.Background(), 1, hdfcMessage, "VM-HDFCBK", "")
	second := svc.ParseMessage(context.Background(), 1, hdfcMessage, "VM-HDFCBK", "")

	assert.NotNil(t, first.TransactionID)
	assert.Nil(t, second.MessageID)
	assert.True(t, store.IsDuplicate(second.StorageError))
	assert.True(t, logger.HasEntry("WARN", "Duplicate message not stored"))
	assert.Empty(t, logger.EntriesByLevel("ERROR"))
}

func TestProcessKeepsReceiptTime(t *testing.T) {
	svc, st, _ := newTestService(t)
	received := time.Date(2023, 12, 15, 9, 0, 0, 0, time.UTC)

	out := svc.Process(context.Background(), models.Message{UserID: 3, Text: hdfcMessage, ReceivedAt: received})
	require.NotNil(t, out.MessageID)

	history, err := st.GetMessageHistory(context.Background(), 3, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, received.Equal(history[0].ReceivedAt))
}
