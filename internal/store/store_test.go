package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

type storeFactory func(t *testing.T, now func() time.Time, dedup time.Duration) Store

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		DriverSQLite: func(t *testing.T, now func() time.Time, dedup time.Duration) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"), logging.NewMockLogger(),
				WithSQLiteClock(now), WithDedupWindow(dedup))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		DriverMemory: func(t *testing.T, now func() time.Time, dedup time.Duration) Store {
			s := NewMemoryStore()
			s.SetClock(now)
			s.DedupWindow = dedup
			return s
		},
	}
}

// tickingClock returns baseTime plus one second per call.
func tickingClock() func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return baseTime.Add(time.Duration(n) * time.Second)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// saveParsed stores a message and, when amount is non-empty, its transaction.
func saveParsed(t *testing.T, s Store, userID int64, text string, received time.Time, amount string, txDate time.Time) (int64, int64) {
	t.Helper()
	var msgID, txID int64
	err := s.RunInTx(context.Background(), func(tx Tx) error {
		var err error
		msgID, err = tx.SaveMessage(context.Background(), MessageRecord{
			UserID: userID, Text: text, SenderNumber: "VM-HDFCBK", IsBankMessage: true,
			BankDetected: models.BankHDFC, ReceivedAt: received,
		})
		if err != nil || amount == "" {
			return err
		}
		txID, err = tx.SaveTransaction(context.Background(), TransactionRecord{
			UserID: userID, MessageID: msgID, Amount: decimal.RequireFromString(amount),
			Merchant: "Amazon India", Date: txDate, BankName: "HDFC",
			Direction: models.DirectionDebit, Confidence: 0.755,
		})
		if err != nil {
			return err
		}
		return tx.MarkMessageProcessed(context.Background(), msgID)
	})
	require.NoError(t, err)
	return msgID, txID
}

func TestStoreSaveAndRead(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, tickingClock(), 0)
			ctx := context.Background()

			msgID, txID := saveParsed(t, s, 1, "HDFC Bank: Rs. 1,500.00 debited", baseTime, "1500.00", date(2023, 12, 15))
			assert.Positive(t, msgID)
			assert.Positive(t, txID)

			txns, err := s.GetUserTransactions(ctx, 1, 10)
			require.NoError(t, err)
			require.Len(t, txns, 1)
			assert.True(t, decimal.NewFromInt(1500).Equal(txns[0].Amount))
			assert.True(t, date(2023, 12, 15).Equal(txns[0].Date))
			assert.Equal(t, "Amazon India", txns[0].Merchant)
			assert.Equal(t, models.CategoryUncategorized, txns[0].Category)
			assert.Equal(t, models.SourceSMSParser, txns[0].Source)
			require.NotNil(t, txns[0].MessageID)
			assert.Equal(t, msgID, *txns[0].MessageID)

			history, err := s.GetMessageHistory(ctx, 1, 10)
			require.NoError(t, err)
			require.Len(t, history, 1)
			h := history[0]
			assert.Equal(t, msgID, h.ID)
			assert.Equal(t, "HDFC Bank: Rs. 1,500.00 debited", h.MessagePreview)
			assert.Equal(t, "VM-HDFCBK", h.Sender)
			assert.Equal(t, "HDFC", h.Bank)
			assert.True(t, baseTime.Equal(h.ReceivedAt))
			assert.True(t, h.Processed)
			require.True(t, h.ParsedAmount.Valid)
			assert.True(t, decimal.NewFromInt(1500).Equal(h.ParsedAmount.Decimal))
			require.NotNil(t, h.ParsedMerchant)
			assert.Equal(t, "Amazon India", *h.ParsedMerchant)
			require.NotNil(t, h.Confidence)
			assert.InDelta(t, 0.755, *h.Confidence, 1e-9)
		})
	}
}

func TestStoreMessageWithoutTransaction(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, tickingClock(), 0)
			long := strings.Repeat("x", 100)
			saveParsed(t, s, 1, long, baseTime, "", time.Time{})

			history, err := s.GetMessageHistory(context.Background(), 1, 0)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, strings.Repeat("x", 80)+"...", history[0].MessagePreview)
			assert.False(t, history[0].Processed)
			assert.False(t, history[0].ParsedAmount.Valid)
			assert.Nil(t, history[0].ParsedMerchant)
			assert.Nil(t, history[0].Confidence)

			txns, err := s.GetUserTransactions(context.Background(), 1, 0)
			require.NoError(t, err)
			assert.Empty(t, txns)
		})
	}
}

func TestStoreRollback(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, tickingClock(), 0)
			boom := errors.New("boom")

			err := s.RunInTx(context.Background(), func(tx Tx) error {
				id, err := tx.SaveMessage(context.Background(), MessageRecord{UserID: 1, Text: "Rs 10 debited", ReceivedAt: baseTime})
				require.NoError(t, err)
				_, err = tx.SaveTransaction(context.Background(), TransactionRecord{
					UserID: 1, MessageID: id, Amount: decimal.NewFromInt(10), Date: date(2024, 1, 1),
				})
				require.NoError(t, err)
				return boom
			})
			assert.ErrorIs(t, err, boom)

			history, err := s.GetMessageHistory(context.Background(), 1, 0)
			require.NoError(t, err)
			assert.Empty(t, history)
			txns, err := s.GetUserTransactions(context.Background(), 1, 0)
			require.NoError(t, err)
			assert.Empty(t, txns)
		})
	}
}

func TestStoreOrderingAndLimits(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, tickingClock(), 0)
			ctx := context.Background()

			older, _ := saveParsed(t, s, 1, "first", baseTime, "10", date(2024, 1, 10))
			newer, _ := saveParsed(t, s, 1, "second", baseTime.Add(time.Hour), "20", date(2024, 1, 10))
			_, _ = saveParsed(t, s, 1, "third", baseTime.Add(-time.Hour), "30", date(2024, 1, 12))
			_, _ = saveParsed(t, s, 2, "other user", baseTime, "40", date(2024, 1, 20))

			txns, err := s.GetUserTransactions(ctx, 1, 0)
			require.NoError(t, err)
			require.Len(t, txns, 3)
			assert.Equal(t, "30", txns[0].Amount.String(), "newest date first")
			assert.Equal(t, newer, *txns[1].MessageID, "same date: newest creation first")
			assert.Equal(t, older, *txns[2].MessageID)

			limited, err := s.GetUserTransactions(ctx, 1, 2)
			require.NoError(t, err)
			assert.Len(t, limited, 2)

			history, err := s.GetMessageHistory(ctx, 1, 0)
			require.NoError(t, err)
			require.Len(t, history, 3)
			assert.Equal(t, "second", history[0].MessagePreview)
			assert.Equal(t, "first", history[1].MessagePreview)
			assert.Equal(t, "third", history[2].MessagePreview)

			history, err = s.GetMessageHistory(ctx, 1, 1)
			require.NoError(t, err)
			assert.Len(t, history, 1)
		})
	}
}

func TestStoreDedupWindow(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, tickingClock(), time.Hour)
			save := func(sender string, received time.Time) error {
				return s.RunInTx(context.Background(), func(tx Tx) error {
					_, err := tx.SaveMessage(context.Background(), MessageRecord{
						UserID: 7, Text: "Rs 99 debited", SenderNumber: sender, ReceivedAt: received,
					})
					return err
				})
			}

			require.NoError(t, save("AD-ICICI", baseTime))

			err := save("AD-ICICI", baseTime.Add(30*time.Minute))
			assert.True(t, IsDuplicate(err))
			var serr *parsererror.StorageError
			assert.ErrorAs(t, err, &serr)

			assert.NoError(t, save("AD-ICICI", baseTime.Add(2*time.Hour)))
			assert.NoError(t, save("AD-AXIS", baseTime.Add(10*time.Minute)))
			assert.NoError(t, save("", baseTime))
			assert.True(t, IsDuplicate(save("", baseTime.Add(time.Minute))))
		})
	}
}

func TestStoreMarkUnknownMessage(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, tickingClock(), 0)
			err := s.RunInTx(context.Background(), func(tx Tx) error {
				return tx.MarkMessageProcessed(context.Background(), 4242)
			})
			var serr *parsererror.StorageError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, "mark processed", serr.Operation)
		})
	}
}

func TestStoreDefaultsReceivedAt(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			fixed := func() time.Time { return baseTime }
			s := newStore(t, fixed, 0)
			err := s.RunInTx(context.Background(), func(tx Tx) error {
				_, err := tx.SaveMessage(context.Background(), MessageRecord{UserID: 1, Text: "hi"})
				return err
			})
			require.NoError(t, err)

			history, err := s.GetMessageHistory(context.Background(), 1, 0)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.True(t, baseTime.Equal(history[0].ReceivedAt))
		})
	}
}

func TestStorePing(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, tickingClock(), 0)
			assert.NoError(t, s.Ping(context.Background()))
		})
	}
}
