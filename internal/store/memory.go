package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/parsererror"
)

type memMessage struct {
	id        int64
	rec       MessageRecord
	processed bool
}

type memTransaction struct {
	id  int64
	rec TransactionRecord
}

type memLedger struct {
	userID int64
	entry  models.LedgerEntry
}

type memState struct {
	messages     []memMessage
	transactions []memTransaction
	ledger       []memLedger
	nextID       int64
}

func (s memState) clone() memState {
	return memState{
		messages:     append([]memMessage(nil), s.messages...),
		transactions: append([]memTransaction(nil), s.transactions...),
		ledger:       append([]memLedger(nil), s.ledger...),
		nextID:       s.nextID,
	}
}

// MemoryStore implements Store in memory. It backs the offline mode and is
// the store used by tests, which can make individual operations fail through
// the error fields.
type MemoryStore struct {
	mu    sync.Mutex
	state memState
	now   func() time.Time

	// DedupWindow has the meaning of WithDedupWindow.
	DedupWindow time.Duration

	// Error flags for testing error conditions
	SaveMessageError     error
	SaveTransactionError error
	MarkProcessedError   error

	// Call counters
	TxCalls              int
	SaveMessageCalls     int
	SaveTransactionCalls int
	MarkProcessedCalls   int
}

// NewMemoryStore returns an empty MemoryStore using the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// SetClock sets the clock used for defaulted and creation timestamps.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// RunInTx runs fn against a copy of the data and keeps the copy only when fn
// returns nil.
func (m *MemoryStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TxCalls++

	if err := ctx.Err(); err != nil {
		return parsererror.NewStorageError("begin", err)
	}
	tx := &memTx{store: m, state: m.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

// Counts returns the number of stored messages, transactions and ledger rows.
func (m *MemoryStore) Counts() (messages, transactions, ledger int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.messages), len(m.state.transactions), len(m.state.ledger)
}

// IsProcessed reports whether the message with id exists and is processed.
func (m *MemoryStore) IsProcessed(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.state.messages {
		if msg.id == id {
			return msg.processed
		}
	}
	return false
}

// GetUserTransactions implements Store.
func (m *MemoryStore) GetUserTransactions(_ context.Context, userID int64, limit int) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.LedgerEntry
	for _, l := range m.state.ledger {
		if l.userID == userID {
			out = append(out, l.entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return truncate(out, limit), nil
}

// GetMessageHistory implements Store.
func (m *MemoryStore) GetMessageHistory(_ context.Context, userID int64, limit int) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byMessage := make(map[int64]TransactionRecord)
	for _, t := range m.state.transactions {
		byMessage[t.rec.MessageID] = t.rec
	}

	var out []models.HistoryEntry
	for _, msg := range m.state.messages {
		if msg.rec.UserID != userID {
			continue
		}
		e := models.HistoryEntry{
			ID:             msg.id,
			MessagePreview: models.Preview(msg.rec.Text),
			Sender:         msg.rec.SenderNumber,
			Bank:           string(msg.rec.BankDetected),
			ReceivedAt:     msg.rec.ReceivedAt,
			Processed:      msg.processed,
		}
		if t, ok := byMessage[msg.id]; ok {
			e.ParsedAmount.Decimal = t.Amount
			e.ParsedAmount.Valid = true
			merchant, confidence := t.Merchant, t.Confidence
			e.ParsedMerchant = &merchant
			e.Confidence = &confidence
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ReceivedAt.After(out[j].ReceivedAt)
		}
		return out[i].ID > out[j].ID
	})
	return truncate(out, limit), nil
}

// Ping implements Store. It fails only for a canceled context.
func (m *MemoryStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return parsererror.NewStorageError("ping", err)
	}
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

type memTx struct {
	store *MemoryStore
	state memState
}

func (t *memTx) clock() time.Time {
	if t.store.now == nil {
		return time.Now()
	}
	return t.store.now()
}

func (t *memTx) SaveMessage(_ context.Context, rec MessageRecord) (int64, error) {
	t.store.SaveMessageCalls++
	if t.store.SaveMessageError != nil {
		return 0, parsererror.NewStorageError("save message", t.store.SaveMessageError)
	}
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = t.clock()
	}
	if w := t.store.DedupWindow; w > 0 {
		for _, msg := range t.state.messages {
			if msg.rec.UserID == rec.UserID && msg.rec.SenderNumber == rec.SenderNumber &&
				msg.rec.Text == rec.Text && absDuration(msg.rec.ReceivedAt.Sub(rec.ReceivedAt)) < w {
				return 0, parsererror.NewStorageError("save message", parsererror.ErrDuplicateMessage)
			}
		}
	}
	t.state.nextID++
	t.state.messages = append(t.state.messages, memMessage{id: t.state.nextID, rec: rec})
	return t.state.nextID, nil
}

func (t *memTx) SaveTransaction(_ context.Context, rec TransactionRecord) (int64, error) {
	t.store.SaveTransactionCalls++
	if t.store.SaveTransactionError != nil {
		return 0, parsererror.NewStorageError("save transaction", t.store.SaveTransactionError)
	}

	t.state.nextID++
	id := t.state.nextID
	t.state.transactions = append(t.state.transactions, memTransaction{id: id, rec: rec})

	t.state.nextID++
	messageID := rec.MessageID
	t.state.ledger = append(t.state.ledger, memLedger{
		userID: rec.UserID,
		entry: models.LedgerEntry{
			ID:        t.state.nextID,
			Amount:    rec.Amount,
			Date:      rec.Date,
			Merchant:  rec.Merchant,
			Category:  models.CategoryUncategorized,
			Source:    models.SourceSMSParser,
			MessageID: &messageID,
			CreatedAt: t.clock(),
		},
	})
	return id, nil
}

func (t *memTx) MarkMessageProcessed(_ context.Context, messageID int64) error {
	t.store.MarkProcessedCalls++
	if t.store.MarkProcessedError != nil {
		return parsererror.NewStorageError("mark processed", t.store.MarkProcessedError)
	}
	for i := range t.state.messages {
		if t.state.messages[i].id == messageID {
			t.state.messages[i].processed = true
			return nil
		}
	}
	return parsererror.NewStorageError("mark processed", fmt.Errorf("message %d not found", messageID))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

var _ Store = (*MemoryStore)(nil)
