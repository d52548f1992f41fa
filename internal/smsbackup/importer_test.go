package smsbackup

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/sms-ledger/internal/ingest"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/smsparser"
	"fjacquet/sms-ledger/internal/store"
)

var importClock = func() time.Time { return time.Date(2023, 12, 20, 12, 0, 0, 0, time.UTC) }

func newImporter(t *testing.T, st store.Store, logger logging.Logger) *Importer {
	t.Helper()
	parser := smsparser.New(nil, logger, smsparser.WithClock(importClock))
	service := ingest.NewService(parser, st, logger, ingest.WithClock(importClock))
	return NewImporter(service, logger)
}

func loadSample(t *testing.T) []Entry {
	t.Helper()
	entries, err := Load(strings.NewReader(sampleBackup))
	require.NoError(t, err)
	return entries
}

func TestImport(t *testing.T) {
	st := store.NewMemoryStore()
	logger := logging.NewMockLogger()
	im := newImporter(t, st, logger)

	summary, err := im.Import(context.Background(), 1, loadSample(t), Filter{})
	require.NoError(t, err)

	assert.Equal(t, Summary{
		Total:        5,
		Filtered:     1, // sent message
		Duplicates:   1,
		NoAmount:     1, // delivery notice
		Stored:       2,
		Transactions: 2,
	}, summary)
	assert.True(t, logger.HasEntry("INFO", "SMS backup imported"))

	history, err := st.GetMessageHistory(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// newest first, receipt time taken from the backup
	assert.Equal(t, "ICICIB", history[0].Sender)
	assert.Equal(t, time.Date(2023, 12, 16, 9, 20, 0, 0, time.UTC), history[0].ReceivedAt)
}

func TestImport_Filters(t *testing.T) {
	tests := []struct {
		name         string
		filter       Filter
		wantFiltered int
		wantStored   int
	}{
		{
			name:         "sender",
			filter:       Filter{Sender: "ICICIB"},
			wantFiltered: 4,
			wantStored:   1,
		},
		{
			name:         "since",
			filter:       Filter{Since: time.Date(2023, 12, 16, 0, 0, 0, 0, time.UTC)},
			wantFiltered: 3,
			wantStored:   1,
		},
		{
			name:         "include sent",
			filter:       Filter{IncludeSent: true},
			wantFiltered: 0,
			wantStored:   2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im := newImporter(t, store.NewMemoryStore(), logging.NewMockLogger())
			summary, err := im.Import(context.Background(), 1, loadSample(t), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFiltered, summary.Filtered)
			assert.Equal(t, tt.wantStored, summary.Stored)
		})
	}
}

func TestImport_StoreDedupWindow(t *testing.T) {
	st := store.NewMemoryStore()
	st.DedupWindow = time.Minute
	im := newImporter(t, st, logging.NewMockLogger())

	first, err := im.Import(context.Background(), 1, loadSample(t), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Stored)

	// re-importing the same file is rejected by the store
	second, err := im.Import(context.Background(), 1, loadSample(t), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Stored)
	assert.Equal(t, 2, second.Rejected)
}

func TestImport_StorageFailure(t *testing.T) {
	st := store.NewMemoryStore()
	st.SaveMessageError = assert.AnError
	im := newImporter(t, st, logging.NewMockLogger())

	summary, err := im.Import(context.Background(), 1, loadSample(t), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 0, summary.Stored)
}

type countingProcessor struct{ calls int }

func (p *countingProcessor) Process(context.Context, models.Message) models.ParseOutcome {
	p.calls++
	return models.ParseOutcome{}
}

func TestImport_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	proc := &countingProcessor{}
	im := NewImporter(proc, logging.NewMockLogger())

	_, err := im.Import(ctx, 1, loadSample(t), Filter{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, proc.calls)
}
