package smsbackup

import (
	"context"
	"time"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/store"
)

// Processor parses and stores one message.
type Processor interface {
	Process(ctx context.Context, msg models.Message) models.ParseOutcome
}

// Filter restricts which entries are imported. Zero values match everything.
type Filter struct {
	Sender string
	Since  time.Time
	// IncludeSent also imports messages the user sent.
	IncludeSent bool
}

func (f Filter) match(e Entry) bool {
	if f.Sender != "" && e.Address != f.Sender {
		return false
	}
	if !f.Since.IsZero() && e.ReceivedAt.Before(f.Since) {
		return false
	}
	return f.IncludeSent || e.Type == TypeInbox
}

// Summary counts what happened to each entry of an import.
type Summary struct {
	Total        int `json:"total"`
	Filtered     int `json:"filtered"`
	Duplicates   int `json:"duplicates"`
	NoAmount     int `json:"no_amount"`
	Stored       int `json:"stored"`
	Transactions int `json:"transactions"`
	Rejected     int `json:"rejected"`
	Failed       int `json:"failed"`
}

// Importer feeds backup entries to a Processor.
type Importer struct {
	processor Processor
	logger    logging.Logger
}

// NewImporter creates an Importer.
func NewImporter(processor Processor, logger logging.Logger) *Importer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Importer{
		processor: processor,
		logger:    logger.WithField(logging.FieldComponent, "smsbackup"),
	}
}

// Import processes entries for userID in order. Repeats of an entry within
// the same import are skipped. Messages rejected by the store's duplicate
// window are counted as Rejected, other storage failures as Failed; neither
// stops the import. A canceled ctx stops it and returns ctx.Err().
func (im *Importer) Import(ctx context.Context, userID int64, entries []Entry, filter Filter) (Summary, error) {
	summary := Summary{Total: len(entries)}
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !filter.match(e) {
			summary.Filtered++
			continue
		}
		sig := e.Signature()
		if seen[sig] {
			summary.Duplicates++
			continue
		}
		seen[sig] = true

		outcome := im.processor.Process(ctx, models.Message{
			UserID:       userID,
			Text:         e.Body,
			SenderNumber: e.Address,
			SenderName:   e.ContactName,
			ReceivedAt:   e.ReceivedAt,
		})
		switch {
		case outcome.StorageError != nil && store.IsDuplicate(outcome.StorageError):
			summary.Rejected++
		case outcome.StorageError != nil:
			summary.Failed++
		case !outcome.Success:
			summary.NoAmount++
		default:
			summary.Stored++
			if outcome.TransactionID != nil {
				summary.Transactions++
			}
		}
	}

	im.logger.Info("SMS backup imported",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldCount, summary.Total),
		logging.F("stored", summary.Stored),
		logging.F("transactions", summary.Transactions),
		logging.F("duplicates", summary.Duplicates),
		logging.F("failed", summary.Failed))
	return summary, nil
}
