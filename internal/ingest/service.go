// Package ingest applies the persistence policy to parsed notifications: a
// message with an amount is stored, and when the extraction is confident
// enough a transaction and ledger row are stored with it.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/store"
)

// DefaultPersistThreshold is the overall confidence a result must exceed for
// a transaction to be recorded.
const DefaultPersistThreshold = 0.5

// Extractor turns notification text into an ExtractionResult.
type Extractor interface {
	Parse(text, sender string) models.ExtractionResult
}

// Service is the entry point for parsing and recording notifications.
type Service struct {
	extractor Extractor
	store     store.Store
	logger    logging.Logger
	threshold float64
	now       func() time.Time
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

// WithThreshold sets the confidence a result must exceed to be recorded as a
// transaction.
func WithThreshold(threshold float64) Option {
	return func(s *Service) { s.threshold = threshold }
}

// WithClock sets the clock stamping messages that carry no receipt time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRequestIDs sets the generator of per-message request identifiers.
func WithRequestIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a Service recording into st.
func NewService(extractor Extractor, st store.Store, logger logging.Logger, opts ...Option) *Service {
	s := &Service{
		extractor: extractor,
		store:     st,
		logger:    logger.WithField(logging.FieldComponent, "ingest"),
		threshold: DefaultPersistThreshold,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseMessage parses a notification received now and records it.
func (s *Service) ParseMessage(ctx context.Context, userID int64, text, senderNumber, senderName string) models.ParseOutcome {
	return s.Process(ctx, models.Message{
		UserID:       userID,
		Text:         text,
		SenderNumber: senderNumber,
		SenderName:   senderName,
		ReceivedAt:   s.now(),
	})
}

// Process parses msg and records it:
//   - without an amount nothing is stored;
//   - otherwise the message is stored, and when the overall confidence exceeds
//     the threshold the transaction is stored and the message marked processed.
//
// The writes form one unit. A storage failure is logged and reported in the
// outcome's StorageError with both identifiers left nil; the extraction is
// returned regardless.
func (s *Service) Process(ctx context.Context, msg models.Message) models.ParseOutcome {
	log := s.logger.WithFields(
		logging.F(logging.FieldRequestID, s.newID()),
		logging.F(logging.FieldUserID, msg.UserID),
	)

	result := s.extractor.Parse(msg.Text, msg.SenderNumber)
	outcome := models.ParseOutcome{ExtractionResult: result}
	if !result.Success {
		log.Info("No amount found, message not stored",
			logging.F(logging.FieldConfidence, result.OverallConfidence))
		return outcome
	}

	var messageID, transactionID *int64
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		id, err := tx.SaveMessage(ctx, store.MessageRecord{
			UserID:        msg.UserID,
			Text:          msg.Text,
			SenderNumber:  msg.SenderNumber,
			SenderName:    msg.SenderName,
			IsBankMessage: result.HasBank(),
			BankDetected:  result.Bank,
			ReceivedAt:    msg.ReceivedAt,
		})
		if err != nil {
			return err
		}
		messageID = &id

		if result.RawConfidence <= s.threshold {
			return nil
		}

		txID, err := tx.SaveTransaction(ctx, transactionRecord(msg.UserID, id, result))
		if err != nil {
			return err
		}
		if err := tx.MarkMessageProcessed(ctx, id); err != nil {
			return err
		}
		transactionID = &txID
		return nil
	})
	if err != nil {
		outcome.StorageError = err
		if store.IsDuplicate(err) {
			log.WithError(err).Warn("Duplicate message not stored")
		} else {
			log.WithError(err).Error("Failed to persist message")
		}
		return outcome
	}

	outcome.MessageID = messageID
	outcome.TransactionID = transactionID
	fields := []logging.Field{
		logging.F(logging.FieldMessageID, *messageID),
		logging.F(logging.FieldBank, string(result.Bank)),
		logging.F(logging.FieldAmount, result.Amount.Decimal.String()),
		logging.F(logging.FieldConfidence, result.OverallConfidence),
	}
	if transactionID != nil {
		log.Info("Transaction recorded", append(fields, logging.F(logging.FieldTransactionID, *transactionID))...)
	} else {
		log.Info("Message stored below confidence threshold", fields...)
	}
	return outcome
}

func transactionRecord(userID, messageID int64, result models.ExtractionResult) store.TransactionRecord {
	merchant := result.Merchant
	if !result.HasMerchant() {
		merchant = models.UnknownMerchant
	}
	bank := string(result.Bank)
	if !result.HasBank() {
		bank = models.UnknownBank
	}
	return store.TransactionRecord{
		UserID:     userID,
		MessageID:  messageID,
		Amount:     result.Amount.Decimal,
		Merchant:   merchant,
		Date:       result.TransactionDate,
		BankName:   bank,
		Direction:  result.Direction,
		Confidence: result.RawConfidence,
	}
}
