// Package api exposes message parsing and the ledger read operations over
// HTTP.
package api

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/store"
)

const (
	maxBodySize     = 1 << 20 // 1MB
	shutdownTimeout = 5 * time.Second
)

// MessageParser parses and persists a single message.
type MessageParser interface {
	ParseMessage(ctx context.Context, userID int64, text, senderNumber, senderName string) models.ParseOutcome
}

// Extractor parses a message without persisting it.
type Extractor interface {
	Parse(text, sender string) models.ExtractionResult
}

// Server serves the HTTP API.
type Server struct {
	ingest    MessageParser
	extractor Extractor
	store     store.Store
	logger    logging.Logger
	now       func() time.Time
	app       *fiber.App
}

// Option customises a Server.
type Option func(*Server)

// WithClock sets the clock used for timestamps and the recent-activity window.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer wires the routes.
func NewServer(ingest MessageParser, extractor Extractor, st store.Store, logger logging.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	s := &Server{
		ingest:    ingest,
		extractor: extractor,
		store:     st,
		logger:    logger.WithField(logging.FieldComponent, "api"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "sms-ledger",
		BodyLimit:             maxBodySize,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(s.logRequests)

	s.app.Post("/api/sms/parse", s.handleParse)
	s.app.Get("/api/sms/test", s.handleTest)
	s.app.Get("/api/sms/history/:userID", s.handleHistory)
	s.app.Get("/api/transactions/stats/:userID", s.handleStats)
	s.app.Get("/api/transactions/:userID", s.handleTransactions)
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/", s.handleIndex)
	return s
}

// App returns the fiber application serving the routes.
func (s *Server) App() *fiber.App {
	return s.app
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server started", logging.F("addr", ln.Addr().String()))
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownErr := s.app.ShutdownWithTimeout(shutdownTimeout)
	// the listener may not be registered with the server yet
	_ = ln.Close()
	if err := <-errCh; err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return shutdownErr
}

// handleError renders every error as {"detail": ...}.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			return herr
		}
	}
	s.logger.Debug("Handled request",
		logging.F("method", c.Method()),
		logging.F("path", c.Path()),
		logging.F("status", c.Response().StatusCode()),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return nil
}
