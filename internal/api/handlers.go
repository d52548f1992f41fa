package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/report"
	"fjacquet/sms-ledger/internal/store"
)

// sampleMessages are parsed by GET /api/sms/test.
var sampleMessages = []string{
	"HDFC Bank: Rs. 1,500.00 debited from A/c XX1234 on 15-12-2023 at AMAZON INDIA.",
	"ICICI Bank: Rs. 2,750.00 spent on Credit Card XX7878 at SWIGGY on 15/12/23.",
	"UPI: Rs. 500.00 paid to KIRANA STORE on 15-12-2023.",
}

type parseRequest struct {
	UserID       *int64  `json:"user_id"`
	MessageText  *string `json:"message_text"`
	SenderNumber string  `json:"sender_number"`
	SenderName   string  `json:"sender_name"`
}

func (s *Server) handleParse(c *fiber.Ctx) error {
	var req parseRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON")
	}
	switch {
	case req.UserID == nil:
		return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
	case req.MessageText == nil:
		return fiber.NewError(fiber.StatusBadRequest, "message_text is required")
	}

	outcome := s.ingest.ParseMessage(c.UserContext(), *req.UserID, *req.MessageText, req.SenderNumber, req.SenderName)
	return c.JSON(outcome)
}

func (s *Server) handleTest(c *fiber.Ctx) error {
	results := make([]models.ParseOutcome, 0, len(sampleMessages))
	for i, text := range sampleMessages {
		result := s.extractor.Parse(text, fmt.Sprintf("BANK%d", i))
		results = append(results, models.ParseOutcome{ExtractionResult: result})
	}
	return c.JSON(fiber.Map{
		"tested":  len(sampleMessages),
		"results": results,
	})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	userID, limit, err := userAndLimit(c, store.DefaultHistoryLimit)
	if err != nil {
		return err
	}
	history, err := s.store.GetMessageHistory(c.UserContext(), userID, limit)
	if err != nil {
		return s.internalError("Failed to load message history", userID, err)
	}
	if history == nil {
		history = []models.HistoryEntry{}
	}
	return c.JSON(fiber.Map{
		"total":   len(history),
		"history": history,
	})
}

func (s *Server) handleTransactions(c *fiber.Ctx) error {
	userID, limit, err := userAndLimit(c, store.DefaultTransactionsLimit)
	if err != nil {
		return err
	}
	entries, err := s.store.GetUserTransactions(c.UserContext(), userID, limit)
	if err != nil {
		return s.internalError("Failed to load transactions", userID, err)
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	return c.JSON(fiber.Map{
		"total":        len(entries),
		"by_source":    report.GroupBySource(entries),
		"transactions": entries,
	})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}
	entries, err := s.store.GetUserTransactions(c.UserContext(), userID, report.StatsLimit)
	if err != nil {
		return s.internalError("Failed to load transactions", userID, err)
	}
	stats := report.ComputeStats(entries, s.now())
	if stats.Empty() {
		return c.JSON(fiber.Map{"message": "No transactions found"})
	}
	return c.JSON(stats)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	database := "connected"
	if err := s.store.Ping(c.UserContext()); err != nil {
		s.logger.WithError(err).Warn("Store ping failed")
		database = "disconnected"
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"database":  database,
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "SMS ledger API",
		"endpoints": map[string]map[string]string{
			"sms": {
				"parse":   "POST /api/sms/parse",
				"test":    "GET /api/sms/test",
				"history": "GET /api/sms/history/{user_id}",
			},
			"transactions": {
				"get":   "GET /api/transactions/{user_id}",
				"stats": "GET /api/transactions/stats/{user_id}",
			},
		},
	})
}

func (s *Server) internalError(msg string, userID int64, err error) error {
	s.logger.WithError(err).Error(msg, logging.F(logging.FieldUserID, userID))
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}

func pathUserID(c *fiber.Ctx) (int64, error) {
	userID, err := strconv.ParseInt(c.Params("userID"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}
	return userID, nil
}

func userAndLimit(c *fiber.Ctx, defaultLimit int) (int64, int, error) {
	userID, err := pathUserID(c)
	if err != nil {
		return 0, 0, err
	}
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, 0, fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	return userID, limit, nil
}
