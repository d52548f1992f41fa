package models

import "time"

// Message is a raw notification as received. Empty sender fields mean the
// value was not supplied.
type Message struct {
	UserID       int64     `json:"user_id"`
	Text         string    `json:"message_text"`
	SenderNumber string    `json:"sender_number,omitempty"`
	SenderName   string    `json:"sender_name,omitempty"`
	ReceivedAt   time.Time `json:"received_at"`
}
