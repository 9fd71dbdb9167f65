package models

import "time"

// Message types. Visit requests and confirmations render as structured
// cards in the widget; everything else is plain text.
const (
	MessageTypeText              = "text"
	MessageTypeVisitRequest      = "visit_request"
	MessageTypeVisitConfirmation = "visit_confirmation"
)

type Message struct {
	ID             uint      `json:"ID"`
	ConversationID uint      `json:"conversationID"`
	SenderID       uint      `json:"senderID"`
	SenderName     string    `json:"senderName"`
	Text           string    `json:"text"`
	Type           string    `json:"type"`
	CreatedAt      time.Time `json:"createdAt"`
}
