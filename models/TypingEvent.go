package models

// TypingEvent is the single most recent typing notification. A newer event
// from any user overwrites it; there is no aggregation of multiple typers.
type TypingEvent struct {
	ConversationID uint   `json:"conversationID"`
	UserID         uint   `json:"userID"`
	UserName       string `json:"userName"`
}
