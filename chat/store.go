package chat

import (
	"context"

	"ghardwar-web/api"
	"ghardwar-web/models"
)

// MessageStore is the reliable, authoritative channel for conversations and
// messages. In production it is the backend REST API.
type MessageStore interface {
	SocketToken(ctx context.Context) (string, error)
	Conversations(ctx context.Context) ([]models.Conversation, error)
	Messages(ctx context.Context, conversationID uint) ([]models.Message, error)
	Start(ctx context.Context, propertyID, ownerID uint) (*models.Conversation, error)
	Send(ctx context.Context, conversationID uint, text, messageType string) (*models.Message, error)
	Report(ctx context.Context, messageID uint, reason string) error
	MarkRead(ctx context.Context, conversationID uint) error
}

// RESTStore adapts the bound API client to MessageStore.
type RESTStore struct {
	client *api.Client
}

func NewRESTStore(client *api.Client) *RESTStore {
	return &RESTStore{client: client}
}

func (s *RESTStore) SocketToken(ctx context.Context) (string, error) {
	return s.client.SocketToken(ctx)
}

func (s *RESTStore) Conversations(ctx context.Context) ([]models.Conversation, error) {
	return s.client.ListConversations(ctx)
}

func (s *RESTStore) Messages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	return s.client.ListMessages(ctx, conversationID)
}

func (s *RESTStore) Start(ctx context.Context, propertyID, ownerID uint) (*models.Conversation, error) {
	return s.client.StartConversation(ctx, api.StartConversationInput{
		PropertyID: propertyID,
		OwnerID:    ownerID,
	})
}

func (s *RESTStore) Send(ctx context.Context, conversationID uint, text, messageType string) (*models.Message, error) {
	return s.client.SendMessage(ctx, api.SendMessageInput{
		ConversationID: conversationID,
		Text:           text,
		Type:           messageType,
	})
}

func (s *RESTStore) Report(ctx context.Context, messageID uint, reason string) error {
	return s.client.ReportMessage(ctx, messageID, reason)
}

func (s *RESTStore) MarkRead(ctx context.Context, conversationID uint) error {
	return s.client.MarkConversationRead(ctx, conversationID)
}
