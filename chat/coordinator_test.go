package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ghardwar-web/models"
)

// fakeStore is an in-memory MessageStore standing in for the backend REST API.
type fakeStore struct {
	mu       sync.Mutex
	tokenErr error
	convs    []models.Conversation
	msgs     map[uint][]models.Message
	nextID   uint
	sendErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{msgs: make(map[uint][]models.Message), nextID: 100}
}

func (s *fakeStore) SocketToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokenErr != nil {
		return "", s.tokenErr
	}
	return "sock-token", nil
}

func (s *fakeStore) Conversations(ctx context.Context) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Conversation, len(s.convs))
	copy(out, s.convs)
	return out, nil
}

func (s *fakeStore) Messages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.msgs[conversationID]))
	copy(out, s.msgs[conversationID])
	return out, nil
}

func (s *fakeStore) Start(ctx context.Context, propertyID, ownerID uint) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.convs {
		if c.PropertyID == propertyID && c.OwnerID == ownerID {
			clone := c
			return &clone, nil
		}
	}
	s.nextID++
	conv := models.Conversation{ID: s.nextID, PropertyID: propertyID, OwnerID: ownerID}
	s.convs = append(s.convs, conv)
	return &conv, nil
}

func (s *fakeStore) Send(ctx context.Context, conversationID uint, text, messageType string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.nextID++
	msg := models.Message{
		ID:             s.nextID,
		ConversationID: conversationID,
		Text:           text,
		Type:           messageType,
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), // server clock, not ours
	}
	s.msgs[conversationID] = append(s.msgs[conversationID], msg)
	return &msg, nil
}

func (s *fakeStore) Report(ctx context.Context, messageID uint, reason string) error { return nil }

func (s *fakeStore) MarkRead(ctx context.Context, conversationID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.convs {
		if s.convs[i].ID == conversationID {
			s.convs[i].UnreadCount = 0
		}
	}
	return nil
}

// fakeNotifier records every emission instead of writing to a socket.
type fakeNotifier struct {
	mu      sync.Mutex
	emitted []struct {
		name    string
		payload interface{}
	}
}

func (n *fakeNotifier) Emit(name string, payload interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emitted = append(n.emitted, struct {
		name    string
		payload interface{}
	}{name, payload})
	return nil
}

func (n *fakeNotifier) Close() {}

func (n *fakeNotifier) count(name string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.emitted {
		if e.name == name {
			c++
		}
	}
	return c
}

func (n *fakeNotifier) last(name string) (interface{}, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.emitted) - 1; i >= 0; i-- {
		if n.emitted[i].name == name {
			return n.emitted[i].payload, true
		}
	}
	return nil, false
}

func newTestCoordinator(store *fakeStore, notifier *fakeNotifier) *Coordinator {
	cfg := Config{TypingDebounce: 60 * time.Millisecond, UnreadPoll: time.Hour}
	return NewCoordinator(1, "Asha Rao", store, notifier, cfg, zap.NewNop())
}

func event(t *testing.T, name string, payload interface{}) Event {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return Event{Name: name, Data: data}
}

func TestHandshakeAuthenticatesWithSocketToken(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	c.Handshake(context.Background())

	require.Equal(t, AwaitingAck, c.ConnState())
	payload, ok := notifier.last(EventAuthenticate)
	require.True(t, ok)
	require.Equal(t, authenticatePayload{Token: "sock-token"}, payload)
	require.Zero(t, notifier.count(EventIdentify))

	c.HandleEvent(Event{Name: EventAuthenticated})
	require.Equal(t, Live, c.ConnState())
}

func TestHandshakeFallsBackToIdentify(t *testing.T) {
	store := newFakeStore()
	store.tokenErr = errors.New("boom")
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	c.Handshake(context.Background())

	// the legacy identify path carries no proof, so the session is Degraded,
	// never Live
	require.Equal(t, Degraded, c.ConnState())
	require.Equal(t, 1, notifier.count(EventIdentify))
	require.Zero(t, notifier.count(EventAuthenticate))
}

func TestAuthErrorDowngradesToIdentify(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	c.Handshake(context.Background())
	require.Equal(t, AwaitingAck, c.ConnState())

	c.HandleEvent(event(t, EventAuthError, authResultPayload{Code: "token_expired"}))
	require.Equal(t, Degraded, c.ConnState())
	require.Equal(t, 1, notifier.count(EventIdentify))
}

func TestSendMessageIsRESTAuthoritative(t *testing.T) {
	store := newFakeStore()
	store.convs = []models.Conversation{{ID: 7}}
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	_, err := c.OpenConversation(context.Background(), 7)
	require.NoError(t, err)

	msg, err := c.SendMessage(context.Background(), 7, "hello", models.MessageTypeText)
	require.NoError(t, err)

	// the server assigned identity and timestamp
	require.NotZero(t, msg.ID)
	require.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), msg.CreatedAt)

	// only the server's copy entered local state
	msgs, _ := c.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, *msg, msgs[0])

	// and the socket carried it as a notification
	require.Equal(t, 1, notifier.count(EventSendMessage))
}

func TestSendMessageFailureLeavesNoLocalTrace(t *testing.T) {
	store := newFakeStore()
	store.convs = []models.Conversation{{ID: 7}}
	store.sendErr = errors.New("backend down")
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	_, err := c.OpenConversation(context.Background(), 7)
	require.NoError(t, err)

	_, err = c.SendMessage(context.Background(), 7, "hello", models.MessageTypeText)
	require.Error(t, err)

	msgs, _ := c.Messages()
	require.Empty(t, msgs)
	require.Zero(t, notifier.count(EventSendMessage))
}

func TestUnreadCountNeverSilentlyDrops(t *testing.T) {
	store := newFakeStore()
	store.convs = []models.Conversation{{ID: 7, UnreadCount: 2}}
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	convs := c.LoadConversations(context.Background())
	require.Equal(t, 2, convs[0].UnreadCount)

	// a pushed message bumps the local count to 3 before the backend's
	// counter catches up
	c.HandleEvent(event(t, EventReceiveMessage, models.Message{ID: 50, ConversationID: 7, Text: "hi"}))
	time.Sleep(50 * time.Millisecond) // let the push-driven refresh settle

	convs = c.LoadConversations(context.Background())
	require.Equal(t, 3, convs[0].UnreadCount, "stale backend count must not lower the local one")

	// an explicit open is the only thing that resets it
	_, err := c.OpenConversation(context.Background(), 7)
	require.NoError(t, err)

	convs = c.Conversations()
	require.Equal(t, 0, convs[0].UnreadCount)

	convs = c.LoadConversations(context.Background())
	require.Equal(t, 0, convs[0].UnreadCount)
}

func TestOpenConversationJoinsAndMarksRead(t *testing.T) {
	store := newFakeStore()
	store.convs = []models.Conversation{{ID: 7, UnreadCount: 4}}
	store.msgs[7] = []models.Message{
		{ID: 1, ConversationID: 7, Text: "first"},
		{ID: 2, ConversationID: 7, Text: "second"},
	}
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	c.LoadConversations(context.Background())

	msgs, err := c.OpenConversation(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, 1, notifier.count(EventJoinConversation))
	require.Equal(t, 0, c.Conversations()[0].UnreadCount)

	// switching conversations leaves the old room
	store.convs = append(store.convs, models.Conversation{ID: 8})
	store.msgs[8] = nil
	_, err = c.OpenConversation(context.Background(), 8)
	require.NoError(t, err)
	require.Equal(t, 1, notifier.count(EventLeaveConversation))

	// messages were wholesale replaced for the new conversation
	msgs2, loading := c.Messages()
	require.False(t, loading)
	require.Empty(t, msgs2)
}

func TestReceiveMessageAppendsOnlyToCurrentConversation(t *testing.T) {
	store := newFakeStore()
	store.convs = []models.Conversation{{ID: 7}, {ID: 8}}
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	_, err := c.OpenConversation(context.Background(), 7)
	require.NoError(t, err)

	c.HandleEvent(event(t, EventReceiveMessage, models.Message{ID: 60, ConversationID: 7, Text: "for you"}))
	c.HandleEvent(event(t, EventReceiveMessage, models.Message{ID: 61, ConversationID: 8, Text: "elsewhere"}))

	msgs, _ := c.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, uint(60), msgs[0].ID)
}

func TestTypingDebounce(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	// a burst of keystrokes collapses to a single typing event
	c.Keystroke(7)
	c.Keystroke(7)
	c.Keystroke(7)
	require.Equal(t, 1, notifier.count(EventTyping))
	require.Zero(t, notifier.count(EventStopTyping))

	// and the quiet period to a single stop
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, 1, notifier.count(EventTyping))
	require.Equal(t, 1, notifier.count(EventStopTyping))
}

func TestTypingSwitchConversationMidBurst(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	c.Keystroke(7)
	c.Keystroke(7)

	// switch conversations inside the debounce window, keep typing
	c.Keystroke(8)
	c.Keystroke(8)
	c.Keystroke(8)

	// the old conversation got exactly one stop, the new one exactly one
	// typing, and nothing fires mid-burst
	require.Equal(t, 2, notifier.count(EventTyping))
	require.Equal(t, 1, notifier.count(EventStopTyping))
	stop, ok := notifier.last(EventStopTyping)
	require.True(t, ok)
	require.Equal(t, uint(7), stop.(typingPayload).ConversationID)

	// the orphaned timer from conversation 7 must not fire into 8's burst
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, 2, notifier.count(EventTyping))
	require.Equal(t, 2, notifier.count(EventStopTyping))
	stop, ok = notifier.last(EventStopTyping)
	require.True(t, ok)
	require.Equal(t, uint(8), stop.(typingPayload).ConversationID)
}

func TestSendStopsTypingFirst(t *testing.T) {
	store := newFakeStore()
	store.convs = []models.Conversation{{ID: 7}}
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	c.Keystroke(7)
	_, err := c.SendMessage(context.Background(), 7, "done typing", models.MessageTypeText)
	require.NoError(t, err)

	require.Equal(t, 1, notifier.count(EventStopTyping))

	// the timer was cancelled, no second stop later
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, 1, notifier.count(EventStopTyping))
}

func TestPresenceWholesaleReplace(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	c.HandleEvent(event(t, EventUsersOnline, usersOnlinePayload{Users: []uint{2, 3, 4}}))
	require.Equal(t, []uint{2, 3, 4}, c.Online())

	c.HandleEvent(event(t, EventUsersOnline, usersOnlinePayload{Users: []uint{5}}))
	require.Equal(t, []uint{5}, c.Online(), "presence replaces, never merges")
}

func TestPeerTypingIndicator(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	c.HandleEvent(event(t, EventUserTyping, typingPayload{ConversationID: 7, UserID: 2, UserName: "Ravi"}))
	typing := c.Typing()
	require.NotNil(t, typing)
	require.Equal(t, "Ravi", typing.UserName)

	// our own echo is ignored
	c.HandleEvent(event(t, EventUserTyping, typingPayload{ConversationID: 7, UserID: 1, UserName: "Asha Rao"}))
	require.Equal(t, "Ravi", c.Typing().UserName)

	// a second typer overwrites the single slot
	c.HandleEvent(event(t, EventUserTyping, typingPayload{ConversationID: 9, UserID: 3, UserName: "Meena"}))
	require.Equal(t, "Meena", c.Typing().UserName)

	c.HandleEvent(Event{Name: EventUserStopTyping})
	require.Nil(t, c.Typing())
}

func TestStartConversationIsIdempotent(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	first, err := c.StartConversation(context.Background(), 42, 9)
	require.NoError(t, err)
	second, err := c.StartConversation(context.Background(), 42, 9)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestSubscribeReceivesInboundEvents(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	c := newTestCoordinator(store, notifier)
	defer c.Close()

	ch, cancel := c.Subscribe()
	defer cancel()

	c.HandleEvent(event(t, EventUsersOnline, usersOnlinePayload{Users: []uint{2}}))

	select {
	case ev := <-ch:
		require.Equal(t, EventUsersOnline, ev.Name)
	case <-time.After(time.Second):
		t.Fatal("subscriber never saw the event")
	}
}
