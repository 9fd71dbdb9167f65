package chat

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"ghardwar-web/models"
)

// ConnState of the live transport, as seen by the coordinator.
type ConnState string

const (
	Disconnected ConnState = "disconnected"
	Connecting   ConnState = "connecting"
	AwaitingAck  ConnState = "awaiting_ack"
	Live         ConnState = "live"
	// Degraded means the socket-token handshake failed and the connection
	// identified itself with a bare user ID. The server treats that path as
	// unauthenticated, so delivery through the socket is not assumed; REST
	// keeps working.
	Degraded ConnState = "degraded"
)

type Config struct {
	TypingDebounce time.Duration
	UnreadPoll     time.Duration
}

func (c *Config) applyDefaults() {
	if c.TypingDebounce <= 0 {
		c.TypingDebounce = 2 * time.Second
	}
	if c.UnreadPoll <= 0 {
		c.UnreadPoll = 30 * time.Second
	}
}

// Coordinator composes the reliable channel (MessageStore) with the
// low-latency one (LiveNotifier) for a single authenticated session. REST
// is authoritative for every message; the socket only moves notifications.
type Coordinator struct {
	userID   uint
	userName string
	store    MessageStore
	notifier LiveNotifier
	logger   *zap.Logger
	cfg      Config

	mu            sync.Mutex
	connState     ConnState
	conversations []models.Conversation
	currentConvID uint
	messages      []models.Message
	loading       bool
	online        []uint
	typing        *models.TypingEvent
	readSince     map[uint]bool
	typingTimer   *time.Timer
	typingConvID  uint

	subscribers map[chan Event]struct{}
	done        chan struct{}
	pollOnce    sync.Once
}

func NewCoordinator(userID uint, userName string, store MessageStore, notifier LiveNotifier, cfg Config, logger *zap.Logger) *Coordinator {
	cfg.applyDefaults()
	return &Coordinator{
		userID:      userID,
		userName:    userName,
		store:       store,
		notifier:    notifier,
		logger:      logger,
		cfg:         cfg,
		connState:   Disconnected,
		readSince:   make(map[uint]bool),
		subscribers: make(map[chan Event]struct{}),
		done:        make(chan struct{}),
	}
}

// Start loads the initial conversation list and begins the periodic unread
// reconciliation poll.
func (c *Coordinator) Start(ctx context.Context) {
	c.refreshConversations(ctx)
	c.pollOnce.Do(func() { go c.pollLoop() })
}

func (c *Coordinator) pollLoop() {
	ticker := time.NewTicker(c.cfg.UnreadPoll)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.refreshConversations(context.Background())
		}
	}
}

// Handshake runs after every transport connect: exchange a short-lived
// socket token over REST and present it as an explicit authenticate event.
// The socket carries no ambient identity, so a bare user ID is never proof
// of anything — if the token exchange fails we fall back to the legacy
// identify event purely as a continuity shim, and the connection stays
// Degraded.
func (c *Coordinator) Handshake(ctx context.Context) {
	c.setConnState(Connecting)

	token, err := c.store.SocketToken(ctx)
	if err != nil {
		c.logger.Warn("socket token exchange failed, using legacy identify shim",
			zap.Uint("userID", c.userID), zap.Error(err))
		c.notifier.Emit(EventIdentify, identifyPayload{UserID: c.userID})
		c.setConnState(Degraded)
		return
	}

	if err := c.notifier.Emit(EventAuthenticate, authenticatePayload{Token: token}); err != nil {
		c.logger.Warn("authenticate emit failed", zap.Error(err))
		c.setConnState(Disconnected)
		return
	}
	c.setConnState(AwaitingAck)
}

// HandleEvent processes one inbound transport event.
func (c *Coordinator) HandleEvent(ev Event) {
	switch ev.Name {
	case EventAuthenticated:
		c.setConnState(Live)
		c.logger.Info("chat session live", zap.Uint("userID", c.userID))

	case EventAuthError:
		var payload authResultPayload
		decode(ev.Data, &payload)
		c.logger.Warn("chat socket auth rejected",
			zap.String("code", payload.Code), zap.String("message", payload.Message))
		c.notifier.Emit(EventIdentify, identifyPayload{UserID: c.userID})
		c.setConnState(Degraded)

	case EventAuthRequired:
		go c.Handshake(context.Background())

	case EventUsersOnline:
		var payload usersOnlinePayload
		if decode(ev.Data, &payload) {
			c.mu.Lock()
			c.online = payload.Users // wholesale replace, no merge
			c.mu.Unlock()
		}

	case EventReceiveMessage:
		var msg models.Message
		if !decode(ev.Data, &msg) {
			return
		}
		c.receiveMessage(msg)

	case EventUserTyping:
		var payload typingPayload
		if decode(ev.Data, &payload) && payload.UserID != c.userID {
			c.mu.Lock()
			// single slot: a second typer overwrites, never queues
			c.typing = &models.TypingEvent{
				ConversationID: payload.ConversationID,
				UserID:         payload.UserID,
				UserName:       payload.UserName,
			}
			c.mu.Unlock()
		}

	case EventUserStopTyping:
		c.mu.Lock()
		c.typing = nil
		c.mu.Unlock()
	}

	c.broadcast(ev)
}

func (c *Coordinator) receiveMessage(msg models.Message) {
	c.mu.Lock()
	if msg.ConversationID == c.currentConvID && c.currentConvID != 0 {
		c.messages = append(c.messages, msg)
	}
	for i := range c.conversations {
		if c.conversations[i].ID == msg.ConversationID {
			last := msg
			c.conversations[i].LastMessage = &last
			if msg.ConversationID != c.currentConvID {
				c.conversations[i].UnreadCount++
			}
		}
	}
	c.mu.Unlock()

	// push-driven invalidation; the periodic poll bounds staleness when the
	// push was missed entirely
	go c.refreshConversations(context.Background())
}

// LoadConversations fetches and wholesale-replaces the conversation list.
func (c *Coordinator) LoadConversations(ctx context.Context) []models.Conversation {
	c.refreshConversations(ctx)
	return c.Conversations()
}

func (c *Coordinator) refreshConversations(ctx context.Context) {
	fetched, err := c.store.Conversations(ctx)
	if err != nil {
		c.logger.Warn("conversation fetch failed", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Unread counts never silently drop below what we already know unless
	// the conversation was explicitly opened (mark-read).
	local := make(map[uint]int, len(c.conversations))
	for _, conv := range c.conversations {
		local[conv.ID] = conv.UnreadCount
	}
	for i := range fetched {
		if c.readSince[fetched[i].ID] {
			continue
		}
		if known, ok := local[fetched[i].ID]; ok && fetched[i].UnreadCount < known {
			fetched[i].UnreadCount = known
		}
	}
	c.conversations = fetched
	c.readSince = make(map[uint]bool)
}

// OpenConversation loads the message history for a conversation, joins its
// live room and marks it read.
func (c *Coordinator) OpenConversation(ctx context.Context, conversationID uint) ([]models.Message, error) {
	c.mu.Lock()
	if c.currentConvID != 0 && c.currentConvID != conversationID {
		c.notifier.Emit(EventLeaveConversation, conversationPayload{ConversationID: c.currentConvID})
	}
	c.currentConvID = conversationID
	c.loading = true
	c.mu.Unlock()

	c.notifier.Emit(EventJoinConversation, conversationPayload{ConversationID: conversationID})

	msgs, err := c.store.Messages(ctx, conversationID)

	c.mu.Lock()
	c.loading = false
	if err == nil {
		c.messages = msgs // wholesale replace
		c.readSince[conversationID] = true
		for i := range c.conversations {
			if c.conversations[i].ID == conversationID {
				c.conversations[i].UnreadCount = 0
			}
		}
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("message fetch failed", zap.Uint("conversationID", conversationID), zap.Error(err))
		return nil, err
	}

	if markErr := c.store.MarkRead(ctx, conversationID); markErr != nil {
		c.logger.Warn("mark read failed", zap.Error(markErr))
	}
	return msgs, nil
}

// StartConversation is idempotent get-or-create; the result becomes the
// current conversation.
func (c *Coordinator) StartConversation(ctx context.Context, propertyID, ownerID uint) (*models.Conversation, error) {
	conv, err := c.store.Start(ctx, propertyID, ownerID)
	if err != nil {
		return nil, err
	}
	c.refreshConversations(ctx)
	if _, openErr := c.OpenConversation(ctx, conv.ID); openErr != nil {
		return conv, nil
	}
	return conv, nil
}

// SendMessage persists over REST first — the server assigns the ID and
// timestamp — then fans the server's copy out over the socket so the peer's
// live listener appends it without polling. No client-generated message
// ever enters local state.
func (c *Coordinator) SendMessage(ctx context.Context, conversationID uint, text, messageType string) (*models.Message, error) {
	c.stopTyping()

	msg, err := c.store.Send(ctx, conversationID, text, messageType)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if conversationID == c.currentConvID {
		c.messages = append(c.messages, *msg)
	}
	for i := range c.conversations {
		if c.conversations[i].ID == conversationID {
			last := *msg
			c.conversations[i].LastMessage = &last
		}
	}
	c.mu.Unlock()

	if emitErr := c.notifier.Emit(EventSendMessage, msg); emitErr != nil {
		// notification only; the message is already durable
		c.logger.Debug("send fan-out skipped", zap.Error(emitErr))
	}
	return msg, nil
}

// ReportMessage is fire-and-forget; the caller only learns success/failure.
func (c *Coordinator) ReportMessage(ctx context.Context, messageID uint, reason string) bool {
	if err := c.store.Report(ctx, messageID, reason); err != nil {
		c.logger.Warn("report message failed", zap.Uint("messageID", messageID), zap.Error(err))
		return false
	}
	return true
}

// Keystroke drives the typing debounce: the first keystroke emits a typing
// event, further keystrokes inside the window only reset the timer, and the
// timer firing emits exactly one stop_typing.
func (c *Coordinator) Keystroke(conversationID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.typingTimer != nil && c.typingConvID != conversationID {
		// switching conversations: close out the old indicator before the
		// new one starts, and never leave the old timer armed
		c.typingTimer.Stop()
		c.typingTimer = nil
		c.notifier.Emit(EventStopTyping, typingPayload{
			ConversationID: c.typingConvID,
			UserID:         c.userID,
			UserName:       c.userName,
		})
	}

	if c.typingTimer == nil {
		c.typingConvID = conversationID
		c.notifier.Emit(EventTyping, typingPayload{
			ConversationID: conversationID,
			UserID:         c.userID,
			UserName:       c.userName,
		})
	} else {
		c.typingTimer.Stop()
	}
	c.typingTimer = time.AfterFunc(c.cfg.TypingDebounce, c.stopTyping)
}

func (c *Coordinator) stopTyping() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.typingTimer == nil {
		return
	}
	c.typingTimer.Stop()
	c.typingTimer = nil
	c.notifier.Emit(EventStopTyping, typingPayload{
		ConversationID: c.typingConvID,
		UserID:         c.userID,
		UserName:       c.userName,
	})
	c.typingConvID = 0
}

// Subscribe registers a listener for inbound events (the browser bridge).
// The returned cancel must be called on disconnect.
func (c *Coordinator) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)
	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Coordinator) broadcast(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subscribers {
		select {
		case ch <- ev:
		default:
			// slow widget, drop rather than block the read loop
		}
	}
}

func (c *Coordinator) setConnState(s ConnState) {
	c.mu.Lock()
	c.connState = s
	c.mu.Unlock()
}

func (c *Coordinator) ConnState() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connState
}

func (c *Coordinator) Conversations() []models.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Conversation, len(c.conversations))
	copy(out, c.conversations)
	return out
}

func (c *Coordinator) Messages() ([]models.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out, c.loading
}

func (c *Coordinator) Online() []uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]uint, len(c.online))
	copy(out, c.online)
	return out
}

func (c *Coordinator) Typing() *models.TypingEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.typing == nil {
		return nil
	}
	clone := *c.typing
	return &clone
}

// Close tears everything down: poll loop, typing timer, transport,
// subscribers.
func (c *Coordinator) Close() {
	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		return
	default:
	}
	close(c.done)
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
	c.connState = Disconnected
	c.mu.Unlock()

	c.notifier.Close()
}
