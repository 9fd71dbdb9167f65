package chat

import "encoding/json"

// Event is the envelope both directions of the live socket speak:
// a name plus a JSON payload.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Outbound event names.
const (
	EventAuthenticate      = "authenticate"
	EventIdentify          = "identify" // legacy low-trust fallback, see coordinator
	EventJoinConversation  = "join_conversation"
	EventLeaveConversation = "leave_conversation"
	EventTyping            = "typing"
	EventStopTyping        = "stop_typing"
	EventSendMessage       = "send_message"
)

// Inbound event names.
const (
	EventAuthenticated  = "authenticated"
	EventAuthError      = "auth_error"
	EventAuthRequired   = "auth_required"
	EventUsersOnline    = "users_online"
	EventReceiveMessage = "receive_message"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
)

func NewEvent(name string, payload interface{}) Event {
	ev := Event{Name: name}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err == nil {
			ev.Data = data
		}
	}
	return ev
}

type authenticatePayload struct {
	Token string `json:"token"`
}

type identifyPayload struct {
	UserID uint `json:"userID"`
}

type conversationPayload struct {
	ConversationID uint `json:"conversationID"`
}

type typingPayload struct {
	ConversationID uint   `json:"conversationID"`
	UserID         uint   `json:"userID"`
	UserName       string `json:"userName"`
}

type authResultPayload struct {
	UserID  uint   `json:"userID"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type usersOnlinePayload struct {
	Users []uint `json:"users"`
}
