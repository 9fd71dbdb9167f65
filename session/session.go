package session

import (
	"time"

	"ghardwar-web/models"
	"ghardwar-web/utils"
)

// State of the login flow. A session is in exactly one state; every
// transition clears the artifacts of the state it leaves.
type State string

const (
	Unauthenticated        State = "unauthenticated"
	AwaitingMFA            State = "awaiting_mfa"
	AwaitingPasswordChange State = "awaiting_password_change"
	Authenticated          State = "authenticated"
)

// Session is the server-side record behind one browser session cookie.
type Session struct {
	ID    string `json:"ID"`
	State State  `json:"state"`

	User        *models.User `json:"user,omitempty"`
	AccessToken string       `json:"accessToken,omitempty"`

	// PendingTicket identifies a half-open login attempt (MFA or forced
	// password change) on the backend. Only set in the pending states.
	PendingTicket string `json:"pendingTicket,omitempty"`
	PendingEmail  string `json:"pendingEmail,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func newSession() *Session {
	return &Session{
		ID:        utils.GenerateShortToken(16),
		State:     Unauthenticated,
		CreatedAt: time.Now(),
	}
}

func (s *Session) IsAuthenticated() bool { return s.State == Authenticated }

// reset drops everything but the identity of the browser session.
func (s *Session) reset() {
	s.State = Unauthenticated
	s.User = nil
	s.AccessToken = ""
	s.PendingTicket = ""
	s.PendingEmail = ""
}
