package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"ghardwar-web/api"
	"ghardwar-web/utils"
)

var (
	ErrNoPendingMFA            = errors.New("session: no MFA verification pending")
	ErrNoPendingPasswordChange = errors.New("session: no password change pending")
)

// Manager runs the login state machine and owns session persistence.
// Dependent components (the chat hub) subscribe to state changes instead of
// polling; the API client's 401 hook routes through ForceLogout so an
// expired backend token always tears the session down centrally.
type Manager struct {
	api    *api.Client
	store  Store
	logger *zap.Logger

	mu          sync.RWMutex
	subscribers []func(*Session)
}

func NewManager(apiClient *api.Client, store Store, logger *zap.Logger) *Manager {
	return &Manager{api: apiClient, store: store, logger: logger}
}

// OnChange registers a callback invoked after every state transition.
func (m *Manager) OnChange(fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

func (m *Manager) notify(sess *Session) {
	m.mu.RLock()
	subs := make([]func(*Session), len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.RUnlock()
	for _, fn := range subs {
		fn(sess)
	}
}

// Begin creates and persists a fresh unauthenticated session.
func (m *Manager) Begin(ctx context.Context) (*Session, error) {
	sess := newSession()
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Login submits credentials. Outcomes: Authenticated, AwaitingMFA,
// AwaitingPasswordChange, or an error with no transition. A blocked account
// surfaces as *api.BlockedError so the UI can render "contact support"
// instead of "try again".
func (m *Manager) Login(ctx context.Context, sess *Session, email, password string) error {
	result, err := m.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	switch {
	case result.MFARequired:
		sess.reset()
		sess.State = AwaitingMFA
		sess.PendingTicket = result.PendingTicket
		sess.PendingEmail = email
	case result.PasswordChangeRequired:
		sess.reset()
		sess.State = AwaitingPasswordChange
		sess.PendingTicket = result.PendingTicket
		sess.PendingEmail = email
	default:
		m.authenticate(ctx, sess, result)
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return err
	}
	m.notify(sess)
	return nil
}

// VerifyMFA completes a pending MFA challenge. On failure the session stays
// in AwaitingMFA and the error goes back to the caller.
func (m *Manager) VerifyMFA(ctx context.Context, sess *Session, code string) error {
	if sess.State != AwaitingMFA {
		return ErrNoPendingMFA
	}
	result, err := m.api.VerifyMFA(ctx, sess.PendingTicket, code)
	if err != nil {
		return err
	}
	m.authenticate(ctx, sess, result)
	if err := m.store.Save(ctx, sess); err != nil {
		return err
	}
	m.notify(sess)
	return nil
}

// CompletePasswordChange finishes a forced password change.
func (m *Manager) CompletePasswordChange(ctx context.Context, sess *Session, newPassword string) error {
	if sess.State != AwaitingPasswordChange {
		return ErrNoPendingPasswordChange
	}
	result, err := m.api.CompleteForcedPasswordChange(ctx, sess.PendingTicket, newPassword)
	if err != nil {
		return err
	}
	m.authenticate(ctx, sess, result)
	if err := m.store.Save(ctx, sess); err != nil {
		return err
	}
	m.notify(sess)
	return nil
}

// Adopt installs an already-authenticated login result (registration, OTP
// verification) into the session.
func (m *Manager) Adopt(ctx context.Context, sess *Session, result *api.LoginResult) error {
	m.authenticate(ctx, sess, result)
	if err := m.store.Save(ctx, sess); err != nil {
		return err
	}
	m.notify(sess)
	return nil
}

// Cancel abandons a pending MFA or password-change flow. No pending
// artifacts survive.
func (m *Manager) Cancel(ctx context.Context, sess *Session) error {
	if sess.State != AwaitingMFA && sess.State != AwaitingPasswordChange {
		return nil
	}
	sess.reset()
	if err := m.store.Save(ctx, sess); err != nil {
		return err
	}
	m.notify(sess)
	return nil
}

func (m *Manager) Logout(ctx context.Context, sess *Session) error {
	sess.reset()
	if err := m.store.Save(ctx, sess); err != nil {
		return err
	}
	m.notify(sess)
	return nil
}

// ForceLogout handles a backend 401 for the given session.
func (m *Manager) ForceLogout(sessionID string) {
	ctx := context.Background()
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return
	}
	if sess.State == Unauthenticated {
		return
	}
	m.logger.Warn("backend rejected session token, forcing logout",
		zap.String("sessionID", sessionID))
	sess.reset()
	if err := m.store.Save(ctx, sess); err != nil {
		m.logger.Error("force logout save failed", zap.Error(err))
		return
	}
	m.notify(sess)
}

// authenticate installs the login result and rotates the session ID so a
// cookie captured before login cannot ride the privilege elevation. The old
// store record is dropped; callers must re-issue the cookie when the ID
// changed.
func (m *Manager) authenticate(ctx context.Context, sess *Session, result *api.LoginResult) {
	oldID := sess.ID
	sess.reset()
	sess.ID = utils.GenerateShortToken(16)
	sess.State = Authenticated
	sess.User = result.User
	sess.AccessToken = result.AccessToken
	if err := m.store.Delete(ctx, oldID); err != nil {
		m.logger.Warn("pre-login session cleanup failed", zap.Error(err))
	}
}
