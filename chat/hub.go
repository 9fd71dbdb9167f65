package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ghardwar-web/api"
	"ghardwar-web/session"
)

// Hub owns one coordinator per authenticated browser session. It keys the
// connection lifecycle off auth state changes: login opens the transport,
// logout (or a forced 401 logout) tears it down.
type Hub struct {
	socketURL string
	apiClient *api.Client
	sessions  *session.Manager
	cfg       Config
	logger    *zap.Logger

	mu     sync.Mutex
	coords map[string]*Coordinator
}

func NewHub(socketURL string, apiClient *api.Client, cfg Config, logger *zap.Logger) *Hub {
	return &Hub{
		socketURL: socketURL,
		apiClient: apiClient,
		cfg:       cfg,
		logger:    logger,
		coords:    make(map[string]*Coordinator),
	}
}

// Bind subscribes the hub to session transitions.
func (h *Hub) Bind(sessions *session.Manager) {
	h.sessions = sessions
	sessions.OnChange(h.onSessionChange)
}

func (h *Hub) onSessionChange(sess *session.Session) {
	if sess.IsAuthenticated() {
		h.ensure(sess)
		return
	}
	h.drop(sess.ID)
}

// EnsureSession lazily starts the coordinator for an authenticated session
// that was restored from the store (e.g. after a server restart, where no
// login transition fires).
func (h *Hub) EnsureSession(sess *session.Session) *Coordinator {
	if !sess.IsAuthenticated() {
		return nil
	}
	h.ensure(sess)
	return h.Get(sess.ID)
}

// Get returns the coordinator for a session, nil when none is running.
func (h *Hub) Get(sessionID string) *Coordinator {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.coords[sessionID]
}

func (h *Hub) ensure(sess *session.Session) {
	h.mu.Lock()
	if _, ok := h.coords[sess.ID]; ok {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	sessionID := sess.ID
	bound := h.apiClient.WithToken(sess.AccessToken, func() {
		if h.sessions != nil {
			h.sessions.ForceLogout(sessionID)
		}
	})

	transport := NewTransport(h.socketURL, h.logger)
	coord := NewCoordinator(sess.User.ID, sess.User.DisplayName(),
		NewRESTStore(bound), transport, h.cfg, h.logger)
	transport.OnConnect(func() { coord.Handshake(context.Background()) })
	transport.OnEvent(coord.HandleEvent)

	h.mu.Lock()
	if _, ok := h.coords[sessionID]; ok {
		h.mu.Unlock()
		transport.Close()
		return
	}
	h.coords[sessionID] = coord
	h.mu.Unlock()

	go transport.Run()
	coord.Start(context.Background())
	h.logger.Info("chat coordinator started",
		zap.String("sessionID", sessionID), zap.Uint("userID", sess.User.ID))
}

func (h *Hub) drop(sessionID string) {
	h.mu.Lock()
	coord, ok := h.coords[sessionID]
	if ok {
		delete(h.coords, sessionID)
	}
	h.mu.Unlock()
	if ok {
		coord.Close()
		h.logger.Info("chat coordinator stopped", zap.String("sessionID", sessionID))
	}
}

// Shutdown closes every coordinator (server stop).
func (h *Hub) Shutdown() {
	h.mu.Lock()
	coords := make([]*Coordinator, 0, len(h.coords))
	for id, coord := range h.coords {
		coords = append(coords, coord)
		delete(h.coords, id)
	}
	h.mu.Unlock()
	for _, coord := range coords {
		coord.Close()
	}
}
