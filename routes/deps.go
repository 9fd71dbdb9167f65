package routes

import (
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"ghardwar-web/api"
	"ghardwar-web/chat"
	"ghardwar-web/config"
	"ghardwar-web/services"
	"ghardwar-web/session"
)

// Package-level collaborators, wired once from main before any route runs.
var (
	cfg        *config.Config
	apiClient  *api.Client
	prefetcher *api.Prefetcher
	sessions   *session.Manager
	hub        *chat.Hub
	meta       *services.MetaService
	logger     *zap.Logger
)

func Configure(c *config.Config, client *api.Client, pf *api.Prefetcher, sm *session.Manager, h *chat.Hub, ms *services.MetaService, log *zap.Logger) {
	cfg = c
	apiClient = client
	prefetcher = pf
	sessions = sm
	hub = h
	meta = ms
	logger = log
}

const sessionKey = "session"

func currentSession(ctx iris.Context) *session.Session {
	if v := ctx.Values().Get(sessionKey); v != nil {
		return v.(*session.Session)
	}
	return nil
}

// boundClient returns the API client carrying the session's bearer token
// and the central 401 force-logout hook.
func boundClient(ctx iris.Context) *api.Client {
	sess := currentSession(ctx)
	if sess == nil || sess.AccessToken == "" {
		return apiClient
	}
	sessionID := sess.ID
	return apiClient.WithToken(sess.AccessToken, func() {
		sessions.ForceLogout(sessionID)
	})
}

func sessionTTL() time.Duration {
	return time.Duration(cfg.SessionTTLHours) * time.Hour
}
