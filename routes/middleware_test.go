package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"ghardwar-web/api"
	"ghardwar-web/config"
	"ghardwar-web/models"
	"ghardwar-web/session"
	"ghardwar-web/utils"
)

// buildTestApp wires a minimal Iris app with the session middleware, an
// in-memory session store and one protected route.
func buildTestApp(t *testing.T) (*iris.Application, *session.Manager) {
	t.Helper()
	testCfg := &config.Config{
		Env:             "test",
		SessionSecret:   "testsecret",
		SessionTTLHours: 24,
	}
	sm := session.NewManager(api.NewClient("http://127.0.0.1:1", zap.NewNop()), session.NewMemoryStore(), zap.NewNop())
	Configure(testCfg, nil, nil, sm, nil, nil, zap.NewNop())

	app := iris.New()
	app.Use(SessionMiddleware)
	app.Get("/public", func(ctx iris.Context) {
		sess := currentSession(ctx)
		if sess == nil {
			ctx.StatusCode(iris.StatusInternalServerError)
			return
		}
		ctx.WriteString(string(sess.State))
	})
	app.Get("/account", RequireAuth, func(ctx iris.Context) {
		ctx.WriteString("secret")
	})
	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app, sm
}

func TestSessionMiddlewareCreatesSession(t *testing.T) {
	app, _ := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Body.String(); got != string(session.Unauthenticated) {
		t.Fatalf("fresh session state = %q", got)
	}

	var sessionCookie *http.Cookie
	for _, c := range resp.Result().Cookies() {
		if c.Name == utils.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("no session cookie was set")
	}
	if !sessionCookie.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}
}

func TestSessionMiddlewareReusesCookie(t *testing.T) {
	app, _ := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	cookies := resp.Result().Cookies()

	// second request with the cookie: no new one is issued
	req2 := httptest.NewRequest(http.MethodGet, "/public", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)

	for _, c := range resp2.Result().Cookies() {
		if c.Name == utils.SessionCookieName {
			t.Fatal("a valid cookie should not be replaced")
		}
	}
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	app, _ := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.Code)
	}
	loc := resp.Header().Get("Location")
	if !strings.HasPrefix(loc, "/login?next=") {
		t.Fatalf("redirect location = %q", loc)
	}
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	app, sm := buildTestApp(t)

	sess, err := sm.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin session: %v", err)
	}
	err = sm.Adopt(context.Background(), sess, &api.LoginResult{
		User:        &models.User{ID: 1, FirstName: "Asha", LastName: "Rao"},
		AccessToken: "tok",
	})
	if err != nil {
		t.Fatalf("adopt: %v", err)
	}

	signed, err := utils.CreateSessionCookie("testsecret", sess.ID, sessionTTL())
	if err != nil {
		t.Fatalf("sign cookie: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	req.AddCookie(&http.Cookie{Name: utils.SessionCookieName, Value: signed})
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != "secret" {
		t.Fatalf("body = %q", resp.Body.String())
	}
}

func TestTamperedCookieYieldsFreshSession(t *testing.T) {
	app, _ := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.AddCookie(&http.Cookie{Name: utils.SessionCookieName, Value: "tampered.jwt.value"})
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	// a fresh cookie replaces the bad one
	replaced := false
	for _, c := range resp.Result().Cookies() {
		if c.Name == utils.SessionCookieName && c.Value != "tampered.jwt.value" {
			replaced = true
		}
	}
	if !replaced {
		t.Fatal("tampered cookie was not replaced")
	}
}
