package routes

import (
	"github.com/kataras/iris/v12"

	"ghardwar-web/session"
	"ghardwar-web/utils"
)

// SessionMiddleware resolves (or creates) the browser session from the
// signed cookie and stashes it in the request context.
func SessionMiddleware(ctx iris.Context) {
	var sess *session.Session

	if cookie := ctx.GetCookie(utils.SessionCookieName); cookie != "" {
		if id, err := utils.VerifySessionCookie(cfg.SessionSecret, cookie); err == nil {
			if loaded, err := sessions.Get(ctx.Request().Context(), id); err == nil {
				sess = loaded
			}
		}
	}

	if sess == nil {
		created, err := sessions.Begin(ctx.Request().Context())
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		sess = created

		if err := issueSessionCookie(ctx, sess); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.Values().Set(sessionKey, sess)
	ctx.ViewData("session", sess)
	ctx.Next()
}

// issueSessionCookie signs the session ID and (re)sets the browser cookie.
// Called on session creation and again whenever the ID rotates at login.
func issueSessionCookie(ctx iris.Context, sess *session.Session) error {
	signed, err := utils.CreateSessionCookie(cfg.SessionSecret, sess.ID, sessionTTL())
	if err != nil {
		return err
	}
	ctx.SetCookieKV(utils.SessionCookieName, signed,
		iris.CookieHTTPOnly(true),
		iris.CookiePath("/"),
		iris.CookieExpires(sessionTTL()))
	return nil
}

// RequireAuth redirects anonymous visitors to the login page.
func RequireAuth(ctx iris.Context) {
	sess := currentSession(ctx)
	if sess == nil || !sess.IsAuthenticated() {
		ctx.Redirect("/login?next="+ctx.Path(), iris.StatusSeeOther)
		return
	}
	ctx.Next()
}
