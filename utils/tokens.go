package utils

import (
	"crypto/rand"
	"time"

	"github.com/kataras/iris/v12/middleware/jwt"
)

// SessionCookieName is the browser cookie carrying the signed session claim.
const SessionCookieName = "ghardwar_session"

// SessionClaim is the only thing the cookie carries; all session state lives
// server-side keyed by SessionID.
type SessionClaim struct {
	SessionID string `json:"sessionID"`
}

func CreateSessionCookie(secret string, sessionID string, ttl time.Duration) (string, error) {
	signer := jwt.NewSigner(jwt.HS256, secret, ttl)
	token, err := signer.Sign(SessionClaim{SessionID: sessionID})
	if err != nil {
		return "", err
	}
	return string(token), nil
}

func VerifySessionCookie(secret string, cookie string) (string, error) {
	verifier := jwt.NewVerifier(jwt.HS256, secret)
	verified, err := verifier.VerifyToken([]byte(cookie))
	if err != nil {
		return "", err
	}
	var claim SessionClaim
	if err := verified.Claims(&claim); err != nil {
		return "", err
	}
	return claim.SessionID, nil
}

// GenerateShortToken returns a URL-safe random string of the given length (bytes*2 hex).
func GenerateShortToken(n int) string {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return ""
	}
	const hex = "0123456789abcdef"
	out := make([]byte, n*2)
	for i, v := range b {
		out[i*2] = hex[v>>4]
		out[i*2+1] = hex[v&0x0f]
	}
	return string(out)
}
