package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the backend's session cookie.
const SessionCookie = "token"

// Claims is what the client can read out of its own session token. The
// token is verified server-side on every call; the client only peeks at the
// claims to show who is signed in and when the session lapses.
type Claims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

var ErrNoToken = errors.New("no session token")

// PeekClaims decodes a session JWT without verifying its signature. The
// client does not hold the signing secret, so the result is advisory only
// and never a substitute for the server's 401/403 answers.
func PeekClaims(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, ErrNoToken
	}

	var mc jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &mc); err != nil {
		return Claims{}, err
	}

	var claims Claims
	if sub, _ := mc["user_id"].(string); sub != "" {
		claims.UserID = sub
	} else if sub, err := mc.GetSubject(); err == nil {
		claims.UserID = sub
	}
	claims.Email, _ = mc["email"].(string)
	claims.Role, _ = mc["role"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// Expired reports whether the token's expiry has passed. A token without an
// expiry claim never reports expired.
func (c Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(time.Now())
}
