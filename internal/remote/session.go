package remote

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the session credential attached to sync calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type ctxKey string

const sessionTokenKey ctxKey = "session_token"

// WithSessionToken stores the caller's raw bearer token; the auth middleware
// puts it there after verifying the request.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey, token)
}

// SessionTokenFrom returns the raw token carried by the context, if any.
func SessionTokenFrom(ctx context.Context) string {
	if v, ok := ctx.Value(sessionTokenKey).(string); ok {
		return v
	}
	return ""
}

// ContextTokenSource reads the session token from the request context and
// preflights its expiry, so an expired login fails fast as "remote cart
// unavailable" instead of burning a round trip on a 401.
type ContextTokenSource struct{}

func (ContextTokenSource) Token(ctx context.Context) (string, error) {
	raw := strings.TrimSpace(SessionTokenFrom(ctx))
	if raw == "" {
		return "", ErrNoSession
	}

	// The backend owns signature verification; here we only look at the
	// expiry claim, so an unverified parse is enough.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", ErrNoSession
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return "", ErrNoSession
	}
	if exp != nil && exp.Before(time.Now()) {
		return "", ErrSessionExpired
	}

	return raw, nil
}

// StaticTokenSource returns the same token on every call; used in tests and
// by the slot maintenance tool.
type StaticTokenSource string

func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrNoSession
	}
	return string(s), nil
}
