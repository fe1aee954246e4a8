// Package session supplies the bearer token attached to authenticated backend
// calls. Sessions are passed explicitly to every client call; nothing reads
// the token from ambient state.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type Session interface {
	// Token returns the bearer token or an error wrapping ErrUnauthenticated
	// when there is none or it has expired.
	Token(ctx context.Context) (string, error)
	// Subject names the shopper behind the token for logs and events. It is
	// read from unverified claims and must not be used to look up state.
	Subject() string
	// Fingerprint is a digest of the full token. Two sessions share a
	// fingerprint only if they carry the same token.
	Fingerprint() string
}

// Bearer is a session backed by a token supplied by the caller, usually the
// Authorization header of an incoming request.
type Bearer struct {
	token string
	now   func() time.Time
}

func NewBearer(token string) *Bearer {
	return &Bearer{token: token, now: time.Now}
}

func (b *Bearer) Token(context.Context) (string, error) {
	return check(b.token, b.now())
}

func (b *Bearer) Subject() string {
	return subjectOf(b.token)
}

func (b *Bearer) Fingerprint() string {
	return fingerprintOf(b.token)
}

// check rejects empty tokens and JWTs whose exp claim is in the past. Opaque
// tokens are passed through; the backend is the authority on those.
func check(token string, now time.Time) (string, error) {
	if token == "" {
		return "", fmt.Errorf("no token: %w", ErrUnauthenticated)
	}
	claims, ok := parseClaims(token)
	if !ok {
		return token, nil
	}
	exp, err := claims.GetExpirationTime()
	if err == nil && exp != nil && !now.Before(exp.Time) {
		return "", fmt.Errorf("token expired at %s: %w", exp.Time.Format(time.RFC3339), ErrUnauthenticated)
	}
	return token, nil
}

func parseClaims(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// subjectOf prefers the JWT sub (or id/userId) claim and falls back to a
// digest of the token so opaque tokens still get a stable key.
func subjectOf(token string) string {
	if token == "" {
		return ""
	}
	if claims, ok := parseClaims(token); ok {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			return sub
		}
		for _, key := range []string{"id", "userId", "user_id"} {
			if v, ok := claims[key].(string); ok && v != "" {
				return v
			}
		}
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

func fingerprintOf(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
