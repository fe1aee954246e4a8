package session

import (
	"context"
	"fmt"
	"time"
)

const TokenKey = "auth_token"

// KV is the plain key-value store the token is persisted in.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Persisted reads the token from a KV store on every call, so a logout in one
// process is seen by the next call.
type Persisted struct {
	kv  KV
	key string
	now func() time.Time
}

func NewPersisted(kv KV) *Persisted {
	return &Persisted{kv: kv, key: TokenKey, now: time.Now}
}

func (p *Persisted) Token(ctx context.Context) (string, error) {
	token, ok, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("no stored token: %w", ErrUnauthenticated)
	}
	return check(token, p.now())
}

func (p *Persisted) Subject() string {
	token, ok, err := p.kv.Get(context.Background(), p.key)
	if err != nil || !ok {
		return ""
	}
	return subjectOf(token)
}

func (p *Persisted) Fingerprint() string {
	token, ok, err := p.kv.Get(context.Background(), p.key)
	if err != nil || !ok {
		return ""
	}
	return fingerprintOf(token)
}

func (p *Persisted) Save(ctx context.Context, token string) error {
	return p.kv.Put(ctx, p.key, token)
}

func (p *Persisted) Clear(ctx context.Context) error {
	return p.kv.Delete(ctx, p.key)
}
