package shopper

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/backend"
	"github.com/fjod/go_prasad/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	tokens []string
}

func (b *stubBackend) GetCart(ctx context.Context, s session.Session) ([]domain.CartItem, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	b.tokens = append(b.tokens, tok)
	return nil, nil
}

func (b *stubBackend) SetQuantity(context.Context, session.Session, string, int) ([]domain.CartItem, error) {
	return nil, nil
}

func (b *stubBackend) RemoveItem(context.Context, session.Session, string) ([]domain.CartItem, error) {
	return nil, nil
}

func (b *stubBackend) GetProfile(context.Context, session.Session) (*backend.Profile, error) {
	return &backend.Profile{}, nil
}

func (b *stubBackend) AddAddress(context.Context, session.Session, domain.Address) error {
	return nil
}

func (b *stubBackend) UpdateAddress(context.Context, session.Session, string, domain.Address) error {
	return nil
}

func (b *stubBackend) DeleteAddress(context.Context, session.Session, string) ([]domain.Address, error) {
	return nil, nil
}

func (b *stubBackend) CreateOrderIntent(context.Context, session.Session, backend.CreateOrderRequest) (domain.OrderIntent, error) {
	return domain.OrderIntent{}, nil
}

type subjectSession struct {
	token, subject string
}

func (s subjectSession) Token(context.Context) (string, error) { return s.token, nil }
func (s subjectSession) Subject() string                       { return s.subject }
func (s subjectSession) Fingerprint() string                   { return "fp-" + s.token }

func TestFor_SameTokenSameShopper(t *testing.T) {
	reg := NewRegistry(Options{Backend: &stubBackend{}})

	a := reg.For(subjectSession{token: "t1", subject: "u1"})
	b := reg.For(subjectSession{token: "t1", subject: "u1"})

	assert.Same(t, a, b)
	assert.Equal(t, 1, reg.Len())
}

func TestFor_SameSubjectOtherTokenIsolated(t *testing.T) {
	b := &stubBackend{}
	reg := NewRegistry(Options{Backend: b})

	owner := reg.For(subjectSession{token: "owner", subject: "u1"})
	other := reg.For(subjectSession{token: "forged", subject: "u1"})

	assert.NotSame(t, owner, other)
	assert.Equal(t, 2, reg.Len())

	_, err := owner.Cart.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, b.tokens)
}

func TestSweep_RemovesIdleShoppers(t *testing.T) {
	reg := NewRegistry(Options{Backend: &stubBackend{}})
	now := time.Now()
	reg.now = func() time.Time { return now }

	reg.For(subjectSession{token: "t1", subject: "u1"})
	now = now.Add(time.Hour)
	reg.For(subjectSession{token: "t2", subject: "u2"})

	removed := reg.Sweep(30 * time.Minute)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, reg.Len())
}
