// Package cart holds the shopper's read-through copy of the server cart.
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/session"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

type Backend interface {
	GetCart(ctx context.Context, s session.Session) ([]domain.CartItem, error)
	SetQuantity(ctx context.Context, s session.Session, productID string, quantity int) ([]domain.CartItem, error)
	RemoveItem(ctx context.Context, s session.Session, productID string) ([]domain.CartItem, error)
}

// Store never patches the cart locally: every mutation adopts the cart the
// backend returns. Each round-trip takes a sequence number and only the reply
// carrying the latest issued number is applied.
type Store struct {
	backend Backend
	sess    session.Session
	log     *slog.Logger
	sfg     singleflight.Group

	mu     sync.RWMutex
	items  []domain.CartItem
	issued uint64
	frozen bool

	// freezes counts Freeze calls; a mutation whose reply lands after a
	// freeze is discarded.
	freezes uint64
}

func NewStore(b Backend, s session.Session, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{backend: b, sess: s, log: log}
}

// Load replaces the local copy with the server cart. Concurrent loads share
// one backend call.
func (s *Store) Load(ctx context.Context) ([]domain.CartItem, error) {
	if _, err := s.sess.Token(ctx); err != nil {
		return nil, err
	}

	_, err, _ := s.sfg.Do("cart", func() (interface{}, error) {
		seq := s.next()
		items, err := s.backend.GetCart(ctx, s.sess)
		if err != nil {
			return nil, err
		}
		s.apply(ctx, seq, items)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return s.Items(), nil
}

// SetQuantity sends the absolute target quantity. Quantities below 1 are
// rejected before any call is made.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) ([]domain.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	return s.mutate(ctx, func(ctx context.Context) ([]domain.CartItem, error) {
		return s.backend.SetQuantity(ctx, s.sess, productID, quantity)
	})
}

func (s *Store) RemoveItem(ctx context.Context, productID string) ([]domain.CartItem, error) {
	return s.mutate(ctx, func(ctx context.Context) ([]domain.CartItem, error) {
		return s.backend.RemoveItem(ctx, s.sess, productID)
	})
}

func (s *Store) mutate(ctx context.Context, call func(context.Context) ([]domain.CartItem, error)) ([]domain.CartItem, error) {
	if s.Frozen() {
		return nil, ErrCartLocked
	}
	if _, err := s.sess.Token(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.frozen {
		s.mu.Unlock()
		return nil, ErrCartLocked
	}
	gen := s.freezes
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	items, err := call(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.frozen || s.freezes != gen {
		s.mu.Unlock()
		s.log.WarnContext(ctx, "discarding cart reply that arrived after checkout began", "seq", seq)
		return nil, ErrCartLocked
	}
	s.mu.Unlock()

	s.apply(ctx, seq, items)
	return s.Items(), nil
}

func (s *Store) next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

func (s *Store) apply(ctx context.Context, seq uint64, items []domain.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.issued {
		s.log.DebugContext(ctx, "dropping stale cart response", "seq", seq, "latest", s.issued)
		return
	}
	s.items = items
}

// Items returns the resolved items of the local copy.
func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ValidItems(s.items)
}

// Snapshot returns a copy of every row, unresolved ones included.
func (s *Store) Snapshot() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Total(s.items)
}

func (s *Store) Count() int {
	return len(s.Items())
}

// Clear empties the local copy after a verified payment. Replies still in
// flight are dropped.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.items = nil
}

func (s *Store) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
	s.freezes++
}

func (s *Store) Thaw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = false
}

func (s *Store) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}
