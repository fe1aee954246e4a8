// Package shopper keeps the per-shopper client state: cart copy, address
// directory and checkout orchestrator, keyed by the token fingerprint.
package shopper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_prasad/internal/address"
	"github.com/fjod/go_prasad/internal/cart"
	"github.com/fjod/go_prasad/internal/checkout"
	"github.com/fjod/go_prasad/internal/payment"
	"github.com/fjod/go_prasad/internal/session"
)

type Backend interface {
	cart.Backend
	address.Backend
	checkout.IntentCreator
}

type Shopper struct {
	Subject   string
	Session   session.Session
	Cart      *cart.Store
	Addresses *address.Directory
	Checkout  *checkout.Orchestrator

	lastSeen time.Time
}

type Registry struct {
	backend Backend
	widget  payment.Widget
	gate    checkout.Verifier
	events  checkout.EventSink
	pending checkout.PendingStore
	cfg     checkout.Config
	log     *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	shoppers map[string]*Shopper
}

type Options struct {
	Backend Backend
	Widget  payment.Widget
	Gate    checkout.Verifier
	Events  checkout.EventSink
	Pending checkout.PendingStore
	Config  checkout.Config
	Logger  *slog.Logger
}

func NewRegistry(opts Options) *Registry {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		backend:  opts.Backend,
		widget:   opts.Widget,
		gate:     opts.Gate,
		events:   opts.Events,
		pending:  opts.Pending,
		cfg:      opts.Config,
		log:      log,
		now:      time.Now,
		shoppers: make(map[string]*Shopper),
	}
}

// For returns the shopper behind sess, creating it on first sight. A shopper
// belongs to exactly one token; a refreshed token starts a new shopper.
func (r *Registry) For(sess session.Session) *Shopper {
	key := sess.Fingerprint()

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.shoppers[key]; ok {
		s.lastSeen = r.now()
		return s
	}

	subject := sess.Subject()
	log := r.log.With("subject", subject)
	s := &Shopper{
		Subject:   subject,
		Session:   sess,
		Cart:      cart.NewStore(r.backend, sess, log),
		Addresses: address.NewDirectory(r.backend, sess, log),
		lastSeen:  r.now(),
	}
	s.Checkout = checkout.NewOrchestrator(checkout.Deps{
		Session:   sess,
		Cart:      s.Cart,
		Addresses: s.Addresses,
		Intents:   r.backend,
		Widget:    r.widget,
		Gate:      r.gate,
		Events:    r.events,
		Pending:   r.pending,
		Logger:    log,
	}, r.cfg)
	r.shoppers[key] = s
	return s
}

// Sweep drops shoppers not seen for idle whose checkout is not in flight.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, s := range r.shoppers {
		if s.lastSeen.After(cutoff) || s.Checkout.View().Status.IsLive() {
			continue
		}
		delete(r.shoppers, key)
		removed++
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shoppers)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.log.InfoContext(ctx, "swept idle shoppers", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
