package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/backend"
	"github.com/fjod/go_prasad/internal/payment"
	"github.com/fjod/go_prasad/internal/session"
	"github.com/shopspring/decimal"
)

type fakeCart struct {
	mu      sync.Mutex
	items   []domain.CartItem
	frozen  bool
	cleared bool
}

func (c *fakeCart) Snapshot() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *fakeCart) Freeze() { c.mu.Lock(); c.frozen = true; c.mu.Unlock() }
func (c *fakeCart) Thaw()   { c.mu.Lock(); c.frozen = false; c.mu.Unlock() }

func (c *fakeCart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.cleared = true
}

func (c *fakeCart) isFrozen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frozen
}

func (c *fakeCart) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(domain.ValidItems(c.items))
}

type fakeAddresses struct {
	mu   sync.Mutex
	list []domain.Address
}

func (a *fakeAddresses) Load(context.Context) ([]domain.Address, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.list, domain.DefaultAddressID(a.list)
}

type fakeIntents struct {
	mu    sync.Mutex
	fn    func(req backend.CreateOrderRequest) (domain.OrderIntent, error)
	calls []backend.CreateOrderRequest
}

func (f *fakeIntents) CreateOrderIntent(_ context.Context, _ session.Session, req backend.CreateOrderRequest) (domain.OrderIntent, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	fn := f.fn
	f.mu.Unlock()
	return fn(req)
}

func (f *fakeIntents) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeWidget struct {
	mu      sync.Mutex
	loadErr error
	openErr error
	opened  []payment.Options
	chans   map[string]chan payment.Settlement
}

func (w *fakeWidget) Load(context.Context) error {
	return w.loadErr
}

func (w *fakeWidget) Open(_ context.Context, opts payment.Options) (<-chan payment.Settlement, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.openErr != nil {
		return nil, w.openErr
	}
	if w.chans == nil {
		w.chans = make(map[string]chan payment.Settlement)
	}
	ch := make(chan payment.Settlement, 1)
	w.chans[opts.OrderID] = ch
	w.opened = append(w.opened, opts)
	return ch, nil
}

func (w *fakeWidget) settle(s payment.Settlement) {
	w.mu.Lock()
	ch := w.chans[s.OrderID]
	w.mu.Unlock()
	ch <- s
}

type fakeGate struct {
	mu     sync.Mutex
	result domain.VerificationResult
	err    error
	calls  int

	// when release is set, Verify signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func (g *fakeGate) Verify(context.Context, session.Session, domain.OrderIntent, payment.Settlement) (domain.VerificationResult, error) {
	g.mu.Lock()
	g.calls++
	entered, release := g.entered, g.release
	g.mu.Unlock()
	if release != nil {
		close(entered)
		<-release
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result, g.err
}

func (g *fakeGate) hold() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entered = make(chan struct{})
	g.release = make(chan struct{})
}

func (g *fakeGate) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeSink struct {
	mu     sync.Mutex
	events []domain.CheckoutEvent
}

func (s *fakeSink) Publish(_ context.Context, e domain.CheckoutEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *fakeSink) all() []domain.CheckoutEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CheckoutEvent(nil), s.events...)
}

type fakePending struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (p *fakePending) SavePending(_ context.Context, subject string, blob []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.blobs == nil {
		p.blobs = make(map[string][]byte)
	}
	p.blobs[subject] = blob
	return nil
}

func (p *fakePending) DeletePending(_ context.Context, subject string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.blobs, subject)
	return nil
}

func (p *fakePending) get(subject string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.blobs[subject]
	return b, ok
}

func product(id string, unit int64, discounted int64) *domain.Product {
	p := &domain.Product{ID: id, Name: "Prasad " + id, UnitPrice: decimal.NewFromInt(unit)}
	if discounted > 0 {
		d := decimal.NewFromInt(discounted)
		p.DiscountedPrice = &d
	}
	return p
}

func okIntent(req backend.CreateOrderRequest) (domain.OrderIntent, error) {
	return domain.OrderIntent{
		LocalOrderID:    "ord_local_1",
		Amount:          req.Amount,
		Currency:        req.Currency,
		ProviderOrderID: "order_rzp_1",
	}, nil
}
