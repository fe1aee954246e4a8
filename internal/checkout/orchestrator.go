// Package checkout coordinates one shopper's checkout attempts: address
// selection, order-intent creation, the payment widget and verification.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/backend"
	"github.com/fjod/go_prasad/internal/payment"
	"github.com/fjod/go_prasad/internal/session"
	"github.com/google/uuid"
)

type Cart interface {
	Snapshot() []domain.CartItem
	Freeze()
	Thaw()
	Clear()
}

type AddressLoader interface {
	Load(ctx context.Context) ([]domain.Address, string)
}

type IntentCreator interface {
	CreateOrderIntent(ctx context.Context, s session.Session, req backend.CreateOrderRequest) (domain.OrderIntent, error)
}

type Verifier interface {
	Verify(ctx context.Context, s session.Session, intent domain.OrderIntent, st payment.Settlement) (domain.VerificationResult, error)
}

// EventSink receives an event for every attempt that reaches a terminal state.
type EventSink interface {
	Publish(ctx context.Context, e domain.CheckoutEvent) error
}

// PendingStore keeps the in-flight attempt so it survives the request that
// created it.
type PendingStore interface {
	SavePending(ctx context.Context, subject string, blob []byte) error
	DeletePending(ctx context.Context, subject string) error
}

type Config struct {
	PaymentKey string
	Currency   string
	StoreName  string
	Theme      string
	SuccessURL string
	FailureURL string
}

type Deps struct {
	Session   session.Session
	Cart      Cart
	Addresses AddressLoader
	Intents   IntentCreator
	Widget    payment.Widget
	Gate      Verifier
	Events    EventSink
	Pending   PendingStore
	Logger    *slog.Logger
}

type attempt struct {
	id        string
	origin    Origin
	lines     []domain.CartItem
	addresses []domain.Address
	selected  string
	addressID string
	intent    *domain.OrderIntent
	options   *payment.Options
	status    domain.CheckoutStatus
	failure   domain.FailureKind
	message   string
	detail    string
}

// Orchestrator runs at most one live attempt at a time. Transitions happen
// under mu; backend and widget calls do not. After every call the attempt id
// is checked again so a reply for a superseded attempt is dropped.
type Orchestrator struct {
	deps Deps
	cfg  Config
	log  *slog.Logger
	now  func() time.Time

	mu  sync.Mutex
	cur *attempt
}

func NewOrchestrator(deps Deps, cfg Config) *Orchestrator {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{deps: deps, cfg: cfg, log: log, now: time.Now}
}

// Begin starts an attempt. For OriginCart the items argument is ignored and
// the cart is frozen until the attempt ends.
func (o *Orchestrator) Begin(ctx context.Context, origin Origin, items []domain.CartItem) (View, error) {
	if !origin.Valid() {
		return o.View(), ErrUnknownOrigin
	}

	o.mu.Lock()
	if o.cur != nil && o.cur.status.IsLive() {
		v := o.viewLocked()
		o.mu.Unlock()
		return v, ErrCheckoutInProgress
	}

	if origin.UsesCart() {
		items = o.deps.Cart.Snapshot()
	}
	if len(items) == 0 {
		v := o.viewLocked()
		o.mu.Unlock()
		return v, ErrEmptyCart
	}

	att := &attempt{
		id:     uuid.NewString(),
		origin: origin,
		lines:  items,
		status: domain.CheckoutStatusAddressSelection,
	}
	o.cur = att
	if origin.UsesCart() {
		o.deps.Cart.Freeze()
	}
	id := att.id
	o.mu.Unlock()

	o.log.InfoContext(ctx, "checkout started", "attempt_id", id, "origin", origin)

	addresses, defaultID := o.deps.Addresses.Load(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.current(id) {
		return o.viewLocked(), ErrStaleAttempt
	}
	o.cur.addresses = addresses
	if o.cur.selected == "" {
		o.cur.selected = defaultID
	}
	return o.viewLocked(), nil
}

// SelectAddress picks the delivery address for the attempt. An id missing
// from the loaded candidates triggers one reload, for addresses added after
// Begin.
func (o *Orchestrator) SelectAddress(ctx context.Context, addressID string) (View, error) {
	o.mu.Lock()
	if o.cur == nil || o.cur.status != domain.CheckoutStatusAddressSelection {
		v := o.viewLocked()
		o.mu.Unlock()
		return v, ErrIllegalTransition
	}
	if hasAddress(o.cur.addresses, addressID) {
		o.cur.selected = addressID
		v := o.viewLocked()
		o.mu.Unlock()
		return v, nil
	}
	id := o.cur.id
	o.mu.Unlock()

	addresses, _ := o.deps.Addresses.Load(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.current(id) || o.cur.status != domain.CheckoutStatusAddressSelection {
		return o.viewLocked(), ErrStaleAttempt
	}
	o.cur.addresses = addresses
	if !hasAddress(addresses, addressID) {
		return o.viewLocked(), ErrUnknownAddress
	}
	o.cur.selected = addressID
	return o.viewLocked(), nil
}

// Confirm runs the attempt from address selection up to the open payment
// widget. Refusals come back as errors with the state unchanged; failures of
// the attempt itself come back as a FAILED view and a nil error.
func (o *Orchestrator) Confirm(ctx context.Context) (View, error) {
	o.mu.Lock()
	if o.cur == nil || o.cur.status == domain.CheckoutStatusIdle || o.cur.status.IsTerminal() {
		v := o.viewLocked()
		o.mu.Unlock()
		return v, ErrIllegalTransition
	}
	if o.cur.status != domain.CheckoutStatusAddressSelection {
		v := o.viewLocked()
		o.mu.Unlock()
		return v, ErrCheckoutInProgress
	}
	if o.cur.selected == "" {
		v := o.viewLocked()
		o.mu.Unlock()
		return v, ErrNoAddressSelected
	}

	att := o.cur
	att.addressID = att.selected
	if att.origin.UsesCart() {
		att.lines = o.deps.Cart.Snapshot()
	}
	o.transitionLocked(domain.CheckoutStatusOrderIntentCreation)

	valid := domain.ValidItems(att.lines)
	if len(valid) == 0 {
		o.failLocked(ctx, domain.FailureValidation, domain.MsgNoValidItems, "")
		v := o.viewLocked()
		o.mu.Unlock()
		return v, nil
	}
	total := domain.Total(valid)
	amount := domain.ToMinorUnits(total)
	if !total.IsPositive() || amount <= 0 {
		o.failLocked(ctx, domain.FailureValidation, domain.MsgInvalidAmount, "")
		v := o.viewLocked()
		o.mu.Unlock()
		return v, nil
	}

	id := att.id
	req := backend.CreateOrderRequest{
		Products:  domain.LineItemsFrom(valid),
		Amount:    amount,
		Currency:  o.cfg.Currency,
		AddressID: att.addressID,
	}
	o.mu.Unlock()

	intent, err := o.deps.Intents.CreateOrderIntent(ctx, o.deps.Session, req)

	o.mu.Lock()
	if !o.current(id) {
		v := o.viewLocked()
		o.mu.Unlock()
		o.log.InfoContext(ctx, "dropping order intent for superseded attempt", "attempt_id", id)
		return v, ErrStaleAttempt
	}
	if err != nil {
		kind, msg := classify(err)
		o.log.WarnContext(ctx, "order intent creation failed", "attempt_id", id, "error", err)
		o.failLocked(ctx, kind, msg, "")
		v := o.viewLocked()
		o.mu.Unlock()
		return v, nil
	}
	att.intent = &intent
	o.savePendingLocked(ctx, att, req.Products)
	o.transitionLocked(domain.CheckoutStatusPaymentWidgetLoad)
	o.mu.Unlock()

	loadErr := o.deps.Widget.Load(ctx)

	o.mu.Lock()
	if !o.current(id) {
		v := o.viewLocked()
		o.mu.Unlock()
		return v, ErrStaleAttempt
	}
	if loadErr != nil {
		o.log.WarnContext(ctx, "payment widget load failed", "attempt_id", id, "error", loadErr)
		o.failLocked(ctx, domain.FailureProvider, domain.MsgSDKUnavailable, "")
		v := o.viewLocked()
		o.mu.Unlock()
		return v, nil
	}
	opts := o.optionsLocked(att)
	o.mu.Unlock()

	settlements, openErr := o.deps.Widget.Open(ctx, opts)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.current(id) {
		return o.viewLocked(), ErrStaleAttempt
	}
	if openErr != nil {
		o.log.WarnContext(ctx, "payment widget open failed", "attempt_id", id, "error", openErr)
		o.failLocked(ctx, domain.FailureProvider, domain.MsgSDKUnavailable, "")
		return o.viewLocked(), nil
	}
	att.options = &opts
	o.transitionLocked(domain.CheckoutStatusPaymentInProgress)

	go o.watch(context.WithoutCancel(ctx), id, settlements)

	return o.viewLocked(), nil
}

func (o *Orchestrator) watch(ctx context.Context, attemptID string, settlements <-chan payment.Settlement) {
	s, ok := <-settlements
	if !ok {
		return
	}
	if _, err := o.HandleSettlement(ctx, attemptID, s); err != nil {
		o.log.InfoContext(ctx, "settlement not applied", "attempt_id", attemptID, "order_id", s.OrderID, "error", err)
	}
}

// HandleSettlement applies the widget's result to the attempt it belongs to.
// A successful settlement is only trusted after the gate verifies it.
func (o *Orchestrator) HandleSettlement(ctx context.Context, attemptID string, s payment.Settlement) (View, error) {
	o.mu.Lock()
	if !o.current(attemptID) {
		v := o.viewLocked()
		o.mu.Unlock()
		return v, ErrStaleAttempt
	}
	att := o.cur
	if att.status != domain.CheckoutStatusPaymentInProgress {
		v := o.viewLocked()
		o.mu.Unlock()
		return v, ErrIllegalTransition
	}

	if !s.Success {
		o.log.InfoContext(ctx, "payment failed at provider", "attempt_id", attemptID, "code", s.Code, "reason", s.Reason)
		msg := s.Description
		if msg == "" {
			msg = domain.MsgPaymentFailed
		}
		o.failLocked(ctx, domain.FailureProvider, msg, s.Reason)
		v := o.viewLocked()
		o.mu.Unlock()
		return v, nil
	}

	o.transitionLocked(domain.CheckoutStatusVerifying)
	intent := *att.intent
	o.mu.Unlock()

	res, err := o.deps.Gate.Verify(ctx, o.deps.Session, intent, s)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.current(attemptID) {
		o.log.WarnContext(ctx, "verification finished for superseded attempt", "attempt_id", attemptID, "success", res.Success, "payment_id", s.PaymentID)
		return o.viewLocked(), ErrStaleAttempt
	}
	if err != nil {
		o.log.ErrorContext(ctx, "payment verification call failed", "attempt_id", attemptID, "payment_id", s.PaymentID, "error", err)
		o.failLocked(ctx, domain.FailureVerification, domain.MsgVerificationFailed, "")
		return o.viewLocked(), nil
	}
	if !res.Success {
		o.log.WarnContext(ctx, "payment verification rejected", "attempt_id", attemptID, "payment_id", s.PaymentID, "message", res.Message)
		o.failLocked(ctx, domain.FailureVerification, domain.MsgVerificationFailed, res.Message)
		return o.viewLocked(), nil
	}

	if att.origin.UsesCart() {
		o.deps.Cart.Clear()
	}
	o.finishLocked(ctx, domain.CheckoutStatusCompleted, domain.FailureNone, res.Message, "")
	return o.viewLocked(), nil
}

// Reset returns to IDLE. A live attempt is abandoned first: it is failed,
// and any settlement that still arrives for it is ignored.
func (o *Orchestrator) Reset(ctx context.Context) (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur == nil {
		return o.viewLocked(), nil
	}
	if !resettable(o.cur.status) {
		return o.viewLocked(), ErrCheckoutInProgress
	}
	if o.cur.status.IsLive() {
		if f, ok := o.deps.Widget.(interface{ Forget(string) }); ok && o.cur.intent != nil {
			f.Forget(o.cur.intent.ProviderOrderID)
		}
		o.failLocked(ctx, domain.FailureProvider, domain.MsgAbandoned, "")
	}
	o.cur = nil
	return o.viewLocked(), nil
}

// resettable reports whether Reset may end an attempt in status. While a
// backend call decides the outcome (intent creation, widget load,
// verification) only its reply may end the attempt.
func resettable(status domain.CheckoutStatus) bool {
	switch status {
	case domain.CheckoutStatusOrderIntentCreation,
		domain.CheckoutStatusPaymentWidgetLoad,
		domain.CheckoutStatusVerifying:
		return false
	}
	return true
}

func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

func (o *Orchestrator) current(id string) bool {
	return o.cur != nil && o.cur.id == id
}

func (o *Orchestrator) transitionLocked(to domain.CheckoutStatus) {
	if !domain.CanTransitionTo(o.cur.status, to) {
		// every caller checks the state first; reaching this is a bug
		panic(ErrIllegalTransition.Error() + ": " + o.cur.status.String() + " -> " + to.String())
	}
	o.cur.status = to
}

func (o *Orchestrator) failLocked(ctx context.Context, kind domain.FailureKind, msg, detail string) {
	o.finishLocked(ctx, domain.CheckoutStatusFailed, kind, msg, detail)
}

func (o *Orchestrator) finishLocked(ctx context.Context, status domain.CheckoutStatus, kind domain.FailureKind, msg, detail string) {
	att := o.cur
	o.transitionLocked(status)
	att.failure = kind
	att.message = msg
	att.detail = detail

	if att.origin.UsesCart() {
		o.deps.Cart.Thaw()
	}

	o.log.InfoContext(ctx, "checkout finished", "attempt_id", att.id, "status", status, "failure", kind, "message", msg)

	subject := o.deps.Session.Subject()
	// only attempts the backend accepted a token for have a pending blob
	if o.deps.Pending != nil && att.intent != nil {
		if err := o.deps.Pending.DeletePending(ctx, subject); err != nil {
			o.log.WarnContext(ctx, "failed to delete pending checkout", "attempt_id", att.id, "error", err)
		}
	}
	if o.deps.Events != nil {
		if err := o.deps.Events.Publish(ctx, o.eventLocked(subject)); err != nil {
			o.log.ErrorContext(ctx, "failed to publish checkout event", "attempt_id", att.id, "error", err)
		}
	}
}

func (o *Orchestrator) eventLocked(subject string) domain.CheckoutEvent {
	att := o.cur
	e := domain.CheckoutEvent{
		ID:         uuid.NewString(),
		AttemptID:  att.id,
		Subject:    subject,
		Origin:     string(att.origin),
		Status:     att.status,
		Failure:    att.failure,
		Message:    att.message,
		Currency:   o.cfg.Currency,
		OccurredAt: o.now().UTC(),
	}
	if att.intent != nil {
		e.LocalOrderID = att.intent.LocalOrderID
		e.ProviderOrderID = att.intent.ProviderOrderID
		e.Amount = att.intent.Amount
		e.Currency = att.intent.Currency
	}
	return e
}

type pendingCheckout struct {
	AttemptID string             `json:"attempt_id"`
	Origin    Origin             `json:"origin"`
	AddressID string             `json:"address_id"`
	Intent    domain.OrderIntent `json:"intent"`
	Lines     []domain.LineItem  `json:"lines"`
	CreatedAt time.Time          `json:"created_at"`
}

func (o *Orchestrator) savePendingLocked(ctx context.Context, att *attempt, lines []domain.LineItem) {
	if o.deps.Pending == nil {
		return
	}
	blob, err := json.Marshal(pendingCheckout{
		AttemptID: att.id,
		Origin:    att.origin,
		AddressID: att.addressID,
		Intent:    *att.intent,
		Lines:     lines,
		CreatedAt: o.now().UTC(),
	})
	if err != nil {
		o.log.WarnContext(ctx, "failed to marshal pending checkout", "attempt_id", att.id, "error", err)
		return
	}
	if err := o.deps.Pending.SavePending(ctx, o.deps.Session.Subject(), blob); err != nil {
		o.log.WarnContext(ctx, "failed to save pending checkout", "attempt_id", att.id, "error", err)
	}
}

func (o *Orchestrator) optionsLocked(att *attempt) payment.Options {
	opts := payment.Options{
		Key:        o.cfg.PaymentKey,
		Amount:     att.intent.Amount,
		Currency:   att.intent.Currency,
		OrderID:    att.intent.ProviderOrderID,
		Name:       o.cfg.StoreName,
		Theme:      o.cfg.Theme,
		SuccessURL: o.cfg.SuccessURL,
		FailureURL: o.cfg.FailureURL,
	}
	if att.intent.LocalOrderID != "" {
		opts.Description = "Order " + att.intent.LocalOrderID
	}
	for _, a := range att.addresses {
		if a.ID == att.addressID {
			opts.Prefill = payment.Prefill{Name: a.FullName, Contact: a.Phone}
			break
		}
	}
	return opts
}

// classify maps an order-intent error to a failure kind and the message the
// shopper sees.
func classify(err error) (domain.FailureKind, string) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrUnauthenticated):
		return domain.FailureUnauthenticated, domain.MsgSessionExpired
	case errors.As(err, &apiErr) && apiErr.Status < 500 && apiErr.Message != "":
		return domain.FailureValidation, apiErr.Message
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return domain.FailureTransport, apiErr.Message
	default:
		return domain.FailureTransport, domain.MsgConnectivity
	}
}

func hasAddress(addresses []domain.Address, id string) bool {
	for _, a := range addresses {
		if a.ID == id {
			return true
		}
	}
	return false
}
