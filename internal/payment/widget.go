// Package payment wraps the hosted payment widget and the server-side
// verification of its results.
package payment

import (
	"context"
	"errors"
)

var (
	ErrWidgetNotLoaded = errors.New("payment widget script not loaded")
	ErrMissingOrderID  = errors.New("payment widget needs a provider order id")
	ErrAlreadyOpen     = errors.New("payment widget already open for this order")
)

type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Options are handed to the widget constructor. Amount is in minor units.
type Options struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	OrderID     string  `json:"order_id"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Theme       string  `json:"theme,omitempty"`
	Prefill     Prefill `json:"prefill"`
	SuccessURL  string  `json:"success_url,omitempty"`
	FailureURL  string  `json:"failure_url,omitempty"`
}

// Settlement is what the provider reports once the shopper is done with the
// widget. On success the identifiers and signature are passed on untouched
// for verification; Success alone proves nothing.
type Settlement struct {
	OrderID     string `json:"order_id"`
	PaymentID   string `json:"payment_id,omitempty"`
	Signature   string `json:"signature,omitempty"`
	Success     bool   `json:"success"`
	Code        string `json:"code,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Description string `json:"description,omitempty"`
}

// Widget is the provider's client-side checkout. Open cannot be undone: once
// the widget is showing, only its settlement ends it.
type Widget interface {
	// Load fetches the provider script. Calls after a success return nil at once.
	Load(ctx context.Context) error
	// Open shows the widget and returns a channel that yields exactly one
	// settlement if the shopper completes or fails the payment.
	Open(ctx context.Context, opts Options) (<-chan Settlement, error)
}
