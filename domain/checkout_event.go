package domain

import "time"

// CheckoutEvent is emitted when a checkout attempt reaches a terminal state.
type CheckoutEvent struct {
	ID              string         `json:"id"`
	AttemptID       string         `json:"attempt_id"`
	Subject         string         `json:"subject"`
	Origin          string         `json:"origin"`
	Status          CheckoutStatus `json:"status"`
	Failure         FailureKind    `json:"failure,omitempty"`
	Message         string         `json:"message,omitempty"`
	LocalOrderID    string         `json:"local_order_id,omitempty"`
	ProviderOrderID string         `json:"provider_order_id,omitempty"`
	Amount          int64          `json:"amount"`
	Currency        string         `json:"currency"`
	OccurredAt      time.Time      `json:"occurred_at"`
}

func (e CheckoutEvent) Type() string {
	if e.Status == CheckoutStatusCompleted {
		return "CheckoutCompleted"
	}
	return "CheckoutFailed"
}
