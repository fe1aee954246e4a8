package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle                CheckoutStatus = "IDLE"
	CheckoutStatusAddressSelection    CheckoutStatus = "ADDRESS_SELECTION"
	CheckoutStatusOrderIntentCreation CheckoutStatus = "ORDER_INTENT_CREATION"
	CheckoutStatusPaymentWidgetLoad   CheckoutStatus = "PAYMENT_WIDGET_LOAD"
	CheckoutStatusPaymentInProgress   CheckoutStatus = "PAYMENT_IN_PROGRESS"
	CheckoutStatusVerifying           CheckoutStatus = "VERIFYING"
	CheckoutStatusCompleted           CheckoutStatus = "COMPLETED"
	CheckoutStatusFailed              CheckoutStatus = "FAILED"
)

var transitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:                {CheckoutStatusAddressSelection},
	CheckoutStatusAddressSelection:    {CheckoutStatusOrderIntentCreation, CheckoutStatusFailed},
	CheckoutStatusOrderIntentCreation: {CheckoutStatusPaymentWidgetLoad, CheckoutStatusFailed},
	CheckoutStatusPaymentWidgetLoad:   {CheckoutStatusPaymentInProgress, CheckoutStatusFailed},
	CheckoutStatusPaymentInProgress:   {CheckoutStatusVerifying, CheckoutStatusFailed},
	CheckoutStatusVerifying:           {CheckoutStatusCompleted, CheckoutStatusFailed},
	CheckoutStatusCompleted:           {CheckoutStatusIdle},
	CheckoutStatusFailed:              {CheckoutStatusIdle},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted || s == CheckoutStatusFailed
}

// IsLive reports whether an attempt is between Begin and a terminal state.
func (s CheckoutStatus) IsLive() bool {
	return s != CheckoutStatusIdle && !s.IsTerminal()
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
