package checkout

import (
	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/payment"
)

// View is a read-only copy of the checkout state for the UI.
type View struct {
	AttemptID         string                `json:"attempt_id,omitempty"`
	Origin            Origin                `json:"origin,omitempty"`
	Status            domain.CheckoutStatus `json:"status"`
	Failure           domain.FailureKind    `json:"failure,omitempty"`
	Message           string                `json:"message,omitempty"`
	Detail            string                `json:"detail,omitempty"`
	Addresses         []domain.Address      `json:"addresses,omitempty"`
	SelectedAddressID string                `json:"selected_address_id,omitempty"`
	CanConfirm        bool                  `json:"can_confirm"`
	Intent            *domain.OrderIntent   `json:"intent,omitempty"`
	Payment           *payment.Options      `json:"payment,omitempty"`
}

func (o *Orchestrator) viewLocked() View {
	if o.cur == nil {
		return View{Status: domain.CheckoutStatusIdle}
	}
	att := o.cur
	v := View{
		AttemptID:         att.id,
		Origin:            att.origin,
		Status:            att.status,
		Failure:           att.failure,
		Message:           att.message,
		Detail:            att.detail,
		SelectedAddressID: att.selected,
		CanConfirm:        att.status == domain.CheckoutStatusAddressSelection && att.selected != "",
	}
	if len(att.addresses) > 0 {
		v.Addresses = make([]domain.Address, len(att.addresses))
		copy(v.Addresses, att.addresses)
	}
	if att.intent != nil {
		intent := *att.intent
		v.Intent = &intent
	}
	if att.options != nil && att.status == domain.CheckoutStatusPaymentInProgress {
		opts := *att.options
		v.Payment = &opts
	}
	return v
}
