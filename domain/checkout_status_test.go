package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to CheckoutStatus
		want     bool
	}{
		{CheckoutStatusIdle, CheckoutStatusAddressSelection, true},
		{CheckoutStatusIdle, CheckoutStatusOrderIntentCreation, false},
		{CheckoutStatusAddressSelection, CheckoutStatusOrderIntentCreation, true},
		{CheckoutStatusAddressSelection, CheckoutStatusPaymentWidgetLoad, false},
		{CheckoutStatusOrderIntentCreation, CheckoutStatusPaymentWidgetLoad, true},
		{CheckoutStatusOrderIntentCreation, CheckoutStatusFailed, true},
		{CheckoutStatusPaymentWidgetLoad, CheckoutStatusPaymentInProgress, true},
		{CheckoutStatusPaymentInProgress, CheckoutStatusVerifying, true},
		{CheckoutStatusPaymentInProgress, CheckoutStatusCompleted, false},
		{CheckoutStatusPaymentInProgress, CheckoutStatusFailed, true},
		{CheckoutStatusVerifying, CheckoutStatusCompleted, true},
		{CheckoutStatusVerifying, CheckoutStatusFailed, true},
		{CheckoutStatusCompleted, CheckoutStatusIdle, true},
		{CheckoutStatusCompleted, CheckoutStatusFailed, false},
		{CheckoutStatusFailed, CheckoutStatusIdle, true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionTo(tt.from, tt.to))
		})
	}
}

func TestIsLive(t *testing.T) {
	assert.False(t, CheckoutStatusIdle.IsLive())
	assert.True(t, CheckoutStatusAddressSelection.IsLive())
	assert.True(t, CheckoutStatusPaymentInProgress.IsLive())
	assert.False(t, CheckoutStatusCompleted.IsLive())
	assert.False(t, CheckoutStatusFailed.IsLive())
	assert.True(t, CheckoutStatusFailed.IsTerminal())
}
