package payment

import (
	"context"
	"errors"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/backend"
	"github.com/fjod/go_prasad/internal/session"
)

var ErrNotSettled = errors.New("only successful settlements can be verified")

type Verifier interface {
	VerifyPayment(ctx context.Context, s session.Session, req backend.VerifyRequest) (domain.VerificationResult, error)
}

// Gate asks the backend whether a reported payment is genuine. The backend
// answers the same way for repeated calls with the same payload.
type Gate struct {
	backend Verifier
}

func NewGate(v Verifier) *Gate {
	return &Gate{backend: v}
}

func (g *Gate) Verify(ctx context.Context, s session.Session, intent domain.OrderIntent, st Settlement) (domain.VerificationResult, error) {
	if !st.Success {
		return domain.VerificationResult{}, ErrNotSettled
	}
	if st.OrderID != intent.ProviderOrderID {
		return domain.VerificationResult{Success: false, Message: "payment does not belong to this order"}, nil
	}

	return g.backend.VerifyPayment(ctx, s, backend.VerifyRequest{
		ProviderOrderID:   st.OrderID,
		ProviderPaymentID: st.PaymentID,
		Signature:         st.Signature,
	})
}
