package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/session"
)

type CreateOrderRequest struct {
	Products  []domain.LineItem `json:"products"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	AddressID string            `json:"addressId"`
}

type createOrderResponse struct {
	Order struct {
		ID string `json:"id"`
	} `json:"order"`
	ProviderOrder struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"providerOrder"`
}

type VerifyRequest struct {
	ProviderOrderID   string `json:"providerOrderId"`
	ProviderPaymentID string `json:"providerPaymentId"`
	Signature         string `json:"signature"`
}

// CreateOrderIntent asks the backend for a provisional order and the
// provider's order handle.
func (c *Client) CreateOrderIntent(ctx context.Context, s session.Session, req CreateOrderRequest) (domain.OrderIntent, error) {
	var resp createOrderResponse
	if err := c.do(ctx, "create order intent", http.MethodPost, "/api/payment/create-order", s, req, &resp); err != nil {
		return domain.OrderIntent{}, err
	}
	if resp.ProviderOrder.ID == "" {
		return domain.OrderIntent{}, &APIError{Status: http.StatusOK, Message: "missing provider order"}
	}

	intent := domain.OrderIntent{
		LocalOrderID:    resp.Order.ID,
		Amount:          resp.ProviderOrder.Amount,
		Currency:        resp.ProviderOrder.Currency,
		ProviderOrderID: resp.ProviderOrder.ID,
	}
	if intent.Amount == 0 {
		intent.Amount = req.Amount
	}
	if intent.Currency == "" {
		intent.Currency = req.Currency
	}
	return intent, nil
}

// VerifyPayment forwards the provider's completion payload. A rejection the
// backend sent on purpose comes back as an unsuccessful result, not an error;
// errors are reserved for calls that could not be made or answered.
func (c *Client) VerifyPayment(ctx context.Context, s session.Session, req VerifyRequest) (domain.VerificationResult, error) {
	var resp domain.VerificationResult
	err := c.do(ctx, "verify payment", http.MethodPost, "/api/payment/verify", s, req, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return domain.VerificationResult{Success: false, Message: apiErr.Message}, nil
		}
		return domain.VerificationResult{}, err
	}
	return resp, nil
}
