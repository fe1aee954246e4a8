package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/session"
)

type orderResponse struct {
	Order *domain.Order `json:"order"`
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

func (c *Client) GetOrder(ctx context.Context, s session.Session, id string) (*domain.Order, error) {
	var resp orderResponse
	if err := c.do(ctx, "get order", http.MethodGet, "/api/orders/"+url.PathEscape(id), s, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Order == nil {
		return nil, &APIError{Status: http.StatusNotFound, Message: "order not found"}
	}
	return resp.Order, nil
}

func (c *Client) ListOrders(ctx context.Context, s session.Session) ([]domain.Order, error) {
	var resp ordersResponse
	if err := c.do(ctx, "list orders", http.MethodGet, "/api/orders", s, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}
