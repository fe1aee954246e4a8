package backend

import (
	"context"
	"net/http"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/session"
)

type cartResponse struct {
	Cart []domain.CartItem `json:"cart"`
}

type setQuantityRequest struct {
	ProductID   string `json:"productId"`
	SetQuantity int    `json:"setQuantity"`
}

type removeItemRequest struct {
	ProductID string `json:"productId"`
}

func (c *Client) GetCart(ctx context.Context, s session.Session) ([]domain.CartItem, error) {
	var resp cartResponse
	if err := c.do(ctx, "get cart", http.MethodGet, "/api/cart", s, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

// SetQuantity sends the absolute target quantity and returns the cart as the
// backend now holds it.
func (c *Client) SetQuantity(ctx context.Context, s session.Session, productID string, quantity int) ([]domain.CartItem, error) {
	var resp cartResponse
	req := setQuantityRequest{ProductID: productID, SetQuantity: quantity}
	if err := c.do(ctx, "set quantity", http.MethodPost, "/api/cart/update", s, req, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

func (c *Client) RemoveItem(ctx context.Context, s session.Session, productID string) ([]domain.CartItem, error) {
	var resp cartResponse
	if err := c.do(ctx, "remove item", http.MethodPost, "/api/cart/remove", s, removeItemRequest{ProductID: productID}, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}
