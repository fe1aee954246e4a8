package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_prasad/domain"
)

type productsResponse struct {
	Products []domain.Product `json:"products"`
}

type productResponse struct {
	Product *domain.Product `json:"product"`
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var resp productsResponse
	if err := c.do(ctx, "list products", http.MethodGet, "/api/products", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var resp productResponse
	if err := c.do(ctx, "get product", http.MethodGet, "/api/products/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Product == nil {
		return nil, &APIError{Status: http.StatusNotFound, Message: "product not found"}
	}
	return resp.Product, nil
}
