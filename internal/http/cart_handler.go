package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/shopper"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	shoppers Shoppers
	timeout  time.Duration
}

func NewCartHandler(shoppers Shoppers, timeout time.Duration) *CartHandler {
	return &CartHandler{
		shoppers: shoppers,
		timeout:  timeout,
	}
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items  []domain.CartItem `json:"items"`
	Total  string            `json:"total"`
	Count  int               `json:"count"`
	Locked bool              `json:"locked"`
}

func cartResponse(s *shopper.Shopper) CartResponseDTO {
	items := s.Cart.Items()
	return CartResponseDTO{
		Items:  items,
		Total:  s.Cart.Total().StringFixed(2),
		Count:  len(items),
		Locked: s.Cart.Frozen(),
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := currentShopper(w, r, h.shoppers)
	if s == nil {
		return
	}

	if _, err := s.Cart.Load(ctx); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(s))
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := currentShopper(w, r, h.shoppers)
	if s == nil {
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if _, err := s.Cart.SetQuantity(ctx, productID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(s))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := currentShopper(w, r, h.shoppers)
	if s == nil {
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	if _, err := s.Cart.RemoveItem(ctx, productID); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(s))
}
