package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/catalog"
	"github.com/fjod/go_prasad/internal/checkout"
)

type LineResolver interface {
	Resolve(ctx context.Context, lines []catalog.LineRequest) ([]domain.CartItem, error)
}

type CheckoutHandler struct {
	shoppers Shoppers
	catalog  LineResolver
	timeout  time.Duration
}

func NewCheckoutHandler(shoppers Shoppers, resolver LineResolver, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		shoppers: shoppers,
		catalog:  resolver,
		timeout:  timeout,
	}
}

type BeginCheckoutRequestDTO struct {
	Origin string                `json:"origin"`
	Items  []catalog.LineRequest `json:"items,omitempty"`
}

type SelectAddressRequestDTO struct {
	AddressID string `json:"address_id"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := currentShopper(w, r, h.shoppers)
	if s == nil {
		return
	}

	var req BeginCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	origin := checkout.Origin(req.Origin)
	if req.Origin == "" {
		origin = checkout.OriginCart
	}
	if !origin.Valid() {
		handleError(w, checkout.ErrUnknownOrigin)
		return
	}

	var items []domain.CartItem
	if origin.UsesCart() {
		if len(req.Items) > 0 {
			respondError(w, http.StatusBadRequest, "invalid_request", "items are only accepted for buy now")
			return
		}
		if _, err := s.Cart.Load(ctx); err != nil {
			handleError(w, err)
			return
		}
	} else {
		if len(req.Items) == 0 {
			handleError(w, checkout.ErrEmptyCart)
			return
		}
		resolved, err := h.catalog.Resolve(ctx, req.Items)
		if err != nil {
			handleError(w, err)
			return
		}
		items = resolved
	}

	view, err := s.Checkout.Begin(ctx, origin, items)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, view)
}

// PUT /api/v1/checkout/address
func (h *CheckoutHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := currentShopper(w, r, h.shoppers)
	if s == nil {
		return
	}

	var req SelectAddressRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.AddressID == "" {
		respondError(w, http.StatusBadRequest, "invalid_address_id", "address_id is required")
		return
	}

	view, err := s.Checkout.SelectAddress(ctx, req.AddressID)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// POST /api/v1/checkout/confirm
// A failed attempt is still a 200: the view carries the failure.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := currentShopper(w, r, h.shoppers)
	if s == nil {
		return
	}

	view, err := s.Checkout.Confirm(ctx)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// GET /api/v1/checkout
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := currentShopper(w, r, h.shoppers)
	if s == nil {
		return
	}
	respondJSON(w, http.StatusOK, s.Checkout.View())
}

// DELETE /api/v1/checkout
// Refused with 409 while the backend is deciding the attempt.
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s := currentShopper(w, r, h.shoppers)
	if s == nil {
		return
	}

	view, err := s.Checkout.Reset(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}
