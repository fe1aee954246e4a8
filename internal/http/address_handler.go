package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_prasad/domain"
	"github.com/go-chi/chi/v5"
)

type AddressHandler struct {
	shoppers Shoppers
	timeout  time.Duration
}

func NewAddressHandler(shoppers Shoppers, timeout time.Duration) *AddressHandler {
	return &AddressHandler{
		shoppers: shoppers,
		timeout:  timeout,
	}
}

type AddressesResponseDTO struct {
	Addresses        []domain.Address `json:"addresses"`
	DefaultAddressID string           `json:"default_address_id,omitempty"`
}

func addressesResponse(list []domain.Address) AddressesResponseDTO {
	return AddressesResponseDTO{Addresses: list, DefaultAddressID: domain.DefaultAddressID(list)}
}

// GET /api/v1/addresses
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := currentShopper(w, r, h.shoppers)
	if s == nil {
		return
	}

	list, defaultID := s.Addresses.Load(ctx)
	respondJSON(w, http.StatusOK, AddressesResponseDTO{Addresses: list, DefaultAddressID: defaultID})
}

// POST /api/v1/addresses
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := currentShopper(w, r, h.shoppers)
	if s == nil {
		return
	}

	var req domain.Address
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	list, err := s.Addresses.Add(ctx, req)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, addressesResponse(list))
}

// PUT /api/v1/addresses/{address_id}
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := currentShopper(w, r, h.shoppers)
	if s == nil {
		return
	}

	addressID := chi.URLParam(r, "address_id")
	if addressID == "" {
		respondError(w, http.StatusBadRequest, "invalid_address_id", "address_id is required")
		return
	}

	var req domain.Address
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	list, err := s.Addresses.Update(ctx, addressID, req)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, addressesResponse(list))
}

// DELETE /api/v1/addresses/{address_id}
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := currentShopper(w, r, h.shoppers)
	if s == nil {
		return
	}

	addressID := chi.URLParam(r, "address_id")
	if addressID == "" {
		respondError(w, http.StatusBadRequest, "invalid_address_id", "address_id is required")
		return
	}

	list, err := s.Addresses.Delete(ctx, addressID)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, addressesResponse(list))
}
