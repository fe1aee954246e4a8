package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/go_prasad/internal/address"
	"github.com/fjod/go_prasad/internal/backend"
	"github.com/fjod/go_prasad/internal/cart"
	"github.com/fjod/go_prasad/internal/catalog"
	"github.com/fjod/go_prasad/internal/checkout"
	"github.com/fjod/go_prasad/internal/session"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError converts errors from the client packages to HTTP statuses.
func handleError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, cart.ErrCartLocked):
		respondError(w, http.StatusConflict, "cart_locked", err.Error())
	case errors.Is(err, address.ErrInvalidAddress):
		respondError(w, http.StatusBadRequest, "invalid_address", err.Error())
	case errors.Is(err, catalog.ErrInvalidLine):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, checkout.ErrUnknownOrigin):
		respondError(w, http.StatusBadRequest, "invalid_origin", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrNoAddressSelected):
		respondError(w, http.StatusUnprocessableEntity, "no_address_selected", err.Error())
	case errors.Is(err, checkout.ErrUnknownAddress):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		respondError(w, http.StatusConflict, "checkout_in_progress", err.Error())
	case errors.Is(err, checkout.ErrStaleAttempt), errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	case backend.IsTransport(err):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "store backend unavailable")
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		respondError(w, http.StatusNotFound, "not_found", apiErr.Message)
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		respondError(w, http.StatusBadRequest, "invalid_request", apiErr.Message)
	case errors.As(err, &apiErr):
		respondError(w, http.StatusBadGateway, "bad_gateway", apiErr.Message)
	default:
		slog.Error("unhandled error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
