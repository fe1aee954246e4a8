package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/session"
	"github.com/go-chi/chi/v5"
)

type OrdersClient interface {
	ListOrders(ctx context.Context, s session.Session) ([]domain.Order, error)
	GetOrder(ctx context.Context, s session.Session, id string) (*domain.Order, error)
}

type OrdersHandler struct {
	ordersClient OrdersClient
	timeout      time.Duration
}

func NewOrdersHandler(client OrdersClient, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		ordersClient: client,
		timeout:      timeout,
	}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.ordersClient.ListOrders(ctx, sess)
	if err != nil {
		handleError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	order, err := h.ordersClient.GetOrder(ctx, sess, orderID)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}
