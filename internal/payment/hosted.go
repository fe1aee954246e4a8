package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"
)

// HostedCheckout drives the provider's hosted widget. The widget's success
// and failure handlers post back to CallbackRoutes, which turns each post
// into a Settlement for the order it names.
type HostedCheckout struct {
	scriptURL string
	client    *http.Client
	log       *slog.Logger
	sfg       singleflight.Group

	mu      sync.Mutex
	loaded  bool
	pending map[string]chan Settlement
}

func NewHostedCheckout(scriptURL string, client *http.Client, log *slog.Logger) *HostedCheckout {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	return &HostedCheckout{
		scriptURL: scriptURL,
		client:    client,
		log:       log,
		pending:   make(map[string]chan Settlement),
	}
}

// Load fetches the widget script once. A failed fetch is not remembered, so
// the next checkout attempt tries again. Concurrent loads share one fetch,
// and the fetch runs without holding mu so callbacks are never held up by a
// slow script host.
func (h *HostedCheckout) Load(ctx context.Context) error {
	if h.isLoaded() {
		return nil
	}
	_, err, _ := h.sfg.Do("script", func() (interface{}, error) {
		if h.isLoaded() {
			return nil, nil
		}
		return nil, h.fetchScript(ctx)
	})
	return err
}

func (h *HostedCheckout) isLoaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loaded
}

func (h *HostedCheckout) fetchScript(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.scriptURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build script request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch payment script: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("payment script returned status %d", resp.StatusCode)
	}

	h.mu.Lock()
	h.loaded = true
	h.mu.Unlock()
	h.log.InfoContext(ctx, "payment script loaded", "url", h.scriptURL)
	return nil
}

func (h *HostedCheckout) Open(ctx context.Context, opts Options) (<-chan Settlement, error) {
	if opts.OrderID == "" {
		return nil, ErrMissingOrderID
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.loaded {
		return nil, ErrWidgetNotLoaded
	}
	if _, ok := h.pending[opts.OrderID]; ok {
		return nil, ErrAlreadyOpen
	}

	ch := make(chan Settlement, 1)
	h.pending[opts.OrderID] = ch
	h.log.InfoContext(ctx, "payment widget opened", "order_id", opts.OrderID, "amount", opts.Amount, "currency", opts.Currency)
	return ch, nil
}

// Forget drops an order whose widget will never report back.
func (h *HostedCheckout) Forget(orderID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.pending[orderID]; ok {
		delete(h.pending, orderID)
		close(ch)
	}
}

// deliver hands the settlement to the waiting order. Only the first
// settlement per order is delivered.
func (h *HostedCheckout) deliver(s Settlement) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.pending[s.OrderID]
	if !ok {
		return false
	}
	delete(h.pending, s.OrderID)
	ch <- s
	close(ch)
	return true
}

func (h *HostedCheckout) CallbackRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/success", h.handleSuccess)
	r.Post("/failure", h.handleFailure)
	return r
}

type successPayload struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

type failurePayload struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Reason      string `json:"reason"`
		Metadata    struct {
			OrderID   string `json:"order_id"`
			PaymentID string `json:"payment_id"`
		} `json:"metadata"`
	} `json:"error"`
}

func (h *HostedCheckout) handleSuccess(w http.ResponseWriter, r *http.Request) {
	var p successPayload
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form body"})
			return
		}
		p.PaymentID = r.PostForm.Get("razorpay_payment_id")
		p.OrderID = r.PostForm.Get("razorpay_order_id")
		p.Signature = r.PostForm.Get("razorpay_signature")
	}

	if p.OrderID == "" || p.PaymentID == "" || p.Signature == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "razorpay_order_id, razorpay_payment_id and razorpay_signature are required"})
		return
	}

	h.settle(w, r, Settlement{
		OrderID:   p.OrderID,
		PaymentID: p.PaymentID,
		Signature: p.Signature,
		Success:   true,
	})
}

func (h *HostedCheckout) handleFailure(w http.ResponseWriter, r *http.Request) {
	var p failurePayload
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form body"})
			return
		}
		p.Error.Code = r.PostForm.Get("error[code]")
		p.Error.Description = r.PostForm.Get("error[description]")
		p.Error.Reason = r.PostForm.Get("error[reason]")
		p.Error.Metadata.OrderID = r.PostForm.Get("error[metadata][order_id]")
		p.Error.Metadata.PaymentID = r.PostForm.Get("error[metadata][payment_id]")
	}

	if p.Error.Metadata.OrderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "error[metadata][order_id] is required"})
		return
	}

	h.settle(w, r, Settlement{
		OrderID:     p.Error.Metadata.OrderID,
		PaymentID:   p.Error.Metadata.PaymentID,
		Success:     false,
		Code:        p.Error.Code,
		Reason:      p.Error.Reason,
		Description: p.Error.Description,
	})
}

func (h *HostedCheckout) settle(w http.ResponseWriter, r *http.Request, s Settlement) {
	if !h.deliver(s) {
		h.log.WarnContext(r.Context(), "ignoring settlement for unknown or settled order", "order_id", s.OrderID, "success", s.Success)
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no open payment for this order"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
