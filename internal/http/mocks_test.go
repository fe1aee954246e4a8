package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/backend"
	"github.com/fjod/go_prasad/internal/catalog"
	"github.com/fjod/go_prasad/internal/session"
	"github.com/shopspring/decimal"
)

// BackendMock stands in for the REST backend behind every shopper.
type BackendMock struct {
	mu        sync.Mutex
	cart      []domain.CartItem
	addresses []domain.Address
	intentErr error
	orders    []domain.Order
	err       error
}

func (b *BackendMock) GetCart(ctx context.Context, s session.Session) ([]domain.CartItem, error) {
	if _, err := s.Token(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	return append([]domain.CartItem(nil), b.cart...), nil
}

func (b *BackendMock) SetQuantity(_ context.Context, _ session.Session, productID string, quantity int) ([]domain.CartItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.cart {
		if b.cart[i].Product != nil && b.cart[i].Product.ID == productID {
			b.cart[i].Quantity = quantity
		}
	}
	return append([]domain.CartItem(nil), b.cart...), nil
}

func (b *BackendMock) RemoveItem(_ context.Context, _ session.Session, productID string) ([]domain.CartItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.CartItem
	for _, it := range b.cart {
		if it.Product == nil || it.Product.ID != productID {
			out = append(out, it)
		}
	}
	b.cart = out
	return append([]domain.CartItem(nil), b.cart...), nil
}

func (b *BackendMock) GetProfile(ctx context.Context, s session.Session) (*backend.Profile, error) {
	if _, err := s.Token(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return &backend.Profile{ID: "u1", Addresses: append([]domain.Address(nil), b.addresses...)}, nil
}

func (b *BackendMock) AddAddress(_ context.Context, _ session.Session, a domain.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	a.ID = "a-new"
	b.addresses = append(b.addresses, a)
	return nil
}

func (b *BackendMock) UpdateAddress(context.Context, session.Session, string, domain.Address) error {
	return &backend.APIError{Status: http.StatusNotFound, Message: "address not found"}
}

func (b *BackendMock) DeleteAddress(_ context.Context, _ session.Session, id string) ([]domain.Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Address
	for _, a := range b.addresses {
		if a.ID != id {
			out = append(out, a)
		}
	}
	b.addresses = out
	return out, nil
}

func (b *BackendMock) CreateOrderIntent(_ context.Context, _ session.Session, req backend.CreateOrderRequest) (domain.OrderIntent, error) {
	if b.intentErr != nil {
		return domain.OrderIntent{}, b.intentErr
	}
	return domain.OrderIntent{LocalOrderID: "ord_1", Amount: req.Amount, Currency: req.Currency, ProviderOrderID: "order_rzp_1"}, nil
}

func (b *BackendMock) VerifyPayment(context.Context, session.Session, backend.VerifyRequest) (domain.VerificationResult, error) {
	return domain.VerificationResult{Success: true, Message: "Payment verified"}, nil
}

func (b *BackendMock) ListOrders(ctx context.Context, s session.Session) ([]domain.Order, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.orders, nil
}

func (b *BackendMock) GetOrder(_ context.Context, _ session.Session, id string) (*domain.Order, error) {
	for _, o := range b.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, &backend.APIError{Status: http.StatusNotFound, Message: "order not found"}
}

type CatalogMock struct {
	products map[string]*domain.Product
	err      error
}

func (c CatalogMock) List(context.Context) ([]domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []domain.Product
	for _, p := range c.products {
		out = append(out, *p)
	}
	return out, nil
}

func (c CatalogMock) Get(_ context.Context, id string) (*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, &backend.APIError{Status: http.StatusNotFound, Message: "product not found"}
	}
	return p, nil
}

func (c CatalogMock) Resolve(_ context.Context, lines []catalog.LineRequest) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, len(lines))
	for i, l := range lines {
		items[i] = domain.CartItem{Product: c.products[l.ProductID], Quantity: l.Quantity}
	}
	return items, nil
}

func laddu() *domain.Product {
	d := decimal.NewFromInt(80)
	return &domain.Product{ID: "p1", Name: "Laddu", UnitPrice: decimal.NewFromInt(100), DiscountedPrice: &d, Unit: "box"}
}
