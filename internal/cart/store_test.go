package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	getCart     func(ctx context.Context) ([]domain.CartItem, error)
	setQuantity func(ctx context.Context, productID string, quantity int) ([]domain.CartItem, error)
	removeItem  func(ctx context.Context, productID string) ([]domain.CartItem, error)

	getCalls atomic.Int32
	setCalls atomic.Int32
}

func (m *mockBackend) GetCart(ctx context.Context, _ session.Session) ([]domain.CartItem, error) {
	m.getCalls.Add(1)
	return m.getCart(ctx)
}

func (m *mockBackend) SetQuantity(ctx context.Context, _ session.Session, productID string, quantity int) ([]domain.CartItem, error) {
	m.setCalls.Add(1)
	return m.setQuantity(ctx, productID, quantity)
}

func (m *mockBackend) RemoveItem(ctx context.Context, _ session.Session, productID string) ([]domain.CartItem, error) {
	return m.removeItem(ctx, productID)
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func item(id string, unit int64, discounted *decimal.Decimal, qty int) domain.CartItem {
	return domain.CartItem{
		Product:  &domain.Product{ID: id, Name: id, UnitPrice: decimal.NewFromInt(unit), DiscountedPrice: discounted},
		Quantity: qty,
	}
}

func staticCart(items ...domain.CartItem) func(context.Context) ([]domain.CartItem, error) {
	return func(context.Context) ([]domain.CartItem, error) {
		return items, nil
	}
}

func TestLoad_NoToken(t *testing.T) {
	b := &mockBackend{getCart: staticCart()}
	store := NewStore(b, session.NewBearer(""), nil)

	_, err := store.Load(context.Background())

	assert.ErrorIs(t, err, session.ErrUnauthenticated)
	assert.Equal(t, int32(0), b.getCalls.Load())
}

func TestLoad_Idempotent(t *testing.T) {
	b := &mockBackend{getCart: staticCart(item("p1", 100, nil, 2), item("p2", 50, price(40), 1))}
	store := NewStore(b, session.NewBearer("token"), nil)

	first, err := store.Load(context.Background())
	require.NoError(t, err)
	second, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second, 2)
}

func TestTotal_UsesDiscountedPrice(t *testing.T) {
	b := &mockBackend{getCart: staticCart(item("p1", 100, price(80), 3))}
	store := NewStore(b, session.NewBearer("token"), nil)

	_, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(240).Equal(store.Total()), "got %s", store.Total())
}

func TestTotal_ExcludesUnresolvedItems(t *testing.T) {
	b := &mockBackend{getCart: staticCart(
		item("p1", 100, nil, 1),
		domain.CartItem{Product: nil, Quantity: 4},
		item("p2", 30, price(25), 2),
	)}
	store := NewStore(b, session.NewBearer("token"), nil)

	_, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(150).Equal(store.Total()))
	assert.Equal(t, 2, store.Count())
	assert.Len(t, store.Snapshot(), 3)
}

func TestSetQuantity_BelowOneNeverCalls(t *testing.T) {
	b := &mockBackend{
		getCart:     staticCart(item("p1", 100, nil, 2)),
		setQuantity: func(context.Context, string, int) ([]domain.CartItem, error) { return nil, nil },
	}
	store := NewStore(b, session.NewBearer("token"), nil)
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	before := store.Snapshot()

	for _, qty := range []int{0, -1} {
		_, err := store.SetQuantity(context.Background(), "p1", qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}

	assert.Equal(t, int32(0), b.setCalls.Load())
	assert.Equal(t, before, store.Snapshot())
}

func TestSetQuantity_AdoptsServerCart(t *testing.T) {
	b := &mockBackend{
		setQuantity: func(_ context.Context, id string, qty int) ([]domain.CartItem, error) {
			// the backend caps quantity at 5
			return []domain.CartItem{item(id, 10, nil, min(qty, 5))}, nil
		},
	}
	store := NewStore(b, session.NewBearer("token"), nil)

	items, err := store.SetQuantity(context.Background(), "p1", 9)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestSetQuantity_StaleResponseIgnored(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	b := &mockBackend{
		setQuantity: func(_ context.Context, id string, qty int) ([]domain.CartItem, error) {
			if qty == 2 {
				close(started)
				<-release
			}
			return []domain.CartItem{item(id, 10, nil, qty)}, nil
		},
	}
	store := NewStore(b, session.NewBearer("token"), nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := store.SetQuantity(context.Background(), "p1", 2)
		assert.NoError(t, err)
	}()

	<-started
	_, err := store.SetQuantity(context.Background(), "p1", 5)
	require.NoError(t, err)
	close(release)
	wg.Wait()

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	b := &mockBackend{
		getCart: staticCart(item("p1", 10, nil, 1), item("p2", 20, nil, 1)),
		removeItem: func(_ context.Context, id string) ([]domain.CartItem, error) {
			assert.Equal(t, "p1", id)
			return []domain.CartItem{item("p2", 20, nil, 1)}, nil
		},
	}
	store := NewStore(b, session.NewBearer("token"), nil)
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	items, err := store.RemoveItem(context.Background(), "p1")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].Product.ID)
}

func TestFrozenCartRejectsMutations(t *testing.T) {
	b := &mockBackend{
		setQuantity: func(context.Context, string, int) ([]domain.CartItem, error) { return nil, nil },
		removeItem:  func(context.Context, string) ([]domain.CartItem, error) { return nil, nil },
	}
	store := NewStore(b, session.NewBearer("token"), nil)
	store.Freeze()

	_, err := store.SetQuantity(context.Background(), "p1", 2)
	assert.ErrorIs(t, err, ErrCartLocked)
	_, err = store.RemoveItem(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrCartLocked)
	assert.Equal(t, int32(0), b.setCalls.Load())

	store.Thaw()
	_, err = store.SetQuantity(context.Background(), "p1", 2)
	assert.NoError(t, err)
}

func TestFreezeDuringMutationDiscardsReply(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	b := &mockBackend{
		getCart: staticCart(item("p1", 100, nil, 1)),
		setQuantity: func(context.Context, string, int) ([]domain.CartItem, error) {
			close(entered)
			<-release
			return []domain.CartItem{item("p1", 100, nil, 9)}, nil
		},
	}
	store := NewStore(b, session.NewBearer("token"), nil)
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	errs := make(chan error, 1)
	go func() {
		_, err := store.SetQuantity(context.Background(), "p1", 9)
		errs <- err
	}()
	<-entered
	store.Freeze()
	close(release)

	assert.ErrorIs(t, <-errs, ErrCartLocked)
	assert.Equal(t, 1, store.Snapshot()[0].Quantity)
	assert.True(t, store.Total().Equal(decimal.NewFromInt(100)))
}

func TestBackendErrorKeepsCart(t *testing.T) {
	b := &mockBackend{
		getCart: staticCart(item("p1", 10, nil, 1)),
		setQuantity: func(context.Context, string, int) ([]domain.CartItem, error) {
			return nil, errors.New("connection refused")
		},
	}
	store := NewStore(b, session.NewBearer("token"), nil)
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	_, err = store.SetQuantity(context.Background(), "p1", 3)

	require.Error(t, err)
	assert.Equal(t, 1, store.Items()[0].Quantity)
}

func TestClear(t *testing.T) {
	b := &mockBackend{getCart: staticCart(item("p1", 10, nil, 1))}
	store := NewStore(b, session.NewBearer("token"), nil)
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	store.Clear()

	assert.Equal(t, 0, store.Count())
	assert.True(t, store.Total().IsZero())
}
