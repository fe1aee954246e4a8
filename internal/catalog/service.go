// Package catalog serves product listings through a read-through cache and
// resolves "buy now" line items.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/backend"
	"github.com/fjod/go_prasad/internal/cache"
	"golang.org/x/sync/errgroup"
)

type Backend interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type LineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

var ErrInvalidLine = errors.New("line item needs a product id and a quantity of at least 1")

type Service struct {
	backend       Backend
	cache         cache.ProductCache
	log           *slog.Logger
	maxConcurrent int
}

// NewService builds a catalog service. cache may be nil, in which case every
// call goes to the backend.
func NewService(b Backend, c cache.ProductCache, log *slog.Logger, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{backend: b, cache: c, log: log, maxConcurrent: maxConcurrent}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		products, err := s.cache.GetCatalog(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "catalog cache get failed", "error", err)
		}
	}

	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCatalog(ctx, products); err != nil {
			s.log.WarnContext(ctx, "catalog cache set failed", "error", err)
		}
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if s.cache != nil {
		p, err := s.cache.GetProduct(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "product cache get failed", "product_id", id, "error", err)
		}
	}

	p, err := s.backend.GetProduct(ctx, id)
	if err != nil {
		if backend.IsNotFound(err) && s.cache != nil {
			// the cached listing may still show the product
			if err := s.cache.Invalidate(ctx); err != nil {
				s.log.WarnContext(ctx, "catalog cache invalidate failed", "product_id", id, "error", err)
			}
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, p); err != nil {
			s.log.WarnContext(ctx, "product cache set failed", "product_id", id, "error", err)
		}
	}
	return p, nil
}

// Resolve turns "buy now" requests into cart items. A product the backend no
// longer knows becomes an unresolved item (nil Product) so it is filtered the
// same way as a dangling cart row.
func (s *Service) Resolve(ctx context.Context, lines []LineRequest) ([]domain.CartItem, error) {
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			return nil, ErrInvalidLine
		}
	}

	items := make([]domain.CartItem, len(lines))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range lines {
		g.Go(func() error {
			line := lines[idx]
			p, err := s.Get(ctx, line.ProductID)
			if err != nil && !backend.IsNotFound(err) {
				return fmt.Errorf("failed to get product %s: %w", line.ProductID, err)
			}
			items[idx] = domain.CartItem{Product: p, Quantity: line.Quantity}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
