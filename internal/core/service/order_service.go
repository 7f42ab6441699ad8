package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rafaelpierri/andela-assessment/internal/core/domain"
	"github.com/rafaelpierri/andela-assessment/internal/port"
)

// OrderService processes multi-item orders against the product repository.
// All cross-request coordination happens in the repository's version-checked
// update; the service holds no mutable state between calls.
type OrderService struct {
	repo   port.ProductRepository
	cache  port.ProductCache
	logger *zap.Logger
}

// NewOrderService wires the service. cache may be nil to run uncached.
func NewOrderService(repo port.ProductRepository, cache port.ProductCache, logger *zap.Logger) *OrderService {
	return &OrderService{repo: repo, cache: cache, logger: logger}
}

// Process validates the order, loads the referenced products, applies the
// decrements in memory and persists the whole batch in one version-checked
// transaction. Any failure aborts the order with no visible state change.
func (s *OrderService) Process(ctx context.Context, items []domain.OrderItem) error {
	order, err := domain.NewOrder(items)
	if err != nil {
		return err
	}

	ids := order.ProductIDs()
	products, err := s.repo.FindMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	byID := make(map[int64]*domain.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	if len(byID) < len(ids) {
		var missing []int64
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				missing = append(missing, id)
			}
		}
		return &domain.NotFoundError{ProductIDs: missing}
	}

	if err := order.Process(byID); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, products); err != nil {
		return err
	}

	invalidateLists(ctx, s.cache, s.logger)
	return nil
}
