package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rafaelpierri/andela-assessment/internal/core/domain"
	"github.com/rafaelpierri/andela-assessment/internal/port"
)

// ProductService orchestrates catalog reads and writes. List pages are
// served cache-aside; concurrent identical queries collapse into a single
// repository call.
type ProductService struct {
	repo   port.ProductRepository
	cache  port.ProductCache
	logger *zap.Logger
	group  singleflight.Group
}

// RestockInput carries the caller-supplied stock level and the version token
// it last read. A stale token fails the restock with a version conflict.
type RestockInput struct {
	ID        int64
	Stock     int
	UpdatedAt time.Time
}

type productList struct {
	Data []*domain.Product
	Meta domain.Pagination
}

// NewProductService wires the service. cache may be nil to run uncached.
func NewProductService(repo port.ProductRepository, cache port.ProductCache, logger *zap.Logger) *ProductService {
	return &ProductService{repo: repo, cache: cache, logger: logger}
}

func (s *ProductService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, err
	}
	invalidateLists(ctx, s.cache, s.logger)
	return created, nil
}

// Restock overwrites a product's stock using the version-checked update
// path, then re-reads and returns the committed row.
func (s *ProductService) Restock(ctx context.Context, input RestockInput) (*domain.Product, error) {
	product, err := s.repo.FindOne(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	product.Stock = input.Stock
	product.UpdatedAt = input.UpdatedAt

	if err := s.repo.Update(ctx, []*domain.Product{product}); err != nil {
		return nil, err
	}
	invalidateLists(ctx, s.cache, s.logger)

	return s.repo.FindOne(ctx, input.ID)
}

func (s *ProductService) FindAll(ctx context.Context, query port.ListQuery) ([]*domain.Product, domain.Pagination, error) {
	key := listCacheKey(query)

	if s.cache != nil {
		payload, err := s.cache.GetList(ctx, key)
		if err != nil {
			s.logger.Warn("cache_get_failed", zap.Error(err))
		} else if payload != nil {
			var cached productList
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached.Data, cached.Meta, nil
			}
			s.logger.Warn("cache_decode_failed", zap.String("key", key))
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		products, meta, err := s.repo.FindAll(ctx, query)
		if err != nil {
			return nil, err
		}
		list := productList{Data: products, Meta: meta}

		if s.cache != nil {
			if payload, err := json.Marshal(list); err == nil {
				if err := s.cache.SetList(ctx, key, payload); err != nil {
					s.logger.Warn("cache_set_failed", zap.Error(err))
				}
			}
		}
		return list, nil
	})
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	list := v.(productList)
	return list.Data, list.Meta, nil
}

func listCacheKey(query port.ListQuery) string {
	minPrice, maxPrice := "", ""
	if query.MinPrice != nil {
		minPrice = fmt.Sprintf("%.2f", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		maxPrice = fmt.Sprintf("%.2f", *query.MaxPrice)
	}
	return fmt.Sprintf("p=%d:ps=%d:o=%s:c=%s:n=%s:min=%s:max=%s",
		query.Page, query.PageSize, query.Order,
		query.Category, query.NamePrefix, minPrice, maxPrice)
}

// invalidateLists drops cached list pages after a successful write. Cache
// failures only degrade freshness of the TTL-bounded entries, so they are
// logged and swallowed.
func invalidateLists(ctx context.Context, cache port.ProductCache, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateLists(ctx); err != nil {
		logger.Warn("cache_invalidate_failed", zap.Error(err))
	}
}
