package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rafaelpierri/andela-assessment/internal/core/domain"
	"github.com/rafaelpierri/andela-assessment/internal/port"
)

// MemoryAdapter is an in-memory product repository with the same conflict
// semantics as the MySQL adapter. It backs tests and local runs without a
// database.
type MemoryAdapter struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Product
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{nextID: 1, rows: make(map[int64]domain.Product)}
}

func (m *MemoryAdapter) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC().Truncate(time.Microsecond)
	created := *product
	created.ID = m.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	m.nextID++
	m.rows[created.ID] = created

	result := created
	return &result, nil
}

func (m *MemoryAdapter) FindOne(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return nil, &domain.NotFoundError{ProductIDs: []int64{id}}
	}
	return &row, nil
}

func (m *MemoryAdapter) FindMany(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var products []*domain.Product
	for _, id := range ids {
		if row, ok := m.rows[id]; ok {
			copied := row
			products = append(products, &copied)
		}
	}
	return products, nil
}

func (m *MemoryAdapter) FindAll(ctx context.Context, query port.ListQuery) ([]*domain.Product, domain.Pagination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []domain.Product
	for _, row := range m.rows {
		if !matchesFilter(row, query) {
			continue
		}
		matched = append(matched, row)
	}

	sort.Slice(matched, func(i, j int) bool {
		if query.Order == port.SortDesc {
			return matched[i].Name > matched[j].Name
		}
		return matched[i].Name < matched[j].Name
	})

	total := len(matched)
	skip := query.PageSize * (query.Page - 1)
	if skip > total {
		skip = total
	}
	end := skip + query.PageSize
	if end > total {
		end = total
	}

	products := make([]*domain.Product, 0, end-skip)
	for _, row := range matched[skip:end] {
		copied := row
		products = append(products, &copied)
	}
	return products, domain.NewPagination(query.Page, query.PageSize, total), nil
}

func (m *MemoryAdapter) Update(ctx context.Context, products []*domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Version-check every row before touching any, so a conflict leaves the
	// whole batch unapplied, mirroring the transactional rollback.
	for _, product := range products {
		row, ok := m.rows[product.ID]
		if !ok || !row.UpdatedAt.Equal(product.UpdatedAt) {
			return &domain.VersionConflictError{ProductID: product.ID}
		}
	}

	for _, product := range products {
		next := time.Now().UTC().Truncate(time.Microsecond)
		if !next.After(product.UpdatedAt) {
			next = product.UpdatedAt.Add(time.Microsecond)
		}
		updated := *product
		updated.UpdatedAt = next
		m.rows[product.ID] = updated
		product.UpdatedAt = next
	}
	return nil
}

func matchesFilter(p domain.Product, query port.ListQuery) bool {
	if query.Category != "" && p.Category != query.Category {
		return false
	}
	if query.NamePrefix != "" && !strings.HasPrefix(p.Name, query.NamePrefix) {
		return false
	}
	if query.MinPrice != nil && p.Price < *query.MinPrice {
		return false
	}
	if query.MaxPrice != nil && p.Price > *query.MaxPrice {
		return false
	}
	return true
}
