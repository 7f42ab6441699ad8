package port

import (
	"context"

	"github.com/rafaelpierri/andela-assessment/internal/core/domain"
)

type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// ListQuery selects one page of the catalog. Filters are optional; the
// zero value of each filter disables it.
type ListQuery struct {
	Page     int
	PageSize int
	Order    SortOrder

	// Search filters.
	Category   string   // exact match
	NamePrefix string   // name must start with this value
	MinPrice   *float64 // inclusive
	MaxPrice   *float64 // inclusive
}

type ProductRepository interface {
	// Create persists a new product and returns it with the generated id
	// and timestamps set (CreatedAt == UpdatedAt).
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)

	// FindOne retrieves a product by id, failing with domain.NotFoundError
	// when it does not exist.
	FindOne(ctx context.Context, id int64) (*domain.Product, error)

	// FindMany retrieves the products matching the given ids. Missing ids
	// are silently omitted; callers must detect a short result.
	FindMany(ctx context.Context, ids []int64) ([]*domain.Product, error)

	// FindAll returns one page of products ordered by name.
	FindAll(ctx context.Context, query ListQuery) ([]*domain.Product, domain.Pagination, error)

	// Update persists the batch in a single transaction with a per-row
	// version check on UpdatedAt. Any stale row fails the whole batch with
	// domain.VersionConflictError; no partial batch ever commits.
	Update(ctx context.Context, products []*domain.Product) error
}
