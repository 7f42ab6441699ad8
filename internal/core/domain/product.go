package domain

import (
	"fmt"
	"time"
)

type Product struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Price       float64
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time // optimistic locking version token
}

// DecreaseStock reduces stock in place. It fails and leaves stock unchanged
// when the requested quantity exceeds what is available. It knows nothing
// about persistence or versioning.
func (p *Product) DecreaseStock(quantity int) error {
	if quantity > p.Stock {
		return fmt.Errorf("quantity (%d) exceeds the stock count (%d) of product %d: %w",
			quantity, p.Stock, p.ID, ErrInsufficientStock)
	}
	p.Stock -= quantity
	return nil
}

// Pagination describes one page of a product listing. It is derived,
// never stored.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the listing metadata for a page of results.
func NewPagination(page, perPage, total int) Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}
