package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder        = errors.New("an order must have at least one item")
	ErrDuplicateItems    = errors.New("order items must reference distinct products")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// NotFoundError reports products referenced by id that do not exist.
type NotFoundError struct {
	ProductIDs []int64
}

func (e *NotFoundError) Error() string {
	if len(e.ProductIDs) == 1 {
		return fmt.Sprintf("product %d not found", e.ProductIDs[0])
	}
	return fmt.Sprintf("products %v not found", e.ProductIDs)
}

// InsufficientStockError lists every product in a batch whose requested
// quantity exceeded its available stock.
type InsufficientStockError struct {
	ProductIDs []int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("order items exceed the stock count of products %v", e.ProductIDs)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// VersionConflictError signals that a row changed since the caller read it.
// The caller may safely retry by re-reading and resubmitting.
type VersionConflictError struct {
	ProductID int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("product %d was modified concurrently, please retry", e.ProductID)
}
