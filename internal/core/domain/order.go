package domain

type OrderItem struct {
	ProductID int64
	Quantity  int
}

// Order is a validated bundle of stock decrement requests. It is transient:
// it lives for the duration of one process call and is never persisted.
type Order struct {
	items []OrderItem
}

func NewOrder(items []OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			return nil, ErrDuplicateItems
		}
		seen[item.ProductID] = struct{}{}
	}

	return &Order{items: items}, nil
}

// ProductIDs returns the distinct product ids referenced by the order.
func (o *Order) ProductIDs() []int64 {
	ids := make([]int64, 0, len(o.items))
	for _, item := range o.items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Process applies every item's decrement to the given products. Failures are
// accumulated so the returned error reports all products with insufficient
// stock, not just the first. On failure the caller must discard the products:
// some of them may already hold in-memory decrements.
func (o *Order) Process(products map[int64]*Product) error {
	var failed []int64
	for _, item := range o.items {
		product, ok := products[item.ProductID]
		if !ok {
			return &NotFoundError{ProductIDs: []int64{item.ProductID}}
		}
		if err := product.DecreaseStock(item.Quantity); err != nil {
			failed = append(failed, product.ID)
		}
	}

	if len(failed) > 0 {
		return &InsufficientStockError{ProductIDs: failed}
	}
	return nil
}
