package port

import "context"

// ProductCache caches rendered product list pages. A miss is reported as
// (nil, nil); cache failures must never fail the request path.
type ProductCache interface {
	// GetList returns the cached payload for a list query key, or nil on miss.
	GetList(ctx context.Context, key string) ([]byte, error)

	// SetList stores the payload for a list query key.
	SetList(ctx context.Context, key string, payload []byte) error

	// InvalidateLists drops every cached list page after a write.
	InvalidateLists(ctx context.Context) error
}
