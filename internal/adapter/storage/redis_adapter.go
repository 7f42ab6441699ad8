package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	listKeyPrefix = "products:list:"
	listGenKey    = "products:list:gen"
	listTTL       = 5 * time.Minute
)

// RedisAdapter caches rendered product list pages. Invalidation is
// generation based: every write bumps a generation counter and cached pages
// from older generations become unreachable, then expire by TTL.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetList(ctx context.Context, key string) ([]byte, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := r.client.Get(ctx, r.listKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *RedisAdapter) SetList(ctx context.Context, key string, payload []byte) error {
	gen, err := r.generation(ctx)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.listKey(gen, key), payload, listTTL).Err()
}

func (r *RedisAdapter) InvalidateLists(ctx context.Context) error {
	return r.client.Incr(ctx, listGenKey).Err()
}

func (r *RedisAdapter) generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, listGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return gen, nil
}

func (r *RedisAdapter) listKey(gen int64, key string) string {
	return fmt.Sprintf("%s%d:%s", listKeyPrefix, gen, key)
}
