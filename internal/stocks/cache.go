package stocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no cached quote exists for a symbol.
var ErrCacheMiss = errors.New("quote not in cache")

// Cache is a redis-backed quote cache with a short TTL. Cache failures
// degrade to a live fetch and never fail the request.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func quoteKey(symbol string) string {
	return fmt.Sprintf("quote:%s", symbol)
}

// Get returns the cached quote for a symbol, or ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, symbol string) (*Quote, error) {
	data, err := c.client.Get(ctx, quoteKey(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached quote: %w", err)
	}

	var q Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to decode cached quote: %w", err)
	}

	return &q, nil
}

// Set stores a quote under the symbol key with the configured TTL.
func (c *Cache) Set(ctx context.Context, quote *Quote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}

	if err := c.client.Set(ctx, quoteKey(quote.Symbol), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quote: %w", err)
	}

	return nil
}
