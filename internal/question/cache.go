package question

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fragmentforge/escape-api/internal/game"
)

const (
	bankKey         = "fragmentforge:questions"
	defaultCacheTTL = 12 * time.Hour
)

// BankCache holds a loaded bank so restarts and additional instances don't
// re-fetch the static source (implemented by the Redis-backed Cache).
type BankCache interface {
	Get(ctx context.Context) ([]game.Question, error)
	Set(ctx context.Context, bank []game.Question) error
}

// Cache provides Redis-backed bank caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ BankCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context) ([]game.Question, error) {
	data, err := c.client.Get(ctx, bankKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var bank []game.Question
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, err
	}
	return bank, nil
}

func (c *Cache) Set(ctx context.Context, bank []game.Question) error {
	data, err := json.Marshal(bank)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, bankKey, data, c.ttl).Err()
}
