package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// BankDirectoryCache caches the provider's bank name to bank code
// directory. The directory changes rarely, so one Redis key with a long
// TTL spares a provider round trip on every payout.
type BankDirectoryCache struct {
	client *goredis.Client
	key    string
}

// NewBankDirectoryCache creates a new Redis-backed bank directory cache.
func NewBankDirectoryCache(client *goredis.Client) *BankDirectoryCache {
	return &BankDirectoryCache{
		client: client,
		key:    "rail:banks",
	}
}

// Get retrieves the cached directory. Returns nil, nil on a cache miss.
func (c *BankDirectoryCache) Get(ctx context.Context) (map[string]string, error) {
	val, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis bank directory get: %w", err)
	}

	var banks map[string]string
	if err := json.Unmarshal(val, &banks); err != nil {
		return nil, fmt.Errorf("redis bank directory decode: %w", err)
	}
	return banks, nil
}

// Set stores the directory with TTL.
func (c *BankDirectoryCache) Set(ctx context.Context, banks map[string]string, ttl time.Duration) error {
	val, err := json.Marshal(banks)
	if err != nil {
		return fmt.Errorf("redis bank directory encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis bank directory set: %w", err)
	}
	return nil
}
