package rediscache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewLimiterStore returns a rate limit store shared by every instance using rdb.
func NewLimiterStore(rdb *redis.Client, prefix string) (limiter.Store, error) {
	store, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:   prefix + ":limiter",
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return store, nil
}
