package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRevokedKey(t *testing.T) {
	assert.Equal(t, "revoked:jti:abc", revokedKey("abc"))
}

func TestRevoke_PastExpiryIsNoop(t *testing.T) {
	// The client points nowhere; a network call would fail the test.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 10 * time.Millisecond})
	defer rdb.Close()

	store := NewRevocationStore(rdb)
	store.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	err := store.Revoke(context.Background(), "jti-1", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
}
