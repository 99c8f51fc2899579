package rediscache

import (
	"context"
	"fmt"
	"time"

	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:jti:"

// RevocationStore keeps revoked token ids as keys that expire together with the token.
type RevocationStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	return &RevocationStore{rdb: rdb, now: time.Now}
}

var _ portsrepo.TokenRevocationStore = (*RevocationStore)(nil)

func revokedKey(tokenID string) string {
	return revokedKeyPrefix + tokenID
}

func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revokedKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token %s: %w", tokenID, err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation of token %s: %w", tokenID, err)
	}
	return n > 0, nil
}
