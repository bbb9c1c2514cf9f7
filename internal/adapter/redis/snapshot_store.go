package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

// snapshotStore keeps each snapshot as a plain string value with no expiry,
// mirroring browser local storage.
type snapshotStore struct {
	client redis.Cmdable
}

func NewSnapshotStore(client redis.Cmdable) repository.SnapshotStore {
	return &snapshotStore{client: client}
}

func (s *snapshotStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to get snapshot %s from redis: %w", key, err)
	}
	return val, nil
}

func (s *snapshotStore) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot %s to redis: %w", key, err)
	}
	return nil
}

func (s *snapshotStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrConnectionFailed, err)
	}
	return nil
}
