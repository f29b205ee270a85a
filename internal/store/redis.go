package store

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the Redis set holding subscriber ids.
const DefaultRedisKey = "aurora:subscribers"

// RedisStore keeps subscribers in a Redis set. Each mutation is a single
// atomic command, so no client-side locking is needed.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a RedisStore using key (DefaultRedisKey when empty).
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// List returns members sorted ascending; Redis sets are unordered.
func (s *RedisStore) List(ctx context.Context) ([]int64, error) {
	members, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers %s: %w", s.key, err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: redis member %q: %v", ErrCorrupt, m, err)
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *RedisStore) Add(ctx context.Context, id int64) (bool, error) {
	n, err := s.client.SAdd(ctx, s.key, strconv.FormatInt(id, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("redis sadd %s: %w", s.key, err)
	}
	return n == 1, nil
}

func (s *RedisStore) Remove(ctx context.Context, id int64) (bool, error) {
	n, err := s.client.SRem(ctx, s.key, strconv.FormatInt(id, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("redis srem %s: %w", s.key, err)
	}
	return n == 1, nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
