package emptycache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	redisclient "github.com/bbanting/canvasgradecheck/pkg/redis"
)

// ErrRedisDisabled is returned when the redis backend is selected without a connection
var ErrRedisDisabled = errors.New("redis is disabled")

// RedisStore keeps the empty-course set as a Redis list
type RedisStore struct {
	client *redisclient.Client
	key    string
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redisclient.Client) (*RedisStore, error) {
	if client == nil || !client.Enabled() {
		return nil, ErrRedisDisabled
	}

	return &RedisStore{
		client: client,
		key:    client.Key("empty_courses"),
	}, nil
}

// Load returns the persisted ids; a missing key is an empty set
func (s *RedisStore) Load(ctx context.Context) ([]int, error) {
	vals, err := s.client.Redis().LRange(ctx, s.key, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("lrange %s: %w", s.key, err)
	}

	ids := make([]int, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid course id %q in %s: %w", v, s.key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Replace overwrites the set in one MULTI/EXEC
func (s *RedisStore) Replace(ctx context.Context, ids []int) error {
	_, err := s.client.Redis().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(ids) == 0 {
			return nil
		}

		vals := make([]interface{}, len(ids))
		for i, id := range ids {
			vals[i] = id
		}
		pipe.RPush(ctx, s.key, vals...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace %s: %w", s.key, err)
	}
	return nil
}
