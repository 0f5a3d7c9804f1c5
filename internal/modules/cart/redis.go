package cart

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// cartTTL is the session lifetime: carts untouched for this long expire.
const cartTTL = 14 * 24 * time.Hour

// RedisStore keeps carts in a Redis hash per session.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) key(sessionID string) string {
	return "cart:" + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (map[string]int, error) {
	raw, err := s.rdb.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	items := make(map[string]int, len(raw))
	for pid, qty := range raw {
		n, err := strconv.Atoi(qty)
		if err != nil || n <= 0 {
			continue
		}
		items[pid] = n
	}
	return items, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, items map[string]int) error {
	key := s.key(sessionID)
	if len(items) == 0 {
		return s.rdb.Del(ctx, key).Err()
	}
	fields := make(map[string]interface{}, len(items))
	for pid, qty := range items {
		fields[pid] = qty
	}
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, cartTTL)
		return nil
	})
	return err
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, s.key(sessionID)).Err()
}
