package eventconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is where operators publish the snapshot JSON.
const DefaultRedisKey = "regdesk:event-config"

// RedisSource reads the snapshot JSON from a Redis key on every fetch.
// Operators mutate the key out-of-band; the next request sees the new value.
type RedisSource struct {
	client *redis.Client
	key    string
}

func NewRedisSource(client *redis.Client, key string) *RedisSource {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSource{client: client, key: key}
}

func (s *RedisSource) Fetch(ctx context.Context) (Snapshot, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, fmt.Errorf("configuration key %q not set", s.key)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch configuration: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode configuration: %w", err)
	}
	return snap, nil
}
