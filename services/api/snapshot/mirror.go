package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/02loveslollipop/library-occupancy/services/api/occupancy"
)

// MirrorKey is the Redis key holding the latest snapshot payload.
const MirrorKey = "occupancy:snapshot:latest"

// KVStore is the write side of a key/value store.
type KVStore interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// RedisKVStore implements KVStore with go-redis.
type RedisKVStore struct {
	client *redis.Client
}

// NewRedisKVStore wraps client.
func NewRedisKVStore(client *redis.Client) *RedisKVStore {
	return &RedisKVStore{client: client}
}

func (r *RedisKVStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Mirror publishes the client payload of every new snapshot to a KVStore so
// other replicas and dashboards can read it without touching the database.
type Mirror struct {
	kv  KVStore
	key string
	ttl time.Duration
	log *zap.Logger
}

// NewMirror builds a mirror writing to MirrorKey with the given TTL.
func NewMirror(kv KVStore, ttl time.Duration, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{kv: kv, key: MirrorKey, ttl: ttl, log: logger}
}

// Publish implements Publisher.
func (m *Mirror) Publish(ctx context.Context, snap occupancy.Snapshot) error {
	data, err := json.Marshal(occupancy.ToPayload(snap))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := m.kv.Set(ctx, m.key, string(data), m.ttl); err != nil {
		return fmt.Errorf("failed to set %s: %w", m.key, err)
	}
	m.log.Debug("mirrored snapshot", zap.String("key", m.key), zap.Duration("ttl", m.ttl))
	return nil
}
