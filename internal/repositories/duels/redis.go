package duels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Havocprime/Lowlife-New/internal/game/duel"
)

const (
	duelKeyPrefix = "duel:"

	// abandoned duels drop out of redis after a day
	defaultTTL = 24 * time.Hour
)

// RedisRepoConfig holds configuration for the Redis repository.
type RedisRepoConfig struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

type redisRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRepository creates a Redis-backed active duel repository.
//
// Precondition: cfg.Client is non-nil.
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg.Client == nil {
		panic("redis client is required")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}
	return &redisRepository{client: cfg.Client, ttl: ttl}
}

func (r *redisRepository) Create(ctx context.Context, key string, rec *duel.Record) error {
	data, err := encode(key, rec)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, duelKeyPrefix+key, string(data), r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create duel %s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrExists, key)
	}
	return nil
}

func (r *redisRepository) Get(ctx context.Context, key string) (*duel.Record, error) {
	if key == "" {
		return nil, fmt.Errorf("duel key cannot be empty")
	}
	data, err := r.client.Get(ctx, duelKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get duel %s: %w", key, err)
	}
	var rec duel.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to deserialize duel %s: %w", key, err)
	}
	return &rec, nil
}

func (r *redisRepository) Update(ctx context.Context, key string, rec *duel.Record) error {
	data, err := encode(key, rec)
	if err != nil {
		return err
	}
	ok, err := r.client.SetXX(ctx, duelKeyPrefix+key, string(data), r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to update duel %s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return nil
}

func (r *redisRepository) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("duel key cannot be empty")
	}
	if err := r.client.Del(ctx, duelKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete duel %s: %w", key, err)
	}
	return nil
}

func encode(key string, rec *duel.Record) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("duel key cannot be empty")
	}
	if rec == nil {
		return nil, fmt.Errorf("duel record cannot be nil")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize duel %s: %w", key, err)
	}
	return data, nil
}
