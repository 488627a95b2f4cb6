package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/testforge/hrm-e2e/internal/config"
)

// KeyPrefix namespaces every claimed name
const KeyPrefix = "hrm-e2e:name:"

// DefaultClaimTTL keeps a claim long enough to outlive a nightly run
const DefaultClaimTTL = 24 * time.Hour

// NameRegistry claims generated record names across processes with SETNX,
// so parallel runners against one deployment never create the same record.
type NameRegistry struct {
	client *redis.Client
	ttl    time.Duration
	owner  string
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg config.RedisConfig, owner string) (*NameRegistry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewWithClient(client, cfg.ClaimTTL, owner), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, ttl time.Duration, owner string) *NameRegistry {
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	return &NameRegistry{client: client, ttl: ttl, owner: owner}
}

// Key returns the Redis key of a claimed name
func Key(name string) string {
	return KeyPrefix + name
}

// Claim reserves name for the registry's TTL. It reports false when
// another runner holds it.
func (r *NameRegistry) Claim(ctx context.Context, name string) (bool, error) {
	ok, err := r.client.SetNX(ctx, Key(name), r.owner, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claiming name: %w", err)
	}
	return ok, nil
}

// Release frees name
func (r *NameRegistry) Release(ctx context.Context, name string) error {
	if err := r.client.Del(ctx, Key(name)).Err(); err != nil {
		return fmt.Errorf("releasing name: %w", err)
	}
	return nil
}

// Owner returns who holds name, or "" when it is free
func (r *NameRegistry) Owner(ctx context.Context, name string) (string, error) {
	owner, err := r.client.Get(ctx, Key(name)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return owner, nil
}

// Health checks Redis connectivity
func (r *NameRegistry) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *NameRegistry) Close() error {
	return r.client.Close()
}
