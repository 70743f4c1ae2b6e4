package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "agreement:ratelimit:"

// fixedWindowScript increments the counter and starts the window on the first hit.
// It returns the count and the remaining window in milliseconds.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisRateLimitStore implements RateLimitStore with a server-side script, so
// every instance sharing the Redis database shares the same budget
type RedisRateLimitStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRateLimitStore connects to Redis and verifies the connection
func NewRedisRateLimitStore(cfg RedisConfig) (*RedisRateLimitStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRateLimitStoreWithClient(client, ""), nil
}

// NewRedisRateLimitStoreWithClient creates a store with an existing Redis client
func NewRedisRateLimitStoreWithClient(client *redis.Client, keyPrefix string) *RedisRateLimitStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisRateLimitStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Allow increments the window counter for key
func (s *RedisRateLimitStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	ms := window.Milliseconds()
	if ms < 1 {
		ms = 1
	}

	vals, err := fixedWindowScript.Run(ctx, s.client, []string{s.keyPrefix + key}, ms).Int64Slice()
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to count request: %w", err)
	}
	if len(vals) != 2 {
		return RateLimitResult{}, fmt.Errorf("unexpected rate limit reply: %v", vals)
	}

	resetAt := time.Now().Add(time.Duration(vals[1]) * time.Millisecond)
	return resultFor(vals[0], limit, resetAt), nil
}

// Close closes the Redis client
func (s *RedisRateLimitStore) Close() error {
	return s.client.Close()
}

var _ RateLimitStore = (*RedisRateLimitStore)(nil)
