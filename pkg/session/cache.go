package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache is the shared fast-path session store. Get returns (nil, nil) on a
// miss; a miss is not an error. A zero ttl on Set stores the entry without
// forced expiry.
type Cache interface {
	Get(ctx context.Context, token string) (*Session, error)
	Set(ctx context.Context, token string, sess *Session, ttl time.Duration) error
}

const sessionKeyPrefix = "session:"

// RedisCache implements Cache on a shared redis client. Each Get/Set is a
// single redis round trip; the client serializes access internally, so no
// additional locking wraps a whole resolution.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redis and verifies the connection with a ping.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Get retrieves a cached session by its bearer token.
func (c *RedisCache) Get(ctx context.Context, token string) (*Session, error) {
	data, err := c.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return nil, nil // Cache miss
	} else if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		// Corrupt entry: drop it and treat as a miss on the next lookup
		c.client.Del(ctx, sessionKeyPrefix+token)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// Set stores a session under its bearer token. ttl of zero means no expiry.
func (c *RedisCache) Set(ctx context.Context, token string, sess *Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return c.client.Set(ctx, sessionKeyPrefix+token, data, ttl).Err()
}

// Ping checks redis connectivity (health endpoint).
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
