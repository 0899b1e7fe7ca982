// Package redislock provides short-lived exclusive locks on top of Redis,
// so that several service instances can serialize work on the same key.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "kelas:lock:"

// Deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Config holds Redis connection details.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Locker grants locks with SET NX PX and releases them with a token check.
type Locker struct {
	client *redis.Client
	prefix string
}

// NewLocker connects to Redis and checks the connection with PING.
func NewLocker(ctx context.Context, cfg Config) (*Locker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}
	return New(client, cfg.KeyPrefix), nil
}

// New wraps an existing client.
func New(client *redis.Client, keyPrefix string) *Locker {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &Locker{client: client, prefix: keyPrefix}
}

// TryLock takes key for ttl without waiting. acquired is false when another
// holder owns the key.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	fullKey := l.prefix + key
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func() {
		// The request context may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("Warning: failed to release lock %s: %v", key, err)
		}
	}
	return unlock, true, nil
}

// Close closes the underlying client.
func (l *Locker) Close() error {
	return l.client.Close()
}

// Ping checks the Redis connection.
func (l *Locker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
