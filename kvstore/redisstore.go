package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-donor-portal/internal/errors"
	"github.com/redis/go-redis/v9"
)

const defaultRedisOpTimeout = 2 * time.Second

// RedisStore is a Store backed by redis. Each call runs with its own timeout
// because the Store interface carries no context.
type RedisStore struct {
	client    redis.UniversalClient
	ttl       time.Duration
	opTimeout time.Duration
}

var _ Store = (*RedisStore)(nil)

// RedisOption configures a RedisStore
type RedisOption func(*RedisStore)

// WithKeyTTL expires keys that have not been written for ttl. Zero keeps keys forever.
func WithKeyTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithOpTimeout bounds every redis round trip
func WithOpTimeout(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.opTimeout = d
	}
}

// NewRedisStore wraps an existing client
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		opTimeout: defaultRedisOpTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DialRedis parses a redis URL and checks the connection
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("[DialRedis] parse url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[DialRedis] failed to connect to Redis: %w: %w", apperrors.ErrStorageUnavailable, err)
	}
	return client, nil
}

func (s *RedisStore) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w: %w", key, apperrors.ErrStorageUnavailable, err)
	}
	return v, nil
}

func (s *RedisStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w: %w", key, apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w: %w", key, apperrors.ErrStorageUnavailable, err)
	}
	return nil
}
