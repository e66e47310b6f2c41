package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisKey is used when no key is configured.
const DefaultRedisKey = "blogen:session:token"

// ErrRedisDisabled is returned by a nil Redis store.
var ErrRedisDisabled = errors.New("redis token store is disabled")

// Redis stores the token under a single key, so several terminals on one
// host can share a login.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis connects lazily to the server at url.
func NewRedis(url, key string) (*Redis, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("redis url is empty")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: redis.NewClient(opt), key: key}, nil
}

// Key returns the redis key holding the token.
func (r *Redis) Key() string {
	if r == nil {
		return ""
	}
	return r.key
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return ErrRedisDisabled
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Load(ctx context.Context) (string, error) {
	if r == nil || r.client == nil {
		return "", ErrRedisDisabled
	}
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("redis get token: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (r *Redis) Save(ctx context.Context, token string) error {
	if r == nil || r.client == nil {
		return ErrRedisDisabled
	}
	if err := r.client.Set(ctx, r.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if r == nil || r.client == nil {
		return ErrRedisDisabled
	}
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del token: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
