// Package redis keeps the logistics provider's bearer token in Redis so all
// service instances share one login.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "shipping:logistics:token"

type TokenStore struct {
	client *redis.Client
	key    string
}

// NewTokenStore stores the token under key, or a default key when key is empty.
func NewTokenStore(client *redis.Client, key string) *TokenStore {
	if key == "" {
		key = defaultKey
	}
	return &TokenStore{client: client, key: key}
}

func (s *TokenStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read provider token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) SetToken(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("store provider token: %w", err)
	}
	return nil
}

func (s *TokenStore) Invalidate(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("invalidate provider token: %w", err)
	}
	return nil
}
