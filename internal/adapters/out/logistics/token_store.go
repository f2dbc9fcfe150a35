package logistics

import (
	"context"
	"sync"
	"time"

	"shipping/internal/pkg/clock"
)

// DefaultTokenTTL is how long a login token is reused before logging in again.
const DefaultTokenTTL = 24 * time.Hour

// TokenStore keeps the provider's bearer token between calls. Token returns
// an empty string when no valid token is stored. The Redis store lets every
// instance share one login.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// MemoryTokenStore keeps the token in process.
type MemoryTokenStore struct {
	clock clock.Clock

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewMemoryTokenStore(clk clock.Clock) *MemoryTokenStore {
	return &MemoryTokenStore{clock: clk}
}

func (s *MemoryTokenStore) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" || !s.clock.Now().Before(s.expiresAt) {
		return "", nil
	}
	return s.token, nil
}

func (s *MemoryTokenStore) SetToken(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.expiresAt = s.clock.Now().Add(ttl)
	return nil
}

func (s *MemoryTokenStore) Invalidate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.expiresAt = time.Time{}
	return nil
}
