package confirm

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/opencampus/paygate/internal/clock"
)

// MemoryStore is the single-instance fallback when redis is not configured,
// and the store used by tests.
type MemoryStore struct {
	clock clock.Clock
	ttl   time.Duration

	mu     sync.Mutex
	tokens map[string]time.Time // key -> expiry
}

func NewMemoryStore(clk clock.Clock, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		clock:  clk,
		ttl:    ttl,
		tokens: make(map[string]time.Time),
	}
}

func (s *MemoryStore) Issue(ctx context.Context, userID snowflake.ID) (string, error) {
	_ = ctx
	if userID == 0 {
		return "", ErrInvalidUser
	}
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.tokens[userID.String()+":"+token] = s.clock.Now().Add(s.ttl)
	return token, nil
}

func (s *MemoryStore) Consume(ctx context.Context, userID snowflake.ID, token string) (bool, error) {
	_ = ctx
	if userID == 0 || token == "" {
		return false, nil
	}
	key := userID.String() + ":" + token

	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.tokens[key]
	if !ok {
		return false, nil
	}
	delete(s.tokens, key)
	if s.clock.Now().After(expiry) {
		return false, nil
	}
	return true, nil
}

// prune drops expired tokens; called with the lock held.
func (s *MemoryStore) prune() {
	now := s.clock.Now()
	for key, expiry := range s.tokens {
		if now.After(expiry) {
			delete(s.tokens, key)
		}
	}
}
