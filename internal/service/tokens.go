package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oakhaven/contracts/internal/model"
)

// tokenStore holds validated candidate payloads keyed by their save token
// until they are committed or expire. A token is single-use.
type tokenStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]pendingSave
}

type pendingSave struct {
	payload   *model.Contract
	expiresAt time.Time
}

func newTokenStore(ttl time.Duration) *tokenStore {
	return &tokenStore{
		ttl:     ttl,
		pending: map[string]pendingSave{},
	}
}

func (s *tokenStore) Put(payload *model.Contract) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[token] = pendingSave{
		payload:   payload,
		expiresAt: time.Now().Add(s.ttl),
	}
	return token
}

// Take removes and returns the payload for token, or false when the token
// is unknown or has expired.
func (s *tokenStore) Take(token string) (*model.Contract, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[token]
	if !ok {
		return nil, false
	}
	delete(s.pending, token)
	if time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.payload, true
}
