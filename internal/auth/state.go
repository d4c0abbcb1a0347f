package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// stateStore hands out single-use OAuth state values that expire after ttl.
type stateStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	expires map[string]time.Time
}

func newStateStore(ttl time.Duration, now func() time.Time) *stateStore {
	return &stateStore{ttl: ttl, now: now, expires: make(map[string]time.Time)}
}

func (s *stateStore) issue() string {
	state := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.expires {
		if now.After(exp) {
			delete(s.expires, k)
		}
	}
	s.expires[state] = now.Add(s.ttl)
	return state
}

// consume reports whether state was issued and is still live. It always
// forgets state.
func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[state]
	delete(s.expires, state)
	return ok && !s.now().After(exp)
}
