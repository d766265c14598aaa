package tokenmanager

import (
	"sync"
	"time"
)

// revocationSet records tokens invalidated before their natural expiry.
// It grows only while revoked tokens are still alive: entries whose token
// has expired are dropped on every Add, so the set stays bounded by the
// number of logouts within one token TTL.
//
// It has its own lock, independent of any repository synchronization.
type revocationSet struct {
	mu sync.Mutex

	// jti -> token natural expiry
	entries map[string]time.Time
}

func newRevocationSet() *revocationSet {
	return &revocationSet{entries: make(map[string]time.Time)}
}

func (s *revocationSet) Add(jti string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(time.Now())
	s.entries[jti] = expiresAt
}

func (s *revocationSet) Contains(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.entries[jti]
	if !ok {
		return false
	}

	// Expired entry is dead weight, the expiry check rejects such tokens
	// before the set is even consulted
	if !expiresAt.After(time.Now()) {
		delete(s.entries, jti)
		return false
	}

	return true
}

// Prune removes entries expired at the given moment, returns removed count
func (s *revocationSet) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.prune(now)
}

// prune must be called with the lock held
func (s *revocationSet) prune(now time.Time) int {
	removed := 0
	for jti, expiresAt := range s.entries {
		if !expiresAt.After(now) {
			delete(s.entries, jti)
			removed++
		}
	}
	return removed
}
