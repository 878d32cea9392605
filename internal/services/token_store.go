package services

import (
	"sync"
	"time"
)

// DefaultCleanupInterval is how often expired revocations are dropped.
const DefaultCleanupInterval = time.Hour

// TokenStore remembers revoked session ids until the session would have
// expired anyway.
type TokenStore struct {
	revoked map[string]time.Time // token id -> expiry
	mu      sync.RWMutex
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewTokenStore starts a store that drops expired entries every interval.
// Close stops the cleanup goroutine.
func NewTokenStore(interval time.Duration) *TokenStore {
	ts := &TokenStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go ts.cleanupExpiredTokens(interval)
	return ts
}

// Revoke blocks the token id until expiresAt.
func (ts *TokenStore) Revoke(id string, expiresAt time.Time) {
	if id == "" {
		return
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.revoked[id] = expiresAt
}

// IsRevoked reports whether the token id was revoked.
func (ts *TokenStore) IsRevoked(id string) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	_, ok := ts.revoked[id]
	return ok
}

// Len returns the number of revoked ids still tracked.
func (ts *TokenStore) Len() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.revoked)
}

func (ts *TokenStore) Close() {
	ts.stopOnce.Do(func() { close(ts.stop) })
	<-ts.done
}

func (ts *TokenStore) purge() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	now := ts.now()
	for id, exp := range ts.revoked {
		if now.After(exp) {
			delete(ts.revoked, id)
		}
	}
}

func (ts *TokenStore) cleanupExpiredTokens(interval time.Duration) {
	defer close(ts.done)
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ts.purge()
		case <-ts.stop:
			return
		}
	}
}
