package auth

import (
	"sync"
	"time"
)

// revocationList remembers logged-out tokens until they would have expired anyway.
type revocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newRevocationList() *revocationList {
	return &revocationList{entries: make(map[string]time.Time)}
}

func (r *revocationList) revoke(key string, until time.Time, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, exp := range r.entries {
		if now.After(exp) {
			delete(r.entries, k)
		}
	}
	r.entries[key] = until
}

func (r *revocationList) revoked(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key]
	return ok
}
