package auth

import "sync"

// RevocationRegistry tracks tokens that must be treated as invalid before
// their natural expiry. Entries are exact token strings and are never
// pruned: a revoked token stays revoked until the process exits or the
// set is cleared, so the set grows with logout volume. Single process
// only; this is not a distributed session store.
type RevocationRegistry struct {
	mu      sync.RWMutex
	revoked map[string]struct{}
}

func NewRevocationRegistry() *RevocationRegistry {
	return &RevocationRegistry{
		revoked: make(map[string]struct{}),
	}
}

// Revoke adds a token to the registry. Idempotent. The revocation is
// visible to all subsequent IsRevoked calls as soon as Revoke returns.
func (r *RevocationRegistry) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[token] = struct{}{}
}

// IsRevoked reports whether the exact token string has been revoked.
func (r *RevocationRegistry) IsRevoked(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.revoked[token]
	return ok
}

// Clear empties the registry. Administrative and test support only; not
// reachable from request handling.
func (r *RevocationRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked = make(map[string]struct{})
}

// Len returns the number of revoked entries, for operational visibility
// into registry growth.
func (r *RevocationRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.revoked)
}
