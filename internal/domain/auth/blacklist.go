package auth

import (
	"sync"
	"time"
)

// Blacklist holds tokens revoked before their natural expiry, so a
// logged-out bearer token stops working immediately. Entries are purged
// lazily once their expiry passes.
type Blacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewBlacklist() *Blacklist {
	return &Blacklist{tokens: make(map[string]time.Time)}
}

func (b *Blacklist) Revoke(token string, expiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.purgeLocked()
	b.tokens[token] = expiresAt
}

func (b *Blacklist) Revoked(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	expiresAt, ok := b.tokens[token]
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		delete(b.tokens, token)
		return false
	}
	return true
}

func (b *Blacklist) purgeLocked() {
	now := time.Now()
	for token, expiresAt := range b.tokens {
		if now.After(expiresAt) {
			delete(b.tokens, token)
		}
	}
}
