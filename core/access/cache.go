package access

import (
	"sync"
	"time"
)

// maxCacheEntries bounds the cache size. A Write at the limit first sweeps
// expired entries and drops the whole cache if the sweep freed nothing.
const maxCacheEntries = 16384

// ClaimsCache is an in-memory cache for validated bearer claims, keyed by
// the token string. It saves the signature verification on repeated
// requests with the same token; a new token always forces a fresh
// validation. Expired entries are evicted on read.
type ClaimsCache struct {
	mutex sync.RWMutex
	cache map[string]*Claims
}

// NewClaimsCache creates a new claims cache.
func NewClaimsCache() *ClaimsCache {
	return &ClaimsCache{cache: make(map[string]*Claims)}
}

// Read returns the cached claims for a token, or nil. Claims whose token
// lifetime has passed are removed and reported as a miss.
// This function is go-routine safe.
func (c *ClaimsCache) Read(token string) *Claims {
	c.mutex.RLock()
	claims, ok := c.cache[token]
	c.mutex.RUnlock()
	if !ok {
		return nil
	}
	if expired(claims) {
		c.mutex.Lock()
		delete(c.cache, token)
		c.mutex.Unlock()
		return nil
	}
	return claims
}

// Write stores validated claims for a token.
// This function is go-routine safe.
func (c *ClaimsCache) Write(token string, claims *Claims) {
	c.mutex.Lock()
	if len(c.cache) >= maxCacheEntries {
		for t, cached := range c.cache {
			if expired(cached) {
				delete(c.cache, t)
			}
		}
		if len(c.cache) >= maxCacheEntries {
			c.cache = make(map[string]*Claims)
		}
	}
	c.cache[token] = claims
	c.mutex.Unlock()
}

// expired re-checks the expiration of cached claims; the cache may outlive
// a token's lifetime.
func expired(claims *Claims) bool {
	return claims != nil && claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now())
}
