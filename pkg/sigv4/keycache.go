package sigv4

import (
	"sync"
)

// KeyCache memoizes derived signing keys per access key and credential scope.
//
// A signing key is only valid for the date in its scope, so entries from any
// other date are dropped whenever a key for a new date is stored.
type KeyCache struct {
	mu     sync.Mutex
	date   string
	values map[string]Key
}

// NewKeyCache creates an empty cache
func NewKeyCache() *KeyCache {
	return &KeyCache{
		values: make(map[string]Key),
	}
}

// Get returns the signing key for scope, deriving and storing it on a miss
func (c *KeyCache) Get(accessKeyID, secretAccessKey string, scope Scope) Key {
	id := accessKeyID + "/" + scope.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	if key, ok := c.values[id]; ok {
		return key
	}

	if scope.Date != c.date {
		c.values = make(map[string]Key)
		c.date = scope.Date
	}

	key := DeriveScopedKey(secretAccessKey, scope)
	c.values[id] = key
	return key
}

// Len returns the number of cached keys
func (c *KeyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}
