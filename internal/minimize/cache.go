// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package minimize

import "fmt"

// TriState is the memoized sufficiency verdict for one subset.
type TriState int

const (
	Unknown TriState = iota
	Sufficient
	Insufficient
)

// String returns the verdict name for logs and panics.
func (t TriState) String() string {
	switch t {
	case Sufficient:
		return "sufficient"
	case Insufficient:
		return "insufficient"
	default:
		return "unknown"
	}
}

// Cache memoizes sufficiency verdicts by canonical subset key. The
// oracle is assumed consistent for the lifetime of one run, so a key is
// never evaluated twice and never changes state once settled.
type Cache struct {
	states map[string]TriState
}

// NewCache returns an empty cache for one minimization run.
func NewCache() *Cache {
	return &Cache{states: make(map[string]TriState)}
}

// Lookup returns the settled state for key, if any.
func (c *Cache) Lookup(key string) (TriState, bool) {
	st, ok := c.states[key]
	return st, ok
}

// Store settles key to state. Re-storing the same state is a harmless
// no-op; storing a conflicting state violates the write-once invariant
// and panics.
func (c *Cache) Store(key string, state TriState) {
	if prev, ok := c.states[key]; ok {
		if prev != state {
			panic(fmt.Sprintf("cache key %q rewritten from %s to %s", key, prev, state))
		}
		return
	}
	c.states[key] = state
}

// Len returns the number of settled keys.
func (c *Cache) Len() int {
	return len(c.states)
}
