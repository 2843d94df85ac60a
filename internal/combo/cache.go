package combo

import (
	"sync"

	"github.com/roach88/hypertoe/internal/board"
)

// Cache memoizes generated sets per Key. Regeneration only happens on
// configuration change, so entries are never evicted; the key space is
// bounded by the board limits.
//
// Thread-safety: Cache is safe for concurrent use.
type Cache struct {
	mu   sync.Mutex
	sets map[Key]*Set
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{sets: make(map[Key]*Set)}
}

// Get returns the set for b and winLength, generating it on first use.
func (c *Cache) Get(b board.Board, winLength int) (*Set, error) {
	key := Key{Dimension: b.Dimension(), Size: b.Size(), WinLength: winLength}

	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sets[key]; ok {
		return s, nil
	}
	s, err := Generate(b, winLength)
	if err != nil {
		return nil, err
	}
	c.sets[key] = s
	return s, nil
}

// Len returns the number of cached sets.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sets)
}
