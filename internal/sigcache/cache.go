package sigcache

import (
	"container/list"
	"path/filepath"
	"sync"
	"time"
)

// Entry is a cached directory size together with the signature it was computed under.
type Entry struct {
	// Size is the total size in bytes.
	Size int64
	// CachedAt is when the entry was stored.
	CachedAt time.Time
	// Signature is the shallow signature of the directory at CachedAt.
	Signature Signature
}

type element struct {
	key   string
	entry Entry
}

// Cache is an LRU cache of directory sizes with a time-to-live.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	items      map[string]*list.Element
	order      *list.List // front is most recently used
	now        func() time.Time
	onEvict    func(path string)
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the clock used to stamp and age entries.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithEvictHook registers a callback invoked for every LRU eviction.
// It runs with the cache lock held and must not call back into the cache.
func WithEvictHook(fn func(path string)) Option {
	return func(c *Cache) {
		c.onEvict = fn
	}
}

// New creates a cache holding at most maxEntries entries, each usable for ttl.
func New(maxEntries int, ttl time.Duration, opts ...Option) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}

	c := &Cache{
		maxEntries: maxEntries,
		ttl:        ttl,
		items:      make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Canonical returns the absolute, cleaned form of path used as the cache key.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	return abs
}

// Get returns a copy of the entry stored for path, or nil.
// A hit marks the entry as most recently used; freshness is not checked.
func (c *Cache) Get(path string) *Entry {
	key := Canonical(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil
	}

	c.order.MoveToFront(elem)

	entry := elem.Value.(*element).entry //nolint:forcetypeassert // Only *element is stored

	return &entry
}

// Valid reports whether e exists, matches current and is younger than the TTL.
func (c *Cache) Valid(e *Entry, current Signature) bool {
	if e == nil || e.Signature != current {
		return false
	}

	return c.now().Sub(e.CachedAt) <= c.ttl
}

// Put stores size and sig for path, evicting the least recently used entry
// when the cache is full.
func (c *Cache) Put(path string, size int64, sig Signature) {
	key := Canonical(path)
	entry := Entry{Size: size, CachedAt: c.now(), Signature: sig}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*element).entry = entry //nolint:forcetypeassert // Only *element is stored
		c.order.MoveToFront(elem)

		return
	}

	c.items[key] = c.order.PushFront(&element{key: key, entry: entry})

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)

		evicted := oldest.Value.(*element).key //nolint:forcetypeassert // Only *element is stored
		delete(c.items, evicted)

		if c.onEvict != nil {
			c.onEvict(evicted)
		}
	}
}

// Invalidate removes the entry for path, if any.
func (c *Cache) Invalidate(path string) {
	key := Canonical(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.Remove(elem)
		delete(c.items, key)
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}
