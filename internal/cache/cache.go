package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/bluele/gcache"
)

const (
	DefaultTTL  = 5 * time.Minute
	DefaultSize = 1000
)

// Cache memoizes query results per namespace (one namespace per backend).
// Entries expire after a fixed TTL; writes invalidate a whole namespace.
type Cache struct {
	ttl   time.Duration
	size  int
	clock gcache.Clock

	mu         sync.Mutex
	namespaces map[string]*namespace
}

type namespace struct {
	mu         sync.Mutex
	store      gcache.Cache
	generation uint64
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSize bounds each namespace; the least recently used entry is evicted first.
func WithSize(size int) Option {
	return func(c *Cache) {
		if size > 0 {
			c.size = size
		}
	}
}

func WithClock(clock gcache.Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		ttl:        DefaultTTL,
		size:       DefaultSize,
		clock:      gcache.NewRealClock(),
		namespaces: make(map[string]*namespace),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) TTL() time.Duration { return c.ttl }

func (c *Cache) namespace(name string) *namespace {
	c.mu.Lock()
	defer c.mu.Unlock()

	ns, ok := c.namespaces[name]
	if !ok {
		ns = &namespace{
			store: gcache.New(c.size).
				LRU().
				Expiration(c.ttl).
				Clock(c.clock).
				Build(),
		}
		c.namespaces[name] = ns
	}
	return ns
}

// Get returns the live entry for key in namespace ns.
func (c *Cache) Get(ns, key string) (any, bool) {
	v, err := c.namespace(ns).store.Get(key)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Invalidate drops every entry of namespace ns.
func (c *Cache) Invalidate(ns string) {
	n := c.namespace(ns)
	n.mu.Lock()
	defer n.mu.Unlock()

	n.generation++
	n.store.Purge()
}

// Len counts unexpired entries in namespace ns.
func (c *Cache) Len(ns string) int {
	return c.namespace(ns).store.Len(true)
}

// Stats reports hit and miss counters of namespace ns.
func (c *Cache) Stats(ns string) (hits, misses uint64) {
	store := c.namespace(ns).store
	return store.HitCount(), store.MissCount()
}

// GetOrCompute returns the cached value for key, or runs compute and stores its result.
// A result is not stored when compute fails, or when ns was invalidated while computing,
// so a racing write never leaves a stale entry behind. The bool reports a cache hit.
func GetOrCompute[T any](c *Cache, ns, key string, compute func() (T, error)) (T, bool, error) {
	n := c.namespace(ns)

	if v, err := n.store.Get(key); err == nil {
		if typed, ok := v.(T); ok {
			return typed, true, nil
		}
	} else if !errors.Is(err, gcache.KeyNotFoundError) {
		var zero T
		return zero, false, err
	}

	n.mu.Lock()
	generation := n.generation
	n.mu.Unlock()

	value, err := compute()
	if err != nil {
		var zero T
		return zero, false, err
	}

	n.mu.Lock()
	if n.generation == generation {
		_ = n.store.Set(key, value)
	}
	n.mu.Unlock()

	return value, false, nil
}
