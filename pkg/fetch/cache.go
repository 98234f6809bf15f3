package fetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pitwall-dev/pitwall/log"
)

// based on github.com/kittpat1413/go-common/framework/cache/localcache/localcache.go

var ErrCacheMiss = errors.New("cache miss")

type (
	LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

	Option[K comparable, V any] func(*Cache[K, V])

	item[V any] struct {
		data      V
		fetchedAt time.Time
	}

	// Cache is a per-key TTL cache around an upstream loader. Refresh applies
	// per key; concurrent readers during a refresh may observe either the
	// stale or the fresh value (last write wins).
	Cache[K comparable, V any] struct {
		mutex  sync.Mutex
		items  map[K]item[V]
		ttl    time.Duration
		loader LoaderFunc[K, V]
		clock  func() time.Time
		l      *log.Logger
	}
)

func WithTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.ttl = ttl
	}
}

func WithClock[K comparable, V any](clock func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.clock = clock
	}
}

func WithLogger[K comparable, V any](arg *log.Logger) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.l = arg
	}
}

func New[K comparable, V any](loader LoaderFunc[K, V], opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		items:  make(map[K]item[V]),
		ttl:    5 * time.Minute,
		loader: loader,
		clock:  time.Now,
		l:      log.Default().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value while it is fresh, otherwise reloads it. A
// loader failure returns the stale value (if any) along with the error, so
// callers that must report "data unavailable" can do so.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if entry, ok := c.items[key]; ok {
		if c.clock().Sub(entry.fetchedAt) < c.ttl {
			return entry.data, nil
		}
	}
	return c.load(ctx, key)
}

// GetSoft is the fail-soft variant used by the polling loops: a loader failure
// is logged and the previous value (or the zero value) is returned. Upstream
// flakiness must never propagate into a polling iteration.
func (c *Cache[K, V]) GetSoft(ctx context.Context, key K) V {
	v, err := c.Get(ctx, key)
	if err != nil {
		c.l.Debug("serving stale or empty value", log.Any("key", key), log.ErrorField(err))
	}
	return v
}

func (c *Cache[K, V]) load(ctx context.Context, key K) (V, error) {
	if c.loader == nil {
		var zero V
		return zero, ErrCacheMiss
	}
	v, err := c.loader(ctx, key)
	if err != nil {
		c.l.Error("error loading entry", log.Any("key", key), log.ErrorField(err))
		// keep the stale entry; it is still the best answer we have
		if entry, ok := c.items[key]; ok {
			return entry.data, err
		}
		var zero V
		return zero, err
	}
	c.items[key] = item[V]{data: v, fetchedAt: c.clock()}
	return v, nil
}

func (c *Cache[K, V]) Invalidate(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = make(map[K]item[V])
}

// Single wraps a Cache for unkeyed resources (latest session, standings, ...).
type Single[V any] struct {
	cache *Cache[struct{}, V]
}

func NewSingle[V any](loader func(ctx context.Context) (V, error), opts ...Option[struct{}, V]) *Single[V] {
	return &Single[V]{
		cache: New(func(ctx context.Context, _ struct{}) (V, error) {
			return loader(ctx)
		}, opts...),
	}
}

func (s *Single[V]) Get(ctx context.Context) (V, error) {
	return s.cache.Get(ctx, struct{}{})
}

func (s *Single[V]) GetSoft(ctx context.Context) V {
	return s.cache.GetSoft(ctx, struct{}{})
}

func (s *Single[V]) Invalidate() {
	s.cache.Invalidate(struct{}{})
}
