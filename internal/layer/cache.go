package layer

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/eqsource/internal/model"
)

// DefaultMaxEntries is the number of layers a Cache keeps by default.
const DefaultMaxEntries = 16

// Cache loads each layer reference once and shares the result. Concurrent
// requests for a reference that is still loading wait for the same load.
// Failed loads are not cached. Once more than the configured number of
// layers are held, the oldest is evicted.
type Cache struct {
	loader     *Loader
	group      singleflight.Group
	maxEntries int

	mu      sync.RWMutex
	entries map[string]any
	order   []string
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithMaxEntries caps the number of layers held. Values below 1 are ignored.
func WithMaxEntries(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// NewCache creates a Cache backed by loader.
func NewCache(loader *Loader, opts ...CacheOption) *Cache {
	c := &Cache{
		loader:     loader,
		maxEntries: DefaultMaxEntries,
		entries:    make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Land returns the land layer for ref, loading it on first use.
func (c *Cache) Land(ctx context.Context, ref string) (*model.LandLayer, error) {
	return cached(ctx, c, "land:"+ref, ref, c.loader.LoadLand)
}

// Faults returns the fault layer for ref, loading it on first use.
func (c *Cache) Faults(ctx context.Context, ref string) (*model.FaultLayer, error) {
	return cached(ctx, c, "faults:"+ref, ref, c.loader.LoadFaults)
}

// cached returns the entry for key or joins the load that produces it. The
// load itself runs detached from any caller, bounded by the loader's
// timeout, so one caller giving up does not fail the others. Each caller
// stops waiting when its own ctx is done.
func cached[T any](ctx context.Context, c *Cache, key, ref string, load func(context.Context, string) (T, error)) (T, error) {
	var zero T
	if v, ok := c.get(key); ok {
		return v.(T), nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if v, ok := c.get(key); ok {
			return v, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loader.opts.LoadTimeout)
		defer cancel()
		v, err := load(loadCtx, ref)
		if err != nil {
			return nil, err
		}
		c.put(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, &model.ResourceError{Ref: ref, Err: ctx.Err()}
	}
}

func (c *Cache) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = v
	for len(c.order) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		zap.L().Debug("layer cache evicted layer", zap.String("key", oldest))
	}
}
