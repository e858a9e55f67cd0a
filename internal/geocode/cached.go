package geocode

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/skytrace/missionmap/internal/cache"
)

// flightTimeout bounds a shared upstream call, which outlives the
// cancellation of whichever caller started it.
const flightTimeout = 30 * time.Second

type placeLookup interface {
	Reverse(ctx context.Context, lat, lng float64) (Place, error)
}

// Cached memoizes a Lookup. Concurrent lookups of the same rounded
// coordinate share one upstream call. Failures are not cached.
type Cached struct {
	next   Lookup
	labels *cache.LRU[string, string]
	group  singleflight.Group
	store  *Store
	logger *slog.Logger
}

// NewCached wraps next. store may be nil.
func NewCached(next Lookup, size int, store *Store, logger *slog.Logger) (*Cached, error) {
	labels, err := cache.NewLRU[string, string](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{next: next, labels: labels, store: store, logger: logger}, nil
}

// Label implements Lookup.
func (c *Cached) Label(ctx context.Context, lat, lng float64) (string, error) {
	key := cacheKey(lat, lng)
	if label, ok := c.labels.Get(key); ok {
		return label, nil
	}

	flight := c.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()
		return c.fetch(fctx, key, lat, lng)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			c.logger.Debug("shared label lookup", "key", key)
		}
		return res.Val.(string), nil
	}
}

// Stats returns cache hits and misses.
func (c *Cached) Stats() (hits, misses int) {
	return c.labels.Hits.Value(), c.labels.Misses.Value()
}

func (c *Cached) fetch(ctx context.Context, key string, lat, lng float64) (string, error) {
	if c.store != nil {
		label, ok, err := c.store.Get(ctx, key)
		if err != nil {
			c.logger.Warn("place store read failed", "key", key, "error", err)
		} else if ok {
			c.labels.Add(key, label)
			return label, nil
		}
	}

	var (
		label   string
		address map[string]string
		err     error
	)
	if pl, ok := c.next.(placeLookup); ok {
		var p Place
		p, err = pl.Reverse(ctx, lat, lng)
		label, address = p.Label, p.Address
	} else {
		label, err = c.next.Label(ctx, lat, lng)
	}
	if err != nil {
		return "", err
	}
	if label == "" {
		return "", ErrNoResult
	}

	c.labels.Add(key, label)
	if c.store != nil {
		if err := c.store.Put(ctx, key, label, address); err != nil {
			c.logger.Warn("place store write failed", "key", key, "error", err)
		}
	}
	return label, nil
}
