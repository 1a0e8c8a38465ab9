package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"storyline/app/metrics"

	"golang.org/x/sync/singleflight"
)

// Status tells how a Get was served.
type Status string

const (
	StatusMiss  Status = "MISS"
	StatusHit   Status = "HIT"
	StatusStale Status = "STALE"
)

// Loader generates the value for key. Errors are returned to the caller and
// never cached.
type Loader func(ctx context.Context, key string) ([]byte, error)

// Cache serves values from a Store, generating on miss and regenerating in
// the background once an entry is older than its TTL. Generation is
// de-duplicated per key: concurrent callers share one in-flight load.
type Cache struct {
	store   Store
	load    Loader
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger

	group      singleflight.Group
	mutex      sync.Mutex
	refreshing map[string]bool
	wg         sync.WaitGroup
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithTimeout bounds each generation.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

func New(store Store, load Loader, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		load:       load,
		ttl:        ttl,
		timeout:    30 * time.Second,
		now:        time.Now,
		logger:     slog.Default(),
		refreshing: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key. A miss blocks on generation; a stale entry
// is returned at once while one regeneration runs in the background.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, Status, error) {
	entry, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		if !entry.Stale(c.now()) {
			metrics.PageCacheRequests.WithLabelValues(string(StatusHit)).Inc()
			return entry.Value, StatusHit, nil
		}
		c.revalidate(key)
		metrics.PageCacheRequests.WithLabelValues(string(StatusStale)).Inc()
		return entry.Value, StatusStale, nil
	case errors.Is(err, ErrMiss):
	default:
		c.logger.Warn("cache read failed, generating", "key", key, "error", err)
	}

	metrics.PageCacheRequests.WithLabelValues(string(StatusMiss)).Inc()
	value, err := c.Refresh(ctx, key)
	if err != nil {
		return nil, StatusMiss, err
	}
	return value, StatusMiss, nil
}

// Refresh generates key now, joining an in-flight generation if there is one.
// The generation outlives ctx's cancellation so joined callers are not
// failed by the first caller going away.
func (c *Cache) Refresh(ctx context.Context, key string) ([]byte, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		return c.generate(context.WithoutCancel(ctx), key)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Wait blocks until background regenerations finish.
func (c *Cache) Wait() {
	c.wg.Wait()
}

func (c *Cache) revalidate(key string) {
	c.mutex.Lock()
	if c.refreshing[key] {
		c.mutex.Unlock()
		return
	}
	c.refreshing[key] = true
	c.wg.Add(1)
	c.mutex.Unlock()

	go func() {
		defer c.wg.Done()
		defer func() {
			c.mutex.Lock()
			delete(c.refreshing, key)
			c.mutex.Unlock()
		}()

		if _, err := c.Refresh(context.Background(), key); err != nil {
			// The stale entry keeps being served.
			c.logger.Error("background regeneration failed", "key", key, "error", err)
		}
	}()
}

func (c *Cache) generate(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := c.now()
	value, err := c.load(ctx, key)
	metrics.PageGenerations.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	entry := &Entry{Value: value, GeneratedAt: c.now(), TTL: c.ttl}
	if err := c.store.Set(ctx, key, entry); err != nil {
		c.logger.Error("cache write failed", "key", key, "error", err)
	}
	c.logger.Debug("page generated", "key", key, "took", c.now().Sub(start))
	return value, nil
}
