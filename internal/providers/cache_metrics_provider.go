package providers

import (
	"errors"
	"pulsed/internal/structures"
	"time"
)

// MetricsCacheProvider wraps a CacheProviderInterface and increments
// hit/miss counters on every Get call.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, error) {
	val, err := c.inner.Get(key)
	if err == nil {
		c.metrics.IncCacheHits()
	} else if errors.Is(err, ErrCacheMiss) {
		c.metrics.IncCacheMisses()
	}
	return val, err
}

func (c *MetricsCacheProvider) Set(key string, value []byte, ttl time.Duration) error {
	return c.inner.Set(key, value, ttl)
}

func (c *MetricsCacheProvider) IncrBy(key string, delta int64) (int64, error) {
	return c.inner.IncrBy(key, delta)
}

// NewInstrumentedCacheProvider creates a cache provider wrapped with metrics instrumentation.
// When cache is disabled, returns the plain noopCache without metrics wrapping
// to avoid counting phantom cache misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
