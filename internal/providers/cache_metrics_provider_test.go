package providers

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMetrics struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (c *countingMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (c *countingMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (c *countingMetrics) IncIngested()                                     {}
func (c *countingMetrics) IncBroadcasts()                                   {}
func (c *countingMetrics) ObserveJournalAppend(_ time.Duration)             {}

func (c *countingMetrics) IncCacheHits() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits++
}

func (c *countingMetrics) IncCacheMisses() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
}

type mapCache struct {
	data map[string][]byte
}

func (m *mapCache) Get(key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, ErrCacheMiss
}

func (m *mapCache) Set(key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mapCache) IncrBy(_ string, delta int64) (int64, error) { return delta, nil }

func TestMetricsCacheProvider_CountsHitsAndMisses(t *testing.T) {
	metrics := &countingMetrics{}
	cache := &MetricsCacheProvider{
		inner:   &mapCache{data: map[string][]byte{"hit": []byte("x")}},
		metrics: metrics,
	}

	_, err := cache.Get("hit")
	require.NoError(t, err)
	_, err = cache.Get("miss")
	require.ErrorIs(t, err, ErrCacheMiss)
	_, err = cache.Get("hit")
	require.NoError(t, err)

	assert.Equal(t, 2, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}

func TestMetricsCacheProvider_SetAndIncrPassThrough(t *testing.T) {
	metrics := &countingMetrics{}
	inner := &mapCache{data: map[string][]byte{}}
	cache := &MetricsCacheProvider{inner: inner, metrics: metrics}

	require.NoError(t, cache.Set("k", []byte("v"), time.Hour))
	assert.Equal(t, []byte("v"), inner.data["k"])

	val, err := cache.IncrBy("c", 3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, val)
	assert.Zero(t, metrics.hits)
	assert.Zero(t, metrics.misses)
}
