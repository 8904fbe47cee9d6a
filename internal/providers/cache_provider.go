package providers

import (
	"errors"
	"hash/fnv"
	"pulsed/internal/structures"
	"strconv"
	"sync"
	"time"
	"unsafe"

	"github.com/coocood/freecache"
)

// ErrCacheMiss distinguishes "no data yet" from a store fault. Readers
// must be able to tell the two apart, so Get never folds them together.
var ErrCacheMiss = errors.New("cache: key not found")

const incrStripes = 32

type CacheProviderInterface interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	// IncrBy atomically adds delta to the integer stored at key and
	// returns the new value. A missing key starts at zero.
	IncrBy(key string, delta int64) (int64, error)
}

type CacheProvider struct {
	cache   *freecache.Cache
	stripes [incrStripes]sync.Mutex
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopCache{}
	}

	sizeBytes := conf.Cache.Size * 1024 * 1024
	logger.Infof(TypeApp, "Cache initialized: %dMB", conf.Cache.Size)

	return &CacheProvider{
		cache: freecache.NewCache(sizeBytes),
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// Safe when the result is only read (not modified), which is the case
// for freecache; it copies keys internally.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, error) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return val, nil
}

func (c *CacheProvider) Set(key string, value []byte, ttl time.Duration) error {
	return c.cache.Set(unsafeStringToBytes(key), value, int(ttl.Seconds()))
}

func (c *CacheProvider) IncrBy(key string, delta int64) (int64, error) {
	stripe := &c.stripes[stripeIndex(key)]
	stripe.Lock()
	defer stripe.Unlock()

	var current int64
	if val, err := c.cache.Get(unsafeStringToBytes(key)); err == nil {
		parsed, perr := strconv.ParseInt(string(val), 10, 64)
		if perr == nil {
			current = parsed
		}
	} else if !errors.Is(err, freecache.ErrNotFound) {
		return 0, err
	}

	next := current + delta
	// Counters carry no TTL of their own; the cache's eviction policy
	// is the retention policy.
	err := c.cache.Set(unsafeStringToBytes(key), []byte(strconv.FormatInt(next, 10)), 0)
	if err != nil {
		return 0, err
	}
	return next, nil
}

func stripeIndex(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write(unsafeStringToBytes(key))
	return h.Sum32() % incrStripes
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, error)                  { return nil, ErrCacheMiss }
func (n *noopCache) Set(_ string, _ []byte, _ time.Duration) error { return nil }
func (n *noopCache) IncrBy(_ string, delta int64) (int64, error)   { return delta, nil }
