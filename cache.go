package corelabel

import (
	"encoding/binary"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/coregx/corelabel/label"
)

// Cache compiles patterns once and hands out the shared *Pattern on later
// requests for the same text and Config. Concurrent requests for a pattern
// that is not cached yet share one compilation. Failed compilations are not
// cached.
//
// A Cache is safe for concurrent use.
type Cache struct {
	resolver label.Resolver
	config   Config

	mu sync.RWMutex
	// entries is keyed by the xxhash of the pattern text and config;
	// colliding patterns share a bucket.
	entries map[uint64][]*Pattern
	flight  singleflight.Group
}

// NewCache creates an empty cache that compiles with r and, unless
// CompileWithConfig says otherwise, config.
func NewCache(r label.Resolver, config Config) *Cache {
	return &Cache{
		resolver: r,
		config:   config,
		entries:  make(map[uint64][]*Pattern),
	}
}

// Compile returns the cached pattern for text under the cache's config,
// compiling it on first use.
func (c *Cache) Compile(text string) (*Pattern, error) {
	return c.CompileWithConfig(text, c.config)
}

// CompileWithConfig is like Compile but compiles with config. Patterns
// compiled from the same text with different configs are cached separately.
func (c *Cache) CompileWithConfig(text string, config Config) (*Pattern, error) {
	key := cacheKey(text, config)
	if p := c.lookup(key, text, config); p != nil {
		return p, nil
	}

	v, err, _ := c.flight.Do(strconv.FormatUint(key, 16)+":"+text, func() (any, error) {
		if p := c.lookup(key, text, config); p != nil {
			return p, nil
		}
		p, err := CompileWithConfig(c.resolver, text, config)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = append(c.entries[key], p)
		c.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := v.(*Pattern)
	if p.config != config {
		// Two configs hashed alike and shared the flight; compile our own.
		return c.CompileWithConfig(text, config)
	}
	return p, nil
}

func cacheKey(text string, config Config) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(config.LoopLimit))
	binary.LittleEndian.PutUint64(buf[8:], uint64(config.MaxNestingDepth))
	binary.LittleEndian.PutUint64(buf[16:], uint64(config.MaxCallDepth))

	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(text)
	return d.Sum64()
}

func (c *Cache) lookup(key uint64, text string, config Config) *Pattern {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.entries[key] {
		if p.pattern == text && p.config == config {
			return p
		}
	}
	return nil
}

// Len returns the number of cached patterns
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, bucket := range c.entries {
		n += len(bucket)
	}
	return n
}

// Reset drops every cached pattern
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[uint64][]*Pattern)
	c.mu.Unlock()
}
