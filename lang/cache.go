package lang

import (
	"context"
	"log/slog"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/molang/log"
)

// DefaultCache backs [Compile] and [Eval].
//
//nolint:gochecknoglobals
var DefaultCache = NewCache()

// Compile returns the script for source from [DefaultCache], compiling it on
// first use.
func Compile(ctx context.Context, source string) (*Script, error) {
	return DefaultCache.Compile(ctx, source)
}

// ClearCache removes every entry from [DefaultCache].
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() { DefaultCache.Clear() }

// Cache maps source text to compiled scripts.
//
// Entries are spread across lock-striped shards selected by a hash of the
// source. Each source is compiled at most once while its entry is live, even
// when many goroutines request it at the same time. Failed compilations are
// not retained. Entries are never evicted; call [Cache.Clear] to reclaim
// memory.
type Cache struct {
	opts   []Option
	shards []shard
	config
}

type shard struct {
	entries map[string]*entry
	mu      sync.RWMutex
}

type entry struct {
	script *Script
	err    error
	once   sync.Once
}

// NewCache returns an empty cache that compiles with opts.
func NewCache(opts ...Option) *Cache {
	cfg := makeConfig(opts...)

	c := &Cache{
		opts:   opts,
		shards: make([]shard, cfg.shards),
		config: cfg,
	}

	for i := range c.shards {
		c.shards[i].entries = make(map[string]*entry)
	}

	return c
}

// Compile returns the cached script for source, compiling it on first use.
func (c *Cache) Compile(ctx context.Context, source string) (*Script, error) {
	hash := xxh3.HashString(source)
	sh := &c.shards[hash%uint64(len(c.shards))]

	sh.mu.RLock()
	e, hit := sh.entries[source]
	sh.mu.RUnlock()

	if !hit {
		sh.mu.Lock()

		if e, hit = sh.entries[source]; !hit {
			e = new(entry)
			sh.entries[source] = e
		}

		sh.mu.Unlock()
	}

	if c.logger.Enabled(ctx, log.LevelTrace) {
		c.logger.TraceContext(ctx, "cache lookup",
			slog.Uint64("source_hash", hash),
			slog.Bool("cache_hit", hit),
		)
	}

	e.once.Do(func() {
		e.script, e.err = NewScript(ctx, source, c.opts...)
		if e.err == nil {
			return
		}

		sh.mu.Lock()
		if sh.entries[source] == e {
			delete(sh.entries, source)
		}
		sh.mu.Unlock()
	})

	return e.script, e.err
}

// Len returns the number of cached scripts.
func (c *Cache) Len() int {
	n := 0

	for i := range c.shards {
		sh := &c.shards[i]

		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}

	return n
}

// Clear removes every cached script.
func (c *Cache) Clear() {
	for i := range c.shards {
		sh := &c.shards[i]

		sh.mu.Lock()
		clear(sh.entries)
		sh.mu.Unlock()
	}
}
