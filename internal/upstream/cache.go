package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aportsknife/aportsknife/internal/common/apkbuild"
	"github.com/aportsknife/aportsknife/internal/common/config"
	"github.com/aportsknife/aportsknife/internal/common/logger"
	"github.com/aportsknife/aportsknife/internal/common/xdg"
)

// ErrCacheCorrupted is returned when the cache file cannot be parsed
var ErrCacheCorrupted = errors.New("cache file is corrupted")

// CacheFile is the name of the cache inside the cache directory
const CacheFile = "upstream.json"

// CacheEntry is one cached upstream lookup
type CacheEntry struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

type cacheFile struct {
	Entries map[string]CacheEntry `json:"entries"`
}

// Cache stores upstream versions keyed by package name with TTL-based
// expiration. It is safe for concurrent use.
type Cache struct {
	entries map[string]CacheEntry
	ttl     time.Duration
	path    string
	mu      sync.RWMutex
	nowFunc func() time.Time
}

// CacheOption is a functional option for configuring Cache
type CacheOption func(*Cache)

// WithTTL sets a custom TTL for the cache
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithNowFunc sets a custom time function for testing
func WithNowFunc(fn func() time.Time) CacheOption {
	return func(c *Cache) {
		c.nowFunc = fn
	}
}

// DefaultCacheDir returns $XDG_CACHE_HOME/aportsknife
func DefaultCacheDir() (string, error) {
	return xdg.CacheDir()
}

// NewCache loads the cache in dir, creating dir when needed. A corrupted
// file is discarded and replaced on the next write.
func NewCache(dir string, opts ...CacheOption) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		entries: make(map[string]CacheEntry),
		ttl:     config.DefaultCacheTTL,
		path:    filepath.Join(dir, CacheFile),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("ignoring upstream cache: %v", err)
		c.entries = make(map[string]CacheEntry)
	}
	return c, nil
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
	}
	if cf.Entries != nil {
		c.entries = cf.Entries
	}
	return nil
}

// Path returns the cache file location
func (c *Cache) Path() string {
	return c.path
}

// Get returns the cached version of pkg unless missing or expired
func (c *Cache) Get(pkg string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pkg]
	if !ok || c.isExpired(entry) {
		return "", false
	}
	return entry.Version, true
}

func (c *Cache) isExpired(entry CacheEntry) bool {
	return c.nowFunc().Sub(entry.Timestamp) >= c.ttl
}

// Set records a version and persists the cache
func (c *Cache) Set(pkg, version, source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[pkg] = CacheEntry{
		Version:   version,
		Timestamp: c.nowFunc(),
		Source:    source,
	}
	return c.saveLocked()
}

// Cleanup drops expired entries and persists the cache
func (c *Cache) Cleanup() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for pkg, entry := range c.entries {
		if c.isExpired(entry) {
			delete(c.entries, pkg)
		}
	}
	return c.saveLocked()
}

// Clear removes every entry
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]CacheEntry)
	return c.saveLocked()
}

// Len returns the number of entries, expired ones included
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// saveLocked writes the cache atomically. Caller must hold the write lock.
func (c *Cache) saveLocked() error {
	data, err := json.MarshalIndent(cacheFile{Entries: c.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	if err := apkbuild.WriteFileAtomic(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}
