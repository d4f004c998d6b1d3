package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache implements a file-based cache with TTL
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// cacheEntry represents a cached item with expiration
type cacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewFileCache creates a new file cache
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	// 0750 keeps other users out of cached search terms
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}

	return &FileCache{
		dir: dir,
		ttl: ttl,
		now: time.Now,
	}, nil
}

// DefaultCacheDir returns the default cache directory
func DefaultCacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "skyscout")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "skyscout-cache")
	}

	return filepath.Join(home, ".cache", "skyscout")
}

func (c *FileCache) filename(key string) string {
	return filepath.Join(c.dir, hashKey(key)+".json")
}

// Get retrieves a value from the cache
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool) {
	entry, ok := c.read(c.filename(key))
	if !ok {
		return nil, false
	}
	return entry.Data, true
}

// Set stores a value in the cache
func (c *FileCache) Set(_ context.Context, key string, value []byte) error {
	data, err := json.Marshal(cacheEntry{
		Data:      value,
		ExpiresAt: c.now().Add(c.ttl),
	})
	if err != nil {
		return err
	}

	return os.WriteFile(c.filename(key), data, 0600)
}

// Clear removes all cache entries
func (c *FileCache) Clear() error {
	return c.sweep(func(string) bool { return true })
}

// Cleanup removes expired entries
func (c *FileCache) Cleanup() error {
	return c.sweep(func(filename string) bool {
		_, ok := c.read(filename)
		return !ok
	})
}

// read loads an entry, removing it when it is corrupt or expired
func (c *FileCache) read(filename string) (cacheEntry, bool) {
	// #nosec G304 -- filename is a hash inside the cache directory
	data, err := os.ReadFile(filename)
	if err != nil {
		return cacheEntry{}, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || c.now().After(entry.ExpiresAt) {
		_ = os.Remove(filename)
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *FileCache) sweep(remove func(filename string) bool) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		filename := filepath.Join(c.dir, entry.Name())
		if remove(filename) {
			_ = os.Remove(filename)
		}
	}
	return nil
}
