package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores placement sets and previews as files in a directory,
// each wrapped in a small envelope carrying its expiry. Intended for CLI
// usage where a shared redis is unavailable.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir, creating the
// directory if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// envelope wraps cached data with its expiration.
type envelope struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a value, treating corrupt or expired entries as misses and
// removing them.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !env.ExpiresAt.IsZero() && time.Now().After(env.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return env.Data, true, nil
}

// Set stores a value with the given TTL. A zero TTL never expires.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	env := envelope{Data: data}
	if ttl > 0 {
		env.ExpiresAt = time.Now().Add(ttl)
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

// Delete removes a value; missing keys are not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for a file cache.
func (c *FileCache) Close() error { return nil }

// path converts a cache key to a file path, sharding by the first two hash
// characters to keep directories small.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
