package core

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// DiskCache stores opaque blobs on disk, sharded by the first two hex characters of the key's xxHash.
type DiskCache struct {
	Root    string
	TTL     time.Duration
	MaxSize int64
}

// Option configures the DiskCache.
type Option func(*DiskCache)

// WithTTL sets the time-to-live for cached items.
func WithTTL(ttl time.Duration) Option {
	return func(c *DiskCache) {
		c.TTL = ttl
	}
}

// WithMaxSize sets the maximum size of the cache in bytes.
func WithMaxSize(size int64) Option {
	return func(c *DiskCache) {
		c.MaxSize = size
	}
}

// NewDiskCache creates a new DiskCache instance with the specified root directory.
func NewDiskCache(root string, opts ...Option) *DiskCache {
	c := &DiskCache{
		Root:    root,
		MaxSize: 256 * 1024 * 1024, // Default 256MB
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Find attempts to retrieve a cached blob for the given key.
// Returns nil, nil for a cache miss (not an error).
func (c *DiskCache) Find(key string) ([]byte, error) {
	cachePath := c.buildPath(key)

	info, err := os.Stat(cachePath)
	if os.IsNotExist(err) {
		return nil, nil // A cache miss is not an error.
	}
	if err != nil {
		return nil, err
	}

	if c.expired(info.ModTime()) {
		_ = os.Remove(cachePath)
		return nil, nil
	}

	cached, err := os.ReadFile(cachePath)
	if os.IsNotExist(err) {
		return nil, nil // Pruned between Stat and ReadFile.
	}
	if err != nil {
		return nil, fmt.Errorf("error reading cache: %w", err)
	}
	return cached, nil
}

// Write stores data in the cache for the given key.
func (c *DiskCache) Write(key string, data []byte) error {
	return WriteFileAtomic(c.buildPath(key), data)
}

// Delete removes a cached blob for the given key. Deleting a missing key is not an error.
func (c *DiskCache) Delete(key string) error {
	err := os.Remove(c.buildPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// buildPath shards files using the first two characters of the hash
// to prevent too many files in one directory.
func (c *DiskCache) buildPath(key string) string {
	h := HashKey(key)
	return filepath.Join(c.Root, h[:2], h)
}

func (c *DiskCache) expired(modTime time.Time) bool {
	return c.TTL > 0 && time.Since(modTime) > c.TTL
}

// pruningFile represents a file in the cache for pruning purposes.
type pruningFile struct {
	path    string
	size    int64
	modTime time.Time
}

// Prune removes expired items, then enforces the MaxSize limit by removing the oldest items.
// Returns the number of files removed.
func (c *DiskCache) Prune() (int, error) {
	var files []pruningFile
	var totalSize int64
	removed := 0

	err := filepath.WalkDir(c.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// If we can't read a directory/file, just skip it but don't fail the whole prune
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if c.expired(info.ModTime()) {
			if os.Remove(path) == nil {
				removed++
			}
			return nil
		}
		totalSize += info.Size()
		files = append(files, pruningFile{
			path:    path,
			size:    info.Size(),
			modTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("error walking cache dir: %w", err)
	}

	if c.MaxSize <= 0 || totalSize <= c.MaxSize {
		slog.Info("no need to prune",
			"root", filepath.Base(c.Root),
			"size", humanize.Bytes(uint64(totalSize)),
			"limit", humanize.Bytes(uint64(c.MaxSize)),
			"ttl", c.TTL,
			"expired", removed,
		)
		return removed, nil
	}

	// Sort by modification time, oldest first
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	before := totalSize
	for _, f := range files {
		if totalSize <= c.MaxSize {
			break
		}
		if os.Remove(f.path) == nil {
			totalSize -= f.size
			removed++
		}
	}

	slog.Info("pruned cache",
		"root", filepath.Base(c.Root),
		"freed", humanize.Bytes(uint64(before-totalSize)),
		"size", humanize.Bytes(uint64(totalSize)),
		"removed", removed,
	)
	return removed, nil
}
