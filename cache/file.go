package cache

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// File keeps one file per key in a directory. Entry age is the file's
// modification time.
type File struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFile returns a cache rooted at dir. The directory is created on the
// first Set.
func NewFile(dir string, ttl time.Duration) *File {
	if ttl < 0 {
		ttl = 0
	}
	return &File{dir: dir, ttl: ttl, now: time.Now}
}

func (c *File) path(key string) string {
	return filepath.Join(c.dir, url.PathEscape(key)+".cache")
}

func (c *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", path, err)
	}
	if c.ttl > 0 && c.now().Sub(info.ModTime()) > c.ttl {
		_ = os.Remove(path)
		return nil, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", path, err)
	}
	return data, true, nil
}

func (c *File) Set(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	path := c.path(key)
	if err := os.WriteFile(path, value, 0644); err != nil {
		return fmt.Errorf("writing cache entry %s: %w", path, err)
	}
	return nil
}

func (c *File) Clear(context.Context) error {
	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".cache" {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
	}
	return nil
}

func (c *File) Close() error { return nil }
