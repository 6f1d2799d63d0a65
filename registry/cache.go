package registry

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// indexCache keeps a per-source copy of the last fetched catalog index on
// disk. Entries go stale after the client's TTL but are never evicted; the
// client falls back to a stale entry when a refresh fails.
type indexCache struct {
	dir string
	ttl time.Duration
}

func newIndexCache(dir string, ttl time.Duration) *indexCache {
	return &indexCache{dir: dir, ttl: ttl}
}

// get reads the cached index for the given source. Returns os.ErrNotExist
// when the source has never been fetched.
func (c *indexCache) get(source Source) (*Index, error) {
	data, err := os.ReadFile(c.path(source))
	if err != nil {
		return nil, err
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("corrupt index cache for %q: %w", source.Name, err)
	}
	return &idx, nil
}

// put writes an index to the cache atomically (temp file + rename).
func (c *indexCache) put(source Source, idx *Index) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshaling index: %w", err)
	}

	target := c.path(source)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp cache file: %w", err)
	}

	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}

	return nil
}

// stale reports whether the cached index for the source is missing or older
// than the TTL. The file's mtime is the fetch time; put refreshes it.
func (c *indexCache) stale(source Source) bool {
	info, err := os.Stat(c.path(source))
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > c.ttl
}

// path derives the cache file for a source from the SHA-256 of its URL, so
// renaming a source keeps its cached index and two sources with the same URL
// share one entry.
func (c *indexCache) path(source Source) string {
	h := sha256.Sum256([]byte(source.URL))
	return filepath.Join(c.dir, fmt.Sprintf("index-%x.json", h[:8]))
}
