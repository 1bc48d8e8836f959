// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/citemap/pkg/types"
)

// Cache is the persistent store of resolution outcomes, keyed by the
// normalized affiliation key. The backing file is a pretty-printed JSON
// document so a reviewer can fix a bad entry by hand between runs.
//
// The Resolver is the only writer: the geocoder never touches the cache
// directly. Every entry has a terminal status; unresolved outcomes are
// stored too, so failed lookups are not retried on every run.
type Cache struct {
	path    string
	entries map[string]types.ResolutionRecord
	dirty   bool
}

// OpenCache loads the cache file at path, or starts empty if the file does
// not exist yet. A file that exists but cannot be parsed is an error: a
// half-read cache would silently re-geocode everything.
func OpenCache(path string) (*Cache, error) {
	c := &Cache{path: path, entries: make(map[string]types.ResolutionRecord)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading cache %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("parsing cache %s: %w", path, err)
	}

	// Hand-edited files may omit the redundant key field; restore it.
	for key, rec := range c.entries {
		if rec.Key == "" {
			rec.Key = key
			c.entries[key] = rec
		}
	}
	return c, nil
}

// Get returns the record for key, if present.
func (c *Cache) Get(key string) (types.ResolutionRecord, bool) {
	rec, ok := c.entries[key]
	return rec, ok
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Keys returns the cached keys in sorted order.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Put stores a record and flushes to disk. Writing a record identical to
// the stored one is a no-op; different content overwrites, which is how
// manual corrections and refreshes land. A flush failure is returned to
// the caller and should abort the run: losing cache writes silently means
// paying for the same geocoding again next time.
func (c *Cache) Put(key string, rec types.ResolutionRecord) error {
	if prev, ok := c.entries[key]; ok && prev.SameOutcome(rec) {
		return nil
	}
	c.entries[key] = rec
	c.dirty = true
	return c.Flush()
}

// Delete removes the entry for key so the next run resolves it afresh.
// Deleting an absent key is a no-op. The removal is flushed immediately.
func (c *Cache) Delete(key string) error {
	if _, ok := c.entries[key]; !ok {
		return nil
	}
	delete(c.entries, key)
	c.dirty = true
	return c.Flush()
}

// DeleteUnresolved clears every unresolved entry, returning how many were
// removed. Used by the refresh workflow to retry failed lookups.
func (c *Cache) DeleteUnresolved() (int, error) {
	removed := 0
	for key, rec := range c.entries {
		if rec.Status == types.StatusUnresolved {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.dirty = true
		return removed, c.Flush()
	}
	return 0, nil
}

// Flush writes the current state to the backing file via a temp file and
// rename, so an interrupted run never leaves a truncated cache behind.
func (c *Cache) Flush() error {
	if !c.dirty {
		return nil
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating cache directory %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	data = append(data, '\n')

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replacing cache %s: %w", c.path, err)
	}

	c.dirty = false
	return nil
}
