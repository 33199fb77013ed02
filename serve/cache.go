package serve

import (
	"os"
	"sync"
	"time"
)

// markerCache keeps marker lists of served documents. Entry is valid while
// document modification time and size stay the same, watcher evicts entries
// of changed documents early.
type markerCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	mod     time.Time
	size    int64
	markers []markerBody
}

func newMarkerCache() *markerCache {
	return &markerCache{entries: make(map[string]cacheEntry)}
}

func (c *markerCache) get(path string, fi os.FileInfo) ([]markerBody, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	if !e.mod.Equal(fi.ModTime()) || e.size != fi.Size() {
		delete(c.entries, path)
		return nil, false
	}
	return e.markers, true
}

func (c *markerCache) put(path string, fi os.FileInfo, markers []markerBody) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = cacheEntry{mod: fi.ModTime(), size: fi.Size(), markers: markers}
}

func (c *markerCache) evict(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[path]
	delete(c.entries, path)
	return ok
}

func (c *markerCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
