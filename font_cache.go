package figterm

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// FontCache provides thread-safe caching of parsed fonts for long-running
// applications, with simple LRU eviction when the maximum size is reached.
//
// Key generation:
//   - File paths are resolved (absolute path, symlinks followed) before use,
//     so a display name that later resolves to a different file can never
//     serve a stale structure. The cache never keys on a display name alone.
//   - Byte data is keyed by SHA256 of the content, prefixed "sha256:" to
//     keep content keys distinct from path keys.
type FontCache struct {
	mu        sync.RWMutex
	fonts     map[string]*cacheEntry
	lru       *lruList
	maxSize   int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry struct {
	key     string
	font    *Font
	lruNode *lruNode
}

type lruNode struct {
	key  string
	prev *lruNode
	next *lruNode
}

type lruList struct {
	head *lruNode
	tail *lruNode
	size int
}

// Global default cache for convenience
var defaultCache = NewFontCache(100)

// NewFontCache creates a new font cache with the specified maximum number
// of fonts. A maxSize of 0 or negative means unlimited cache size.
func NewFontCache(maxSize int) *FontCache {
	return &FontCache{
		fonts:   make(map[string]*cacheEntry),
		lru:     &lruList{},
		maxSize: maxSize,
	}
}

// LoadFontCached loads a font from the filesystem through the default
// cache. Safe for concurrent use.
func LoadFontCached(path string) (*Font, error) {
	return defaultCache.LoadFont(path)
}

// LoadFont loads a font from the filesystem with caching.
// This method is safe for concurrent use.
func (c *FontCache) LoadFont(path string) (*Font, error) {
	key := resolveSourceKey(path)

	if font := c.get(key); font != nil {
		return font, nil
	}

	font, err := LoadFont(path)
	if err != nil {
		return nil, err
	}

	c.put(key, font)
	return font, nil
}

// ParseFontCached parses a font from byte data through the default cache.
// The cache key is derived from the SHA256 hash of the data.
func ParseFontCached(data []byte) (*Font, error) {
	return defaultCache.ParseFont(data)
}

// ParseFont parses a font from byte data with caching.
// This method is safe for concurrent use.
func (c *FontCache) ParseFont(data []byte) (*Font, error) {
	hash := sha256.Sum256(data)
	key := "sha256:" + hex.EncodeToString(hash[:])

	if font := c.get(key); font != nil {
		return font, nil
	}

	font, err := ParseFontBytes(data)
	if err != nil {
		return nil, err
	}

	c.put(key, font)
	return font, nil
}

// resolveSourceKey reduces a path to the identity of the file it denotes:
// absolute, symlinks followed. Resolution failures (a not-yet-existing
// file, a dangling link) fall back on the absolute form; the subsequent
// load reports the real error.
func resolveSourceKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// get retrieves a font from the cache.
//
// Two-phase locking: an RLock existence check lets concurrent readers
// through; only the LRU position update takes the full lock.
func (c *FontCache) get(key string) *Font {
	c.mu.RLock()
	entry, exists := c.fonts[key]
	c.mu.RUnlock()

	if !exists {
		c.misses.Add(1)
		return nil
	}

	c.mu.Lock()
	c.lru.moveToFront(entry.lruNode)
	c.mu.Unlock()

	c.hits.Add(1)
	return entry.font
}

// put adds a font to the cache, evicting the least recently used entry
// when the cache is at capacity.
func (c *FontCache) put(key string, font *Font) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.fonts[key]; exists {
		return
	}

	if c.maxSize > 0 && len(c.fonts) >= c.maxSize {
		c.evictLRU()
	}

	node := c.lru.pushFront(key)
	c.fonts[key] = &cacheEntry{
		key:     key,
		font:    font,
		lruNode: node,
	}
}

// evictLRU removes the least recently used font from the cache.
func (c *FontCache) evictLRU() {
	if c.lru.tail == nil {
		return
	}

	key := c.lru.tail.key
	delete(c.fonts, key)
	c.lru.remove(c.lru.tail)
	c.evictions.Add(1)
}

// Clear removes all fonts from the cache.
// This method is safe for concurrent use.
func (c *FontCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fonts = make(map[string]*cacheEntry)
	c.lru = &lruList{}
}

// Stats returns cache statistics.
// This method is safe for concurrent use.
func (c *FontCache) Stats() CacheStats {
	c.mu.RLock()
	size := len(c.fonts)
	c.mu.RUnlock()

	return CacheStats{
		Size:      size,
		MaxSize:   c.maxSize,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// CacheStats contains cache performance statistics
type CacheStats struct {
	Size      int    // Current number of cached fonts
	MaxSize   int    // Maximum cache size
	Hits      uint64 // Number of cache hits
	Misses    uint64 // Number of cache misses
	Evictions uint64 // Number of evictions
}

// HitRate returns the cache hit rate as a percentage (0-100)
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) * 100 / float64(total)
}

// LRU list operations
func (l *lruList) pushFront(key string) *lruNode {
	node := &lruNode{key: key}

	if l.head == nil {
		l.head = node
		l.tail = node
	} else {
		node.next = l.head
		l.head.prev = node
		l.head = node
	}

	l.size++
	return node
}

func (l *lruList) moveToFront(node *lruNode) {
	if node == l.head {
		return
	}

	// Remove from current position
	if node.prev != nil {
		node.prev.next = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	}
	if node == l.tail {
		l.tail = node.prev
	}

	// Move to front
	node.prev = nil
	node.next = l.head
	l.head.prev = node
	l.head = node
}

func (l *lruList) remove(node *lruNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	l.size--
}

// SetDefaultCacheSize sets the maximum size of the default cache.
// This should be called once at application startup.
func SetDefaultCacheSize(maxSize int) {
	defaultCache = NewFontCache(maxSize)
}

// ClearDefaultCache clears the default font cache.
func ClearDefaultCache() {
	defaultCache.Clear()
}

// DefaultCacheStats returns statistics for the default cache.
func DefaultCacheStats() CacheStats {
	return defaultCache.Stats()
}
