// Package cache stores compile results between runs so unchanged sources are
// not compiled again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/recera/compilemode/pkg/compiler"
)

const indexVersion = "compilemode/1"

// Cache is an on-disk store of compile results, indexed by content key.
// It is safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	dir      string
	index    *Index
	maxSize  int64
	maxAge   time.Duration
	strategy EvictionStrategy
	stats    Stats
	log      *zap.Logger
}

// Index tracks all cached entries
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry is one cached result
type Entry struct {
	Key         string    `json:"key"`
	Source      string    `json:"source"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	Created     time.Time `json:"created"`
	LastAccess  time.Time `json:"last_access"`
	AccessCount int       `json:"access_count"`
}

// Stats tracks cache performance
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	TotalSize  int64 `json:"total_size"`
	EntryCount int   `json:"entry_count"`
}

// EvictionStrategy defines how entries are removed when the cache is full
type EvictionStrategy int

const (
	// LRU removes least recently used entries
	LRU EvictionStrategy = iota
	// FIFO removes oldest entries first
	FIFO
)

// Config holds cache configuration
type Config struct {
	Dir      string           // Cache directory
	MaxSize  int64            // Maximum size in bytes, 0 for unlimited
	MaxAge   time.Duration    // Maximum entry age, 0 for unlimited
	Strategy EvictionStrategy // Eviction strategy (default: LRU)
	Logger   *zap.Logger
}

// New opens the cache in config.Dir, creating it if needed. A missing or
// corrupt index starts an empty cache.
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(filepath.Join(config.Dir, "results"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Cache{
		dir:      config.Dir,
		maxSize:  config.MaxSize,
		maxAge:   config.MaxAge,
		strategy: config.Strategy,
		log:      log,
		index:    newIndex(),
	}
	if err := c.loadIndex(); err != nil && !os.IsNotExist(err) {
		log.Warn("discarding unreadable cache index", zap.String("dir", config.Dir), zap.Error(err))
		c.index = newIndex()
	}
	return c, nil
}

func newIndex() *Index {
	return &Index{
		Version: indexVersion,
		Entries: make(map[string]*Entry),
		Updated: time.Now(),
	}
}

// Key derives the cache key of a source file compiled under a configuration
// fingerprint.
func Key(source []byte, configHash string) string {
	h := sha256.New()
	h.Write([]byte(configHash))
	h.Write([]byte{0})
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the result cached under key.
// Entries are only read or written with c.mu held; Get copies what it needs
// and looks the entry up again before recording the access.
func (c *Cache) Get(key string) (*compiler.Result, bool) {
	c.mu.RLock()
	entry, ok := c.index.Entries[key]
	var (
		path    string
		expired bool
	)
	if ok {
		path = entry.Path
		expired = c.isExpired(entry)
	}
	c.mu.RUnlock()

	if !ok || expired {
		if ok {
			c.Delete(key)
		}
		c.recordMiss()
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		c.Delete(key)
		c.recordMiss()
		return nil, false
	}

	var res compiler.Result
	if err := yaml.Unmarshal(data, &res); err != nil {
		c.log.Debug("dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		c.Delete(key)
		c.recordMiss()
		return nil, false
	}

	c.mu.Lock()
	if entry, ok := c.index.Entries[key]; ok {
		entry.LastAccess = time.Now()
		entry.AccessCount++
	}
	c.stats.Hits++
	c.mu.Unlock()

	return &res, true
}

// Put stores the result of compiling source under key.
func (c *Cache) Put(key, source string, res *compiler.Result) error {
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	size := int64(len(data))

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.index.Entries[key]; ok {
		c.removeFile(old.Path)
		c.stats.TotalSize -= old.Size
		delete(c.index.Entries, key)
	}
	c.evict(size)

	path := filepath.Join(c.dir, "results", key[:min(len(key), 32)]+".yaml")
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	c.index.Entries[key] = &Entry{
		Key:        key,
		Source:     source,
		Path:       path,
		Size:       size,
		Created:    now,
		LastAccess: now,
	}
	c.index.Updated = now
	c.stats.TotalSize += size
	c.stats.EntryCount = len(c.index.Entries)
	return nil
}

// Delete removes an entry
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		return
	}
	c.removeFile(entry.Path)
	delete(c.index.Entries, key)
	c.stats.TotalSize -= entry.Size
	c.stats.EntryCount = len(c.index.Entries)
	c.index.Updated = time.Now()
}

// InvalidateSource removes every entry compiled from source, whatever its
// content was.
func (c *Cache) InvalidateSource(source string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, entry := range c.index.Entries {
		if entry.Source != source {
			continue
		}
		c.removeFile(entry.Path)
		delete(c.index.Entries, key)
		c.stats.TotalSize -= entry.Size
		count++
	}
	c.stats.EntryCount = len(c.index.Entries)
	return count
}

// Clear removes all entries
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := filepath.Join(c.dir, "results")
	if err := os.RemoveAll(results); err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}
	if err := os.MkdirAll(results, 0755); err != nil {
		return err
	}
	c.index = newIndex()
	c.stats = Stats{}
	return c.saveIndexLocked()
}

// Stats returns a snapshot of the cache statistics
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Close persists the index
func (c *Cache) Close() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.saveIndexLocked()
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, "index.json"))
	if err != nil {
		return err
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	if index.Version != indexVersion || index.Entries == nil {
		return fmt.Errorf("unsupported index version %q", index.Version)
	}

	c.index = &index
	for _, entry := range index.Entries {
		c.stats.TotalSize += entry.Size
	}
	c.stats.EntryCount = len(index.Entries)
	return nil
}

// saveIndexLocked writes the index. Caller must hold at least a read lock.
func (c *Cache) saveIndexLocked() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, "index.json"), data, 0644)
}

func (c *Cache) isExpired(entry *Entry) bool {
	if c.maxAge <= 0 {
		return false
	}
	return time.Since(entry.Created) > c.maxAge
}

// evict makes room for needed bytes. Caller must hold the write lock.
func (c *Cache) evict(needed int64) {
	if c.maxSize <= 0 {
		return
	}

	for c.stats.TotalSize+needed > c.maxSize && len(c.index.Entries) > 0 {
		var victim *Entry
		for _, entry := range c.index.Entries {
			if victim == nil {
				victim = entry
				continue
			}
			switch c.strategy {
			case FIFO:
				if entry.Created.Before(victim.Created) {
					victim = entry
				}
			default:
				if entry.LastAccess.Before(victim.LastAccess) {
					victim = entry
				}
			}
		}

		c.removeFile(victim.Path)
		delete(c.index.Entries, victim.Key)
		c.stats.TotalSize -= victim.Size
		c.stats.Evictions++
		c.log.Debug("evicted cache entry", zap.String("source", victim.Source))
	}
	c.stats.EntryCount = len(c.index.Entries)
}

// writeFileAtomic replaces path in one rename so readers never see a
// partial entry.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *Cache) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		c.log.Warn("failed to remove cache file", zap.String("path", path), zap.Error(err))
	}
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}
