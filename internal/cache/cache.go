// Package cache stores compiled render functions on disk so unchanged
// templates are not recompiled. Entries are keyed by a hash of the template
// source and the compile options.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const indexVersion = "2"

// Cache is a size and age bounded artifact store. It is safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	dir     string
	index   *Index
	maxSize int64
	maxAge  time.Duration
	policy  Policy
	stats   Stats
}

// Index is the on-disk table of entries
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry describes one cached artifact
type Entry struct {
	Key        string    `json:"key"`
	Hash       string    `json:"hash"`
	Path       string    `json:"path"`
	Source     string    `json:"source,omitempty"`
	Size       int64     `json:"size"`
	Created    time.Time `json:"created"`
	LastAccess time.Time `json:"last_access"`
	Hits       int       `json:"hits"`
}

// Stats counts cache activity since the cache was opened
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	TotalSize  int64 `json:"total_size"`
	EntryCount int   `json:"entry_count"`
}

// Policy picks the entry to evict when the cache is full
type Policy int

const (
	// LRU evicts the least recently read entry
	LRU Policy = iota
	// LFU evicts the least often read entry
	LFU
	// FIFO evicts the oldest entry
	FIFO
)

// Config holds cache settings. Zero MaxSize or MaxAge disables that bound.
type Config struct {
	Dir     string
	MaxSize int64
	MaxAge  time.Duration
	Policy  Policy
}

// Artifact is a compiled template as stored in the cache
type Artifact struct {
	Code    string   `json:"code"`
	Helpers []string `json:"helpers,omitempty"`
}

// DefaultConfig returns a cache under the user cache directory
func DefaultConfig() Config {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return Config{
		Dir:     filepath.Join(dir, "vtc"),
		MaxSize: 64 << 20, // 64 MB
		MaxAge:  7 * 24 * time.Hour,
		Policy:  LRU,
	}
}

// New opens the cache in config.Dir, creating it if needed. A missing or
// unreadable index starts the cache empty. Expired entries are pruned.
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		config.Dir = DefaultConfig().Dir
	}
	if err := os.MkdirAll(filepath.Join(config.Dir, "artifacts"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:     config.Dir,
		maxSize: config.MaxSize,
		maxAge:  config.MaxAge,
		policy:  config.Policy,
		index:   newIndex(),
	}
	if err := c.loadIndex(); err != nil {
		c.index = newIndex()
	}
	if _, err := c.Prune(); err != nil {
		return nil, err
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

// Key derives a cache key from inputs. Inputs are length delimited so
// ("ab", "c") and ("a", "bc") differ.
func Key(inputs ...string) string {
	h := sha256.New()
	for _, in := range inputs {
		fmt.Fprintf(h, "%d:%s", len(in), in)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the bytes stored under key
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if c.isExpired(entry) {
		c.removeLocked(key)
		c.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		c.removeLocked(key)
		c.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	entry.Hits++
	c.stats.Hits++
	return data, true
}

// Put stores data under key. source names the template the data was
// compiled from so InvalidateSource can drop it later.
func (c *Cache) Put(key, source string, data []byte) error {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.index.Entries[key]; ok && existing.Hash == hash {
		return nil
	}

	c.removeLocked(key)
	size := int64(len(data))
	c.evictFor(size)

	path := filepath.Join(c.dir, "artifacts", key[:min(len(key), 32)]+"_"+hash[:8])
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	c.index.Entries[key] = &Entry{
		Key:        key,
		Hash:       hash,
		Path:       path,
		Source:     source,
		Size:       size,
		Created:    now,
		LastAccess: now,
	}
	c.stats.TotalSize += size
	return c.saveLocked()
}

// GetArtifact returns the artifact stored under key
func (c *Cache) GetArtifact(key string) (*Artifact, bool) {
	data, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		c.Delete(key)
		return nil, false
	}
	return &a, true
}

// PutArtifact stores a compiled template
func (c *Cache) PutArtifact(key, source string, a *Artifact) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	return c.Put(key, source, data)
}

// Delete removes key
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index.Entries[key]; !ok {
		return nil
	}
	c.removeLocked(key)
	return c.saveLocked()
}

// InvalidateSource removes every entry compiled from source and returns how
// many were removed
func (c *Cache) InvalidateSource(source string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, entry := range c.index.Entries {
		if entry.Source == source {
			c.removeLocked(key)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, c.saveLocked()
}

// Prune removes expired entries and returns how many were removed
func (c *Cache) Prune() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, entry := range c.index.Entries {
		if c.isExpired(entry) {
			c.removeLocked(key)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, c.saveLocked()
}

// Clear removes every entry
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	artifacts := filepath.Join(c.dir, "artifacts")
	if err := os.RemoveAll(artifacts); err != nil {
		return fmt.Errorf("failed to clear artifacts: %w", err)
	}
	if err := os.MkdirAll(artifacts, 0755); err != nil {
		return fmt.Errorf("failed to clear artifacts: %w", err)
	}
	c.index = newIndex()
	c.stats = Stats{}
	return c.saveLocked()
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.EntryCount = len(c.index.Entries)
	return s
}

// Close writes the index, recording access times from this session
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
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
		return fmt.Errorf("unsupported cache index version %q", index.Version)
	}

	c.index = &index
	for _, entry := range index.Entries {
		c.stats.TotalSize += entry.Size
	}
	return nil
}

// saveLocked writes the index; the caller holds c.mu
func (c *Cache) saveLocked() error {
	c.index.Updated = time.Now()
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, "index.json"), data, 0644)
}

func (c *Cache) isExpired(entry *Entry) bool {
	return c.maxAge > 0 && time.Since(entry.Created) > c.maxAge
}

// removeLocked drops key and its file; the caller holds c.mu
func (c *Cache) removeLocked(key string) {
	entry, ok := c.index.Entries[key]
	if !ok {
		return
	}
	if err := os.Remove(entry.Path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to remove cache file %s: %v\n", entry.Path, err)
	}
	delete(c.index.Entries, key)
	c.stats.TotalSize -= entry.Size
}

// evictFor makes room for needed bytes under the configured policy
func (c *Cache) evictFor(needed int64) {
	if c.maxSize <= 0 {
		return
	}
	for c.stats.TotalSize+needed > c.maxSize && len(c.index.Entries) > 0 {
		victim := c.victim()
		if victim == "" {
			return
		}
		c.removeLocked(victim)
		c.stats.Evictions++
	}
}

func (c *Cache) victim() string {
	var key string
	var pick *Entry
	for k, e := range c.index.Entries {
		if pick == nil || c.before(e, pick) || (!c.before(pick, e) && k < key) {
			key, pick = k, e
		}
	}
	return key
}

// before reports whether a should be evicted ahead of b
func (c *Cache) before(a, b *Entry) bool {
	switch c.policy {
	case LFU:
		return a.Hits < b.Hits
	case FIFO:
		return a.Created.Before(b.Created)
	default:
		return a.LastAccess.Before(b.LastAccess)
	}
}

// ParsePolicy parses lru, lfu or fifo
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "lru":
		return LRU, nil
	case "lfu":
		return LFU, nil
	case "fifo":
		return FIFO, nil
	}
	return LRU, fmt.Errorf("unknown eviction policy %q", s)
}
