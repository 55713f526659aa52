// Package hashcache implements a bounded LRU cache mapping (absolute path,
// hash algorithm) to a previously computed content hash, validated by file
// size and modification time so a changed file never returns a stale hash.
// A single mutex serializes all mutation; logging is sparse and
// lifecycle-only.
package hashcache

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"vaultkeeper/internal/chunkid"
	"vaultkeeper/internal/logging"
)

// Entry is one file-hash cache record.
type Entry struct {
	Path             string              `json:"path"`
	Hash             string              `json:"hash"`
	HashAlgorithm    chunkid.HashAlgorithm `json:"hashAlgorithm"`
	FileSize         int64               `json:"fileSize"`
	ModificationTime time.Time           `json:"modificationTime"`
}

// key is the cache's associative key: equality by path+algorithm.
type key struct {
	path string
	alg  chunkid.HashAlgorithm
}

// Config parameterizes Cache.
type Config struct {
	// MaxSize bounds the number of entries kept; 0 means unbounded.
	MaxSize int
	// Algorithm is the hash algorithm this cache is scoped to. Entries
	// loaded from a persisted sidecar whose algorithm differs are dropped.
	Algorithm chunkid.HashAlgorithm
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
	// Logger is dependency-injected, defaulting to a discard logger.
	Logger *slog.Logger
}

// Cache is a bounded, mutex-serialized LRU cache of file content hashes.
type Cache struct {
	mu       sync.Mutex
	maxSize  int
	alg      chunkid.HashAlgorithm
	now      func() time.Time
	logger   *slog.Logger
	order    *list.List // front = most recently used
	elements map[key]*list.Element
}

type node struct {
	key   key
	entry Entry
}

// New constructs an empty Cache per cfg.
func New(cfg Config) *Cache {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := logging.Default(cfg.Logger).With("component", "hashcache")
	return &Cache{
		maxSize:  cfg.MaxSize,
		alg:      cfg.Algorithm,
		now:      cfg.Now,
		logger:   logger,
		order:    list.New(),
		elements: make(map[key]*list.Element),
	}
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Lookup returns the cached hash for path under the cache's configured
// algorithm, if a valid entry exists. An entry is valid iff its algorithm
// matches, its recorded size matches size, and its recorded modification
// time is within one second of modTime. A hit moves the entry to
// most-recently-used.
func (c *Cache) Lookup(path string, size int64, modTime time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.elements[key{path: path, alg: c.alg}]
	if !ok {
		return "", false
	}
	n := el.Value.(*node)
	if !valid(n.entry, c.alg, size, modTime) {
		return "", false
	}
	c.order.MoveToFront(el)
	return n.entry.Hash, true
}

func valid(e Entry, alg chunkid.HashAlgorithm, size int64, modTime time.Time) bool {
	if e.HashAlgorithm != alg {
		return false
	}
	if e.FileSize != size {
		return false
	}
	diff := e.ModificationTime.Sub(modTime)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Second
}

// Set inserts or updates the entry for path, evicting the least-recently
// used entry first if the cache is at capacity.
func (c *Cache) Set(path, hash string, size int64, modTime time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(path, hash, size, modTime)
}

func (c *Cache) setLocked(path, hash string, size int64, modTime time.Time) {
	k := key{path: path, alg: c.alg}
	if el, ok := c.elements[k]; ok {
		n := el.Value.(*node)
		n.entry = Entry{Path: path, Hash: hash, HashAlgorithm: c.alg, FileSize: size, ModificationTime: modTime}
		c.order.MoveToFront(el)
		return
	}

	if c.maxSize > 0 && c.order.Len() >= c.maxSize {
		c.evictLRULocked()
	}

	n := &node{key: k, entry: Entry{Path: path, Hash: hash, HashAlgorithm: c.alg, FileSize: size, ModificationTime: modTime}}
	el := c.order.PushFront(n)
	c.elements[k] = el
}

func (c *Cache) evictLRULocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	n := back.Value.(*node)
	delete(c.elements, n.key)
	c.order.Remove(back)
}

// Compute looks up path under alg; on a cache hit it returns the cached
// hash. On a miss it hashes data, inserts the result under the cache's
// configured algorithm, and returns it. alg must equal the cache's
// configured algorithm; otherwise ErrAlgorithmMismatch is returned.
func (c *Cache) Compute(ctx context.Context, path string, data []byte, size int64, modTime time.Time, alg chunkid.HashAlgorithm) (string, error) {
	if alg != c.alg {
		return "", ErrAlgorithmMismatch
	}
	if hash, ok := c.Lookup(path, size, modTime); ok {
		return hash, nil
	}
	hash, err := chunkid.Hash(data, alg)
	if err != nil {
		return "", err
	}
	c.Set(path, hash, size, modTime)
	return hash, nil
}

// Entries returns a snapshot of every entry currently cached, most
// recently used first.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*node).entry)
	}
	return out
}
