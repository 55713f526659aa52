package hashcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrAlgorithmMismatch is returned by Compute when the requested algorithm
// does not match the cache's configured algorithm.
var ErrAlgorithmMismatch = errors.New("hashcache: algorithm does not match cache configuration")

// cacheKey builds the "<absolute_path>|<algorithm>" key the sidecar file
// uses as its JSON object key for an entry.
func cacheKey(e Entry) string {
	return fmt.Sprintf("%s|%s", e.Path, e.HashAlgorithm)
}

// Load reads a persisted cache from sidecarPath into a new Cache configured
// per cfg. The sidecar is a JSON object mapping "<absolute_path>|<algorithm>"
// to an entry record. Entries whose HashAlgorithm does not match
// cfg.Algorithm are filtered out. A missing file yields an empty cache, no
// error. Corrupted JSON is treated as "no prior cache": empty cache, no
// error surfaced to the caller, though it is logged at Warn.
func Load(sidecarPath string, cfg Config) *Cache {
	c := New(cfg)

	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return c
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("hash cache sidecar is corrupted, starting empty", "path", sidecarPath, "error", err)
		return c
	}

	for _, e := range entries {
		if e.HashAlgorithm != cfg.Algorithm {
			continue
		}
		c.setLocked(e.Path, e.Hash, e.FileSize, e.ModificationTime)
	}
	return c
}

// Save atomically writes every entry in c to sidecarPath as a JSON object
// keyed by "<absolute_path>|<algorithm>", via temp-file-then-rename. A
// successful Save durably persists every insert ordered before it. The
// cache itself stays fully synchronous; callers that want a background
// flush schedule their own call to Save.
func (c *Cache) Save(sidecarPath string) error {
	entries := c.Entries()
	keyed := make(map[string]Entry, len(entries))
	for _, e := range entries {
		keyed[cacheKey(e)] = e
	}

	data, err := json.MarshalIndent(keyed, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(sidecarPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, ".hashcache-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, sidecarPath)
}
