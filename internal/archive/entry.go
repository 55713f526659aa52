// Package archive implements the directory walker and archive builder: a
// delegate-pattern tree walk that classifies every entry, emits a
// content-addressed chunk per file, and accumulates a manifest and stats.
// Ignore matching uses bmatcuk/doublestar/v4 globs over a recursive
// classify-and-recurse walk.
package archive

import (
	"time"

	"vaultkeeper/internal/chunkid"
)

// EntryType classifies one walked filesystem entry.
type EntryType string

const (
	EntryFile      EntryType = "file"
	EntryDirectory EntryType = "directory"
	EntrySymlink   EntryType = "symlink"
	EntrySpecial   EntryType = "special"
)

// FileEntry is the in-memory tree node built while walking. Parent points
// at the enclosing directory's entry and is nil for the walk root. The
// walker sets Parent but does not fill Children.
type FileEntry struct {
	Name         string
	Size         int64 // files only
	ModTime      time.Time
	FileTypeID   string
	Type         EntryType
	SymlinkTarget string
	Parent       *FileEntry
	Children     []*FileEntry // directories only
}

// RelPath reconstructs this entry's path relative to the walk root by
// walking Parent back-references.
func (e *FileEntry) RelPath() string {
	if e.Parent == nil {
		return e.Name
	}
	parent := e.Parent.RelPath()
	if parent == "" {
		return e.Name
	}
	return parent + "/" + e.Name
}

// ManifestEntry is one row of the archive manifest.
type ManifestEntry struct {
	Path          string      `json:"path"`
	Type          EntryType   `json:"type"`
	Hash          chunkid.ID  `json:"hash,omitempty"`
	Size          int64       `json:"size,omitempty"`
	Permissions   uint32      `json:"permissions,omitempty"`
	Owner         string      `json:"owner,omitempty"`
	Group         string      `json:"group,omitempty"`
	ModTime       *time.Time  `json:"modTime,omitempty"`
	CreateTime    *time.Time  `json:"createTime,omitempty"`
	SymlinkTarget string      `json:"symlinkTarget,omitempty"`
}

// Manifest is the archive-create output: a JSON document of manifest
// entries. No global checksum is prescribed.
type Manifest struct {
	Entries []ManifestEntry `json:"entries"`
}

// Stats accumulates counters over a walk.
type Stats struct {
	FileCount    int
	TotalSize    int64
	PerTypeCount map[EntryType]int
}

func newStats() *Stats {
	return &Stats{PerTypeCount: make(map[EntryType]int)}
}

func (s *Stats) record(t EntryType, size int64) {
	s.PerTypeCount[t]++
	if t == EntryFile {
		s.FileCount++
		s.TotalSize += size
	}
}
