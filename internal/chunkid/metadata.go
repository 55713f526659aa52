package chunkid

import (
	"maps"
	"slices"
	"time"
)

// ChunkType classifies the kind of content a chunk holds.
type ChunkType string

const (
	TypeFile      ChunkType = "file"
	TypeDirectory ChunkType = "directory"
	TypeSpecial   ChunkType = "special"
	TypeDiskImage ChunkType = "disk-image"
	TypeArchive   ChunkType = "archive"
	TypeSymlink   ChunkType = "symlink"
)

// Compression describes the compression applied to a chunk's original
// source content, when known. It is informational: the chunk payload
// itself, as returned by Read, is always the content the id hashes.
type Compression struct {
	Algorithm        string `json:"algorithm"`
	UncompressedSize int64  `json:"uncompressedSize"`
	CompressedSize   int64  `json:"compressedSize"`
}

// Metadata is the sidecar record persisted once per unique chunk. Field
// names are lower camelCase to match the on-disk JSON encoding.
type Metadata struct {
	Size             int64         `json:"size"`
	ContentHash      string        `json:"contentHash,omitempty"`
	HashAlgorithm    HashAlgorithm `json:"hashAlgorithm"`
	ContentType      string        `json:"contentType,omitempty"`
	ChunkType        ChunkType     `json:"chunkType"`
	OriginalFilename string        `json:"originalFilename,omitempty"`
	OriginalPaths    []string      `json:"originalPaths,omitempty"`
	Created          time.Time     `json:"created,omitempty"`
	Modified         time.Time     `json:"modified,omitempty"`
	Compression      *Compression  `json:"compression,omitempty"`
}

// pathSet returns the OriginalPaths as a deduplicated set.
func (m Metadata) pathSet() map[string]struct{} {
	set := make(map[string]struct{}, len(m.OriginalPaths))
	for _, p := range m.OriginalPaths {
		set[p] = struct{}{}
	}
	return set
}

// AddPath returns a copy of m with path added to OriginalPaths (set
// semantics: adding an existing path is a no-op).
func (m Metadata) AddPath(path string) Metadata {
	set := m.pathSet()
	if _, ok := set[path]; ok {
		return m
	}
	set[path] = struct{}{}
	m.OriginalPaths = sortedKeys(set)
	return m
}

func sortedKeys(set map[string]struct{}) []string {
	out := slices.Collect(maps.Keys(set))
	slices.Sort(out)
	return out
}

// Merge implements the metadata-merge algorithm for duplicate writes: existing is the
// record already on disk for this chunk id, incoming is the record a
// second writer is trying to persist. The result is what gets written
// back.
//
//   - size, contentHash, hashAlgorithm, chunkType: first-writer (existing) wins
//   - originalPaths: set union
//   - originalFilename: existing wins if present, else incoming
//   - created: earliest of the two
//   - modified: latest of the two
//   - contentType: existing wins if present, else incoming
//   - compression: existing wins if present, else incoming
func Merge(existing, incoming Metadata) Metadata {
	merged := existing

	union := existing.pathSet()
	for _, p := range incoming.OriginalPaths {
		union[p] = struct{}{}
	}
	merged.OriginalPaths = sortedKeys(union)

	if merged.OriginalFilename == "" {
		merged.OriginalFilename = incoming.OriginalFilename
	}

	merged.Created = earlier(existing.Created, incoming.Created)
	merged.Modified = later(existing.Modified, incoming.Modified)

	if merged.ContentType == "" {
		merged.ContentType = incoming.ContentType
	}
	if merged.Compression == nil {
		merged.Compression = incoming.Compression
	}

	return merged
}

func earlier(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case b.Before(a):
		return b
	default:
		return a
	}
}

func later(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case b.After(a):
		return b
	default:
		return a
	}
}
