package chunkstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"vaultkeeper/internal/chunkid"
)

const sidecarSuffix = ".meta"

// SidecarStore persists chunk metadata as UTF-8 JSON sidecar files named
// "<chunk-path>.meta", one per unique chunk. Every mutation is a full
// read-modify-write using atomic temp-file-then-rename writes.
type SidecarStore struct {
	baseDir  string
	fileMode os.FileMode
}

// NewSidecarStore returns a SidecarStore rooted at baseDir.
func NewSidecarStore(baseDir string, fileMode os.FileMode) *SidecarStore {
	if fileMode == 0 {
		fileMode = 0o644
	}
	return &SidecarStore{baseDir: baseDir, fileMode: fileMode}
}

func (s *SidecarStore) sidecarPath(chunkPath string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(chunkPath)+sidecarSuffix)
}

// Load reads the sidecar for chunkPath. Returns (meta, false, nil) if no
// sidecar exists yet.
func (s *SidecarStore) Load(ctx context.Context, chunkPath string) (chunkid.Metadata, bool, error) {
	if err := ctx.Err(); err != nil {
		return chunkid.Metadata{}, false, err
	}
	data, err := os.ReadFile(s.sidecarPath(chunkPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return chunkid.Metadata{}, false, nil
		}
		return chunkid.Metadata{}, false, err
	}
	var meta chunkid.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return chunkid.Metadata{}, false, Wrap(KindInvalidMetadata, "", "parse sidecar", err)
	}
	return meta, true, nil
}

// Save atomically writes meta as the sidecar for chunkPath, overwriting
// any existing sidecar unconditionally. Callers that want merge-on-write
// semantics should call Load first and pass chunkid.Merge's result here
// (see SaveMerged).
func (s *SidecarStore) Save(ctx context.Context, chunkPath string, meta chunkid.Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return Wrap(KindInvalidMetadata, "", "marshal sidecar", err)
	}

	full := s.sidecarPath(chunkPath)
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".meta-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if err := tmp.Chmod(s.fileMode); err != nil {
		cleanup()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, full)
}

// SaveMerged loads any existing sidecar at chunkPath, merges incoming into
// it using chunkid.Merge, and persists the result. It returns the final,
// merged record.
func (s *SidecarStore) SaveMerged(ctx context.Context, chunkPath string, incoming chunkid.Metadata) (chunkid.Metadata, error) {
	existing, found, err := s.Load(ctx, chunkPath)
	if err != nil {
		return chunkid.Metadata{}, err
	}
	final := incoming
	if found {
		final = chunkid.Merge(existing, incoming)
	}
	if err := s.Save(ctx, chunkPath, final); err != nil {
		return chunkid.Metadata{}, err
	}
	return final, nil
}

// Delete removes the sidecar for chunkPath. A missing sidecar is not an
// error.
func (s *SidecarStore) Delete(ctx context.Context, chunkPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.sidecarPath(chunkPath)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
