package archive

import (
	"context"
	"os"
	"path/filepath"

	"vaultkeeper/internal/chunkid"
)

// ChunkReader is the capability Extract needs from the store: read back a
// chunk's full payload by id. *chunkstore.Store satisfies this signature.
type ChunkReader interface {
	Read(ctx context.Context, id chunkid.ID) ([]byte, bool, error)
}

// Extract reconstructs the directory tree described by m under destRoot,
// reading each file entry's payload from store. Directories are created
// first (so files and symlinks can always be written into an existing
// parent); symlinks are created pointing at their recorded target.
func Extract(ctx context.Context, store ChunkReader, m Manifest, destRoot string) error {
	for _, e := range m.Entries {
		if e.Type != EntryDirectory {
			continue
		}
		if err := os.MkdirAll(filepath.Join(destRoot, e.Path), 0o755); err != nil {
			return err
		}
	}

	for _, e := range m.Entries {
		target := filepath.Join(destRoot, e.Path)
		switch e.Type {
		case EntryDirectory:
			// already created above
		case EntrySymlink:
			_ = os.Remove(target)
			if err := os.Symlink(e.SymlinkTarget, target); err != nil {
				return err
			}
		case EntryFile, EntrySpecial:
			if e.Hash == "" {
				continue
			}
			data, found, err := store.Read(ctx, e.Hash)
			if err != nil {
				return err
			}
			if !found {
				return chunkNotFoundError{id: e.Hash, path: e.Path}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}

type chunkNotFoundError struct {
	id   chunkid.ID
	path string
}

func (e chunkNotFoundError) Error() string {
	return "archive: chunk " + string(e.id) + " for " + e.path + " not found in store"
}
