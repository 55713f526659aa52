package chunkstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// Existence answers path-level existence and size queries without reading
// payload bytes.
type Existence interface {
	Exists(ctx context.Context, path string) (bool, error)
	Size(ctx context.Context, path string) (int64, bool, error)
}

// FileExistence is an Existence backed by the local filesystem, sharing a
// base directory with a FileRetrieval.
type FileExistence struct {
	baseDir string
}

// NewFileExistence returns a FileExistence rooted at baseDir.
func NewFileExistence(baseDir string) *FileExistence {
	return &FileExistence{baseDir: baseDir}
}

func (e *FileExistence) abs(path string) string {
	return filepath.Join(e.baseDir, filepath.FromSlash(path))
}

func (e *FileExistence) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(e.abs(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (e *FileExistence) Size(ctx context.Context, path string) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	info, err := os.Stat(e.abs(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return info.Size(), true, nil
}
