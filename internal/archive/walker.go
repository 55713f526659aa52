package archive

import (
	"io/fs"
	"os"
	"path/filepath"
)

// ProcessEntryFunc is called for every entry the walker visits, after
// classification. Returning false stops the walk entirely.
type ProcessEntryFunc func(entry *FileEntry) (cont bool)

// HandleErrorFunc is called when the walker hits an I/O error at url.
// Returning false stops the walk entirely.
type HandleErrorFunc func(url string, err error) (cont bool)

// Walker walks a directory tree, dispatching each visited entry to a
// caller-supplied delegate rather than building the whole tree up front.
type Walker struct {
	opts          Options
	processEntry  ProcessEntryFunc
	handleError   HandleErrorFunc
	stats         *Stats
}

// NewWalker constructs a Walker. processEntry and handleError must be
// non-nil.
func NewWalker(opts Options, processEntry ProcessEntryFunc, handleError HandleErrorFunc) *Walker {
	return &Walker{opts: opts, processEntry: processEntry, handleError: handleError, stats: newStats()}
}

// Stats returns the accumulated stats. Valid after Walk returns.
func (w *Walker) Stats() Stats {
	return *w.stats
}

// Walk walks root, classifying and emitting entries. The root entry has no
// parent and an empty Name, so emitted relative paths are relative to root.
func (w *Walker) Walk(root string) error {
	info, err := os.Lstat(root)
	if err != nil {
		w.handleError(root, err)
		return nil
	}
	_, err = w.visit(root, info, nil)
	return err
}

// visit classifies one filesystem entry and recurses into directories. It
// returns (continue-walk, error): false means the walk stops. I/O errors
// are routed through handleError, so the returned error is always nil.
func (w *Walker) visit(path string, info fs.FileInfo, parent *FileEntry) (bool, error) {
	name := info.Name()
	if parent == nil {
		// The walk root itself never contributes a path segment: entries
		// are reported relative to root, not prefixed by root's own name.
		name = ""
	}
	if w.opts.SkipHidden && isHidden(name) && parent != nil {
		return true, nil
	}

	entry := &FileEntry{Name: name, ModTime: info.ModTime(), Parent: parent}
	relPath := entry.RelPath()
	if w.opts.BasePath != "" {
		relPath = w.opts.BasePath + "/" + relPath
	}
	if w.opts.Ignore != nil && w.opts.Ignore.Match(relPath) {
		return true, nil
	}

	mode := info.Mode()

	switch {
	case mode&fs.ModeSymlink != 0 && !w.opts.FollowSymlinks:
		target, err := os.Readlink(path)
		if err != nil {
			if !w.dispatchError(path, err) {
				return false, nil
			}
			return true, nil
		}
		entry.Type = EntrySymlink
		entry.SymlinkTarget = target
		w.stats.record(EntrySymlink, 0)
		return w.dispatchEntry(entry), nil

	case isSpecial(mode):
		if !w.opts.EmbedSystemFiles {
			return true, nil
		}
		entry.Type = EntrySpecial
		w.stats.record(EntrySpecial, 0)
		return w.dispatchEntry(entry), nil

	case mode.IsDir():
		entry.Type = EntryDirectory
		w.stats.record(EntryDirectory, 0)
		if !w.dispatchEntry(entry) {
			return false, nil
		}
		children, err := os.ReadDir(path)
		if err != nil {
			if !w.dispatchError(path, err) {
				return false, nil
			}
			return true, nil
		}
		for _, child := range children {
			childInfo, err := child.Info()
			if err != nil {
				if !w.dispatchError(filepath.Join(path, child.Name()), err) {
					return false, nil
				}
				continue
			}
			cont, err := w.visit(filepath.Join(path, child.Name()), childInfo, entry)
			if err != nil {
				return false, err
			}
			if !cont {
				return false, nil
			}
		}
		return true, nil

	default:
		entry.Type = EntryFile
		entry.Size = info.Size()
		w.stats.record(EntryFile, entry.Size)
		return w.dispatchEntry(entry), nil
	}
}

func (w *Walker) dispatchEntry(entry *FileEntry) bool {
	return w.processEntry(entry)
}

func (w *Walker) dispatchError(path string, err error) bool {
	if os.IsPermission(err) && w.opts.SkipPermissionErrors {
		return true
	}
	return w.handleError(path, err)
}

func isSpecial(mode fs.FileMode) bool {
	return mode&(fs.ModeNamedPipe|fs.ModeDevice|fs.ModeSocket|fs.ModeCharDevice) != 0
}
