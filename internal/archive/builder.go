package archive

import (
	"context"
	"os"
	"time"

	"vaultkeeper/internal/chunkid"
)

// ChunkWriter is the capability the archive builder needs from the
// downstream store: write a payload, with metadata merge on dedup,
// returning its content-addressed id. *chunkstore.Store satisfies this
// signature without archive importing chunkstore directly.
type ChunkWriter interface {
	Write(ctx context.Context, data []byte, id chunkid.ID, meta chunkid.Metadata) (chunkid.ID, error)
}

// HashComputer is the capability the archive builder needs from the file
// hash cache. *hashcache.Cache satisfies this signature.
type HashComputer interface {
	Compute(ctx context.Context, path string, data []byte, size int64, modTime time.Time, alg chunkid.HashAlgorithm) (string, error)
}

// Classifier determines a file's content type and chunk type from its
// path and a peek at its leading bytes. *detect.Engine satisfies this
// interface.
type Classifier interface {
	Classify(path string, peek []byte) (contentType string, chunkType chunkid.ChunkType, err error)
}

// BuilderConfig assembles an archive Builder.
type BuilderConfig struct {
	Store      ChunkWriter
	Algorithm  chunkid.HashAlgorithm
	HashCache  HashComputer // optional; nil means hash every file unconditionally
	Classifier Classifier   // optional; nil means every file is chunkid.TypeFile with no content type
	PeekBytes  int64        // bytes read for classification, default 512
}

// Builder drives an archive-create run: it wraps a Walker's process-entry
// delegate to classify, hash, and write each regular file, accumulating a
// Manifest alongside the Walker's Stats.
type Builder struct {
	cfg      BuilderConfig
	manifest Manifest
}

// NewBuilder constructs a Builder. cfg.PeekBytes defaults to 512.
func NewBuilder(cfg BuilderConfig) *Builder {
	if cfg.PeekBytes == 0 {
		cfg.PeekBytes = 512
	}
	return &Builder{cfg: cfg}
}

// Manifest returns the manifest accumulated so far.
func (b *Builder) Manifest() Manifest {
	return b.manifest
}

// ProcessEntry is a ProcessEntryFunc that classifies, hashes, and writes
// regular files, and appends a ManifestEntry for every entry. Directories,
// symlinks, and special files are recorded in the manifest without a
// chunk write.
func (b *Builder) ProcessEntry(ctx context.Context, absPath string) ProcessEntryFunc {
	return func(entry *FileEntry) bool {
		me := ManifestEntry{
			Path: entry.RelPath(),
			Type: entry.Type,
			Size: entry.Size,
		}
		if entry.Type == EntrySymlink {
			me.SymlinkTarget = entry.SymlinkTarget
		}

		if entry.Type == EntryFile {
			id, err := b.writeFileChunk(ctx, absPath, entry)
			if err != nil {
				// A failed chunk write is not reported: the entry is
				// still recorded in the manifest, with an empty hash,
				// and the walk continues.
				me.Hash = ""
			} else {
				me.Hash = id
			}
		}

		b.manifest.Entries = append(b.manifest.Entries, me)
		return true
	}
}

func (b *Builder) writeFileChunk(ctx context.Context, rootAbsPath string, entry *FileEntry) (chunkid.ID, error) {
	fullPath := rootAbsPath + "/" + entry.RelPath()
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", err
	}

	contentType, chunkType := "", chunkid.TypeFile
	if b.cfg.Classifier != nil {
		peek := data
		if int64(len(peek)) > b.cfg.PeekBytes {
			peek = peek[:b.cfg.PeekBytes]
		}
		ct, cht, err := b.cfg.Classifier.Classify(entry.RelPath(), peek)
		if err == nil {
			contentType, chunkType = ct, cht
		}
	}

	var hash string
	if b.cfg.HashCache != nil {
		hash, err = b.cfg.HashCache.Compute(ctx, fullPath, data, entry.Size, entry.ModTime, b.cfg.Algorithm)
	} else {
		hash, err = chunkid.Hash(data, b.cfg.Algorithm)
	}
	if err != nil {
		return "", err
	}

	meta := chunkid.Metadata{
		HashAlgorithm:    b.cfg.Algorithm,
		ContentType:      contentType,
		ChunkType:        chunkType,
		OriginalFilename: entry.Name,
		OriginalPaths:    []string{entry.RelPath()},
		Modified:         entry.ModTime,
	}

	return b.cfg.Store.Write(ctx, data, chunkid.ID(hash), meta)
}
