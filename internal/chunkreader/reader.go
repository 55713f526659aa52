// Package chunkreader implements a lazy chunk reader: a view over a
// chunk's payload that serves partial reads from an expanding cache
// window. A read inside the window is served from memory; a read outside
// it re-reads the whole enlarged window from the underlying store,
// including bytes already cached. An io.SectionReader presents a fixed byte range;
// here the "section" is a caller-controlled, growable window instead.
package chunkreader

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by any read on a Reader after Close.
var ErrClosed = errors.New("chunkreader: reader is closed")

// Source is the minimal capability a chunk reader needs from its backing
// store: ranged reads and a known size. A chunk held in a chunkstore.Store
// is adapted to this interface by NewChunkStoreSource.
type Source interface {
	ReadRange(ctx context.Context, offset, length int64) ([]byte, error)
	Size(ctx context.Context) (int64, error)
}

// cachedRange is a half-open byte range [lo, hi) already held in the
// Reader's buffer, or the zero value when nothing is cached yet.
type cachedRange struct {
	lo, hi int64
}

func (r cachedRange) empty() bool { return r.lo >= r.hi }

func (r cachedRange) contains(lo, hi int64) bool {
	return !r.empty() && lo >= r.lo && hi <= r.hi
}

// Reader is a lazy, cached view over one chunk's payload.
type Reader struct {
	mu     sync.Mutex
	src    Source
	size   int64
	buf    []byte // bytes for [cached.lo, cached.hi)
	cached cachedRange
	closed bool
}

// newReader constructs a Reader over src with an initial cached range
// [lo, hi), clamped to [0, size).
func newReader(ctx context.Context, src Source, lo, hi int64) (*Reader, error) {
	size, err := src.Size(ctx)
	if err != nil {
		return nil, err
	}
	r := &Reader{src: src, size: size}

	lo, hi = clamp(lo, hi, size)
	if hi > lo {
		data, err := src.ReadRange(ctx, lo, hi-lo)
		if err != nil {
			return nil, err
		}
		r.buf = data
		r.cached = cachedRange{lo: lo, hi: lo + int64(len(data))}
	}
	return r, nil
}

func clamp(lo, hi, size int64) (int64, int64) {
	if lo < 0 {
		lo = 0
	}
	if hi > size {
		hi = size
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// Size returns the chunk's total payload size.
func (r *Reader) Size() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// IsFullyCached reports whether the cached range equals [0, size).
func (r *Reader) IsFullyCached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cached.lo == 0 && r.cached.hi == r.size
}

// ClearCache drops all cached bytes. The reader remains usable; subsequent
// reads refetch from the source.
func (r *Reader) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = nil
	r.cached = cachedRange{}
}

// Close releases the reader. Close is idempotent; reads after Close fail
// with ErrClosed.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.buf = nil
	r.cached = cachedRange{}
	return nil
}

// Read returns bytes in [lo, hi), expanding the cached window to cover the
// request if necessary. hi is clamped to the chunk's size.
func (r *Reader) Read(ctx context.Context, lo, hi int64) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	lo, hi = clamp(lo, hi, r.size)
	if hi <= lo {
		return []byte{}, nil
	}

	if !r.cached.contains(lo, hi) {
		if err := r.expandLocked(ctx, lo, hi); err != nil {
			return nil, err
		}
	}

	start := lo - r.cached.lo
	end := hi - r.cached.lo
	out := make([]byte, end-start)
	copy(out, r.buf[start:end])
	return out, nil
}

// expandLocked grows the cached window to cover [lo, hi). It re-reads the
// whole union of the old window and [lo, hi) from the source, including the
// bytes already cached. Callers must hold r.mu.
func (r *Reader) expandLocked(ctx context.Context, lo, hi int64) error {
	if r.cached.empty() {
		data, err := r.src.ReadRange(ctx, lo, hi-lo)
		if err != nil {
			return err
		}
		r.buf = data
		r.cached = cachedRange{lo: lo, hi: lo + int64(len(data))}
		return nil
	}

	newLo := lo
	if r.cached.lo < newLo {
		newLo = r.cached.lo
	}
	newHi := hi
	if r.cached.hi > newHi {
		newHi = r.cached.hi
	}

	data, err := r.src.ReadRange(ctx, newLo, newHi-newLo)
	if err != nil {
		return err
	}
	r.buf = data
	r.cached = cachedRange{lo: newLo, hi: newLo + int64(len(data))}
	return nil
}

// ReadFull returns the entire payload, expanding the cache to cover it.
func (r *Reader) ReadFull(ctx context.Context) ([]byte, error) {
	return r.Read(ctx, 0, r.Size())
}

// ReadMagicNumber returns the first n bytes (or fewer, if the chunk is
// smaller).
func (r *Reader) ReadMagicNumber(ctx context.Context, n int64) ([]byte, error) {
	return r.Read(ctx, 0, n)
}

// ReadHeader returns the first n bytes. Distinct method from
// ReadMagicNumber even though the implementation is identical: callers
// express different intent, and presets may diverge later (e.g. a header
// preset that also validates a checksum).
func (r *Reader) ReadHeader(ctx context.Context, n int64) ([]byte, error) {
	return r.Read(ctx, 0, n)
}

// ReadTail returns the last n bytes of the payload.
func (r *Reader) ReadTail(ctx context.Context, n int64) ([]byte, error) {
	size := r.Size()
	lo := size - n
	if lo < 0 {
		lo = 0
	}
	return r.Read(ctx, lo, size)
}
