package chunkreader

import "context"

// Builder configures the initial cached range of a Reader before any bytes
// are fetched, via one of four presets.
type Builder struct {
	src    Source
	lo, hi int64
	full   bool
}

// NewBuilder starts a Builder over src.
func NewBuilder(src Source) *Builder {
	return &Builder{src: src}
}

// MagicNumber caches only the first maxBytes, enough to run magic-number
// detection without fetching the whole payload.
func (b *Builder) MagicNumber(maxBytes int64) *Builder {
	b.lo, b.hi, b.full = 0, maxBytes, false
	return b
}

// Header caches only the first maxBytes. Distinct preset name from
// MagicNumber, same initial range.
func (b *Builder) Header(maxBytes int64) *Builder {
	b.lo, b.hi, b.full = 0, maxBytes, false
	return b
}

// Full caches the entire payload up front.
func (b *Builder) Full() *Builder {
	b.full = true
	return b
}

// Range caches [lo, hi) up front.
func (b *Builder) Range(lo, hi int64) *Builder {
	b.lo, b.hi, b.full = lo, hi, false
	return b
}

// Build constructs the Reader, performing the preset's initial fetch.
func (b *Builder) Build(ctx context.Context) (*Reader, error) {
	if b.full {
		size, err := b.src.Size(ctx)
		if err != nil {
			return nil, err
		}
		return newReader(ctx, b.src, 0, size)
	}
	return newReader(ctx, b.src, b.lo, b.hi)
}
