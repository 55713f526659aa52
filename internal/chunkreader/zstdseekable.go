package chunkreader

import (
	"bytes"
	"context"
	"io"
	"sync"

	seekable "github.com/SaveTheRbtz/zstd-seekable-format-go/pkg"
	"github.com/klauspost/compress/zstd"
)

// SeekableFrameSize is the uncompressed frame size used when writing a
// chunk with WriteSeekable: each frame compresses independently, trading
// some compression ratio for the ability to decompress only the frames a
// later ReadRange actually touches.
const SeekableFrameSize = 256 << 10 // 256 KB

// WriteSeekable compresses data into w as a seekable zstd stream: a
// sequence of independently-compressed frames of at most SeekableFrameSize
// uncompressed bytes each, followed by a seek table. enc may be shared
// across calls; zstd.Encoder is safe for concurrent use once constructed.
func WriteSeekable(w io.Writer, data []byte, enc *zstd.Encoder) error {
	sw, err := seekable.NewWriter(w, enc)
	if err != nil {
		return err
	}
	for off := 0; off < len(data); off += SeekableFrameSize {
		end := min(off+SeekableFrameSize, len(data))
		if _, err := sw.Write(data[off:end]); err != nil {
			sw.Close()
			return err
		}
	}
	return sw.Close()
}

// zstdSeekableSource adapts a seekable zstd-compressed byte stream to the
// Source interface: ReadRange decompresses only the frames overlapping the
// requested range instead of the whole payload, letting chunkreader's
// expanding-window cache stay useful even when the underlying chunk is
// compressed.
type zstdSeekableSource struct {
	mu     sync.Mutex
	reader seekable.Reader
	size   int64
}

// NewZstdSeekableSource opens compressed (previously written by
// WriteSeekable) as a Source. dec may be shared across calls.
func NewZstdSeekableSource(compressed []byte, dec *zstd.Decoder) (Source, error) {
	r, err := seekable.NewReader(bytes.NewReader(compressed), dec)
	if err != nil {
		return nil, err
	}
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		r.Close()
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		r.Close()
		return nil, err
	}
	return &zstdSeekableSource{reader: r, size: size}, nil
}

func (s *zstdSeekableSource) Size(ctx context.Context) (int64, error) {
	return s.size, nil
}

func (s *zstdSeekableSource) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, length)
	n, err := s.reader.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// Close releases the underlying seekable reader.
func (s *zstdSeekableSource) Close() error {
	return s.reader.Close()
}
