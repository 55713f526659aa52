package chunkreader

import (
	"bytes"
	"context"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestZstdSeekableSourceRandomAccessRoundTrip(t *testing.T) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	defer enc.Close()

	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 20000)

	var compressed bytes.Buffer
	if err := WriteSeekable(&compressed, payload, enc); err != nil {
		t.Fatalf("WriteSeekable: %v", err)
	}
	if compressed.Len() >= len(payload) {
		t.Fatalf("compressed size %d not smaller than input %d", compressed.Len(), len(payload))
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		t.Fatalf("zstd.NewReader: %v", err)
	}
	defer dec.Close()

	src, err := NewZstdSeekableSource(compressed.Bytes(), dec)
	if err != nil {
		t.Fatalf("NewZstdSeekableSource: %v", err)
	}
	defer src.(*zstdSeekableSource).Close()

	ctx := context.Background()
	size, err := src.Size(ctx)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != int64(len(payload)) {
		t.Fatalf("Size = %d, want %d", size, len(payload))
	}

	reader, err := NewBuilder(src).MagicNumber(16).Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer reader.Close()

	got, err := reader.Read(ctx, 0, 16)
	if err != nil {
		t.Fatalf("Read header: %v", err)
	}
	if string(got) != string(payload[:16]) {
		t.Fatalf("header = %q, want %q", got, payload[:16])
	}

	mid := int64(len(payload) / 2)
	got, err = reader.Read(ctx, mid-100, mid+100)
	if err != nil {
		t.Fatalf("Read mid range: %v", err)
	}
	if !bytes.Equal(got, payload[mid-100:mid+100]) {
		t.Fatal("mid-range read did not round trip across a frame boundary")
	}

	full, err := reader.ReadFull(ctx)
	if err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if !bytes.Equal(full, payload) {
		t.Fatal("full read did not round trip")
	}
}
