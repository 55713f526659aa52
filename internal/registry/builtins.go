package registry

import (
	"archive/tar"
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// gzipAdapter decompresses gzip streams using klauspost/compress/gzip, a
// drop-in faster replacement for the standard library's gzip reader.
type gzipAdapter struct{}

func (gzipAdapter) Format() string { return "gzip" }

func (gzipAdapter) Decompress(r io.Reader, w io.Writer) error {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gr.Close()
	_, err = io.Copy(w, gr)
	return err
}

// zstdAdapter decompresses zstd streams via klauspost/compress/zstd.
type zstdAdapter struct{}

func (zstdAdapter) Format() string { return "zstd" }

func (zstdAdapter) Decompress(r io.Reader, w io.Writer) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer dec.Close()
	_, err = io.Copy(w, dec)
	return err
}

// brotliAdapter decompresses brotli streams via andybalholm/brotli.
type brotliAdapter struct{}

func (brotliAdapter) Format() string { return "brotli" }

func (brotliAdapter) Decompress(r io.Reader, w io.Writer) error {
	_, err := io.Copy(w, brotli.NewReader(r))
	return err
}

// tarAdapter expands a tar container, treated as a "compression" format
// for the purposes of the nested-compression pipeline stage (the classic
// case is a tar archive that was itself gzip-compressed). It is not itself
// compressed; Decompress writes
// the content of the archive's first regular-file entry, which is what
// the pipeline's nested-compression scratch step needs to locate
// per-entry content for hashing.
type tarAdapter struct{}

func (tarAdapter) Format() string { return "tar" }

func (tarAdapter) Decompress(r io.Reader, w io.Writer) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if _, err := io.Copy(w, tr); err != nil {
			return err
		}
		return nil
	}
}

// FirstRegularFileName returns the name of the first regular-file entry in
// a tar stream, without extracting its content. Used by the pipeline to
// record which entry it expanded.
func FirstRegularFileName(r io.Reader) (string, bool) {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err != nil {
			return "", false
		}
		if hdr.Typeflag == tar.TypeReg {
			return hdr.Name, true
		}
	}
}

// RegisterDefaults registers the built-in compression adapters (gzip,
// zstd, brotli, tar) into reg. Registration is a process-wide operation
// executed once at startup; callers invoke this explicitly rather than
// relying on package init, keeping registration observable and
// ResetForTest-friendly.
func RegisterDefaults(reg *CompressionRegistry) error {
	entries := []CompressionDescriptor{
		{Format: "gzip", Extensions: []string{"gz", "gzip", "tgz"}, New: func() (CompressionAdapter, error) { return gzipAdapter{}, nil }},
		{Format: "zstd", Extensions: []string{"zst", "zstd"}, New: func() (CompressionAdapter, error) { return zstdAdapter{}, nil }},
		{Format: "brotli", Extensions: []string{"br"}, New: func() (CompressionAdapter, error) { return brotliAdapter{}, nil }},
		{Format: "tar", Extensions: []string{"tar"}, New: func() (CompressionAdapter, error) { return tarAdapter{}, nil }},
	}
	for _, d := range entries {
		if err := reg.Register(d, true); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefaultFileTypes registers the built-in file-type descriptors
// (zip/tar archive containers, ISO9660/DMG disk images) into reg, so the
// detection engine can tell an archive or disk image apart from a plain
// file. Like RegisterDefaults, this is executed explicitly rather than via
// package init.
func RegisterDefaultFileTypes(reg *FileTypeRegistry) error {
	entries := []FileTypeDescriptor{
		{
			ShortID:       "zip",
			UTI:           "public.zip-archive",
			DisplayName:   "ZIP archive",
			Extensions:    []string{"zip"},
			MagicPatterns: []MagicPattern{{Offset: 0, Literal: []byte("PK\x03\x04")}},
			Category:      CategoryArchive,
		},
		{
			ShortID:       "tar",
			UTI:           "public.tar-archive",
			DisplayName:   "tar archive",
			Extensions:    []string{"tar"},
			MagicPatterns: []MagicPattern{{Offset: 257, Literal: []byte("ustar")}},
			Category:      CategoryArchive,
		},
		{
			ShortID:       "iso9660",
			UTI:           "public.iso-image",
			DisplayName:   "ISO 9660 disk image",
			Extensions:    []string{"iso"},
			MagicPatterns: []MagicPattern{{Offset: 0x8001, Literal: []byte("CD001")}},
			Category:      CategoryDiskImage,
		},
		{
			ShortID:     "dmg",
			UTI:         "com.apple.disk-image",
			DisplayName: "Apple disk image",
			Extensions:  []string{"dmg"},
			Category:    CategoryDiskImage,
		},
	}
	for _, d := range entries {
		if err := reg.Register(d, true); err != nil {
			return err
		}
	}
	return nil
}

// sniffGzip and sniffZstd are used by the detection engine's magic-number
// strategy; kept here alongside the adapters they identify.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// DetectCompressionMagic returns the compression format whose magic number
// matches the leading bytes of data, if any.
func DetectCompressionMagic(data []byte) (string, bool) {
	if bytes.HasPrefix(data, gzipMagic) {
		return "gzip", true
	}
	if bytes.HasPrefix(data, zstdMagic) {
		return "zstd", true
	}
	return "", false
}
