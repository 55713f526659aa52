package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"vaultkeeper/internal/registry"
)

// scratch writes r to a new temp file and returns its path. Pipeline stages
// never mutate the artifact at ctx.URL in place; each stage that transforms
// content produces a fresh scratch file and advances ctx.URL to it.
func scratch(r io.Reader) (string, error) {
	f, err := os.CreateTemp("", "vaultkeeper-pipeline-*")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// peek reads up to n bytes from the start of path without consuming it for
// later stages.
func peek(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, n)
	m, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:m], nil
}

// CompressionRegistry is the subset of registry.CompressionRegistry a stage
// needs: descriptor lookup by url/format. Declared locally so stages can be
// tested against a fake registry without importing the concrete one.
type CompressionRegistry interface {
	LookupURL(url string) (registry.CompressionDescriptor, bool)
	LookupFormat(format string) (registry.CompressionDescriptor, bool)
}

// DecompressionStage consults a CompressionRegistry for ctx.URL's format and,
// if one is registered, decompresses the artifact into a scratch file. It
// records "compression_format" and "decompressed_url" in the context. If no
// adapter matches, it is a no-op: decompressed_url mirrors URL unchanged.
type DecompressionStage struct {
	Registry CompressionRegistry
}

func (DecompressionStage) Name() string { return "decompression" }

func (s DecompressionStage) Run(ctx *Context) error {
	desc, ok := s.Registry.LookupURL(ctx.URL)
	if !ok {
		header, err := peek(ctx.URL, 8)
		if err == nil {
			if format, found := registry.DetectCompressionMagic(header); found {
				desc, ok = s.Registry.LookupFormat(format)
			}
		}
	}
	if !ok {
		ctx.Set("decompressed_url", ctx.URL)
		return nil
	}

	adapter, err := desc.Instantiate()
	if err != nil {
		ctx.Fail(s.Name(), err)
		ctx.Set("decompressed_url", ctx.URL)
		return nil
	}

	in, err := os.Open(ctx.URL)
	if err != nil {
		ctx.Fail(s.Name(), err)
		ctx.Set("decompressed_url", ctx.URL)
		return nil
	}
	defer in.Close()

	var out bytes.Buffer
	if err := adapter.Decompress(in, &out); err != nil {
		ctx.Fail(s.Name(), fmt.Errorf("decompress %s: %w", desc.Format, err))
		ctx.Set("decompressed_url", ctx.URL)
		return nil
	}

	path, err := scratch(&out)
	if err != nil {
		ctx.Fail(s.Name(), err)
		ctx.Set("decompressed_url", ctx.URL)
		return nil
	}

	ctx.Set("compression_format", desc.Format)
	ctx.Set("decompressed_url", path)
	ctx.URL = path
	return nil
}

// NestedCompressionStage re-examines the artifact left by DecompressionStage
// for a second, nested container format — the classic case is a tar archive
// that was itself gzip-compressed. When found, it expands the nested format
// into a further scratch file and records "nested_compression_format",
// "nested_compression_processed", and "final_decompressed_url". When no
// nested format is detected, final_decompressed_url mirrors decompressed_url
// and nested_compression_processed is false.
type NestedCompressionStage struct {
	Registry CompressionRegistry
}

func (NestedCompressionStage) Name() string { return "nested-compression" }

func (s NestedCompressionStage) Run(ctx *Context) error {
	url := ctx.String("decompressed_url")
	if url == "" {
		url = ctx.URL
	}

	header, err := peek(url, 512)
	if err != nil {
		ctx.Fail(s.Name(), err)
		ctx.Set("final_decompressed_url", url)
		ctx.Set("nested_compression_processed", false)
		return nil
	}

	format, ok := sniffNestedFormat(header)
	if !ok {
		ctx.Set("final_decompressed_url", url)
		ctx.Set("nested_compression_processed", false)
		return nil
	}

	desc, ok := s.Registry.LookupFormat(format)
	if !ok {
		ctx.Set("final_decompressed_url", url)
		ctx.Set("nested_compression_processed", false)
		return nil
	}

	adapter, err := desc.Instantiate()
	if err != nil {
		ctx.Fail(s.Name(), err)
		ctx.Set("final_decompressed_url", url)
		ctx.Set("nested_compression_processed", false)
		return nil
	}

	in, err := os.Open(url)
	if err != nil {
		ctx.Fail(s.Name(), err)
		ctx.Set("final_decompressed_url", url)
		ctx.Set("nested_compression_processed", false)
		return nil
	}
	defer in.Close()

	var out bytes.Buffer
	if err := adapter.Decompress(in, &out); err != nil {
		ctx.Fail(s.Name(), fmt.Errorf("expand nested %s: %w", format, err))
		ctx.Set("final_decompressed_url", url)
		ctx.Set("nested_compression_processed", false)
		return nil
	}

	path, err := scratch(&out)
	if err != nil {
		ctx.Fail(s.Name(), err)
		ctx.Set("final_decompressed_url", url)
		ctx.Set("nested_compression_processed", false)
		return nil
	}

	ctx.Set("nested_compression_format", format)
	ctx.Set("final_decompressed_url", path)
	ctx.Set("nested_compression_processed", true)
	ctx.URL = path
	return nil
}

var tarMagic = []byte("ustar")

// sniffNestedFormat inspects a header for a tar archive (the "ustar" magic
// at offset 257) or, failing that, a second layer of gzip/zstd compression.
func sniffNestedFormat(header []byte) (string, bool) {
	if len(header) >= 262 && bytes.Equal(header[257:262], tarMagic) {
		return "tar", true
	}
	if format, ok := registry.DetectCompressionMagic(header); ok {
		return format, true
	}
	return "", false
}

// NewDefaultChain returns the standard decompress-then-detect-nested chain,
// backed by the process-wide compression registry.
func NewDefaultChain() *Chain {
	reg := registry.GlobalCompression()
	return NewChain(
		DecompressionStage{Registry: reg},
		NestedCompressionStage{Registry: reg},
	)
}
