package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vaultkeeper/internal/chunkid"
)

func TestArchiveCreateThenExtractRoundTrip(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	mustWriteFile(t, filepath.Join(src, "top.txt"), "top level content")
	mustWriteFile(t, filepath.Join(src, "nested", "inner.txt"), "nested content")

	store := newTestChunkStore(t)
	builder := NewBuilder(BuilderConfig{Store: store, Algorithm: chunkid.SHA256})
	ctx := context.Background()

	w := NewWalker(Options{}, builder.ProcessEntry(ctx, src), func(string, error) bool { return true })
	if err := w.Walk(src); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	dest := t.TempDir()
	if err := Extract(ctx, store, builder.Manifest(), dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	gotTop, err := os.ReadFile(filepath.Join(dest, "top.txt"))
	if err != nil {
		t.Fatalf("read extracted top.txt: %v", err)
	}
	if string(gotTop) != "top level content" {
		t.Fatalf("top.txt = %q", gotTop)
	}

	gotInner, err := os.ReadFile(filepath.Join(dest, "nested", "inner.txt"))
	if err != nil {
		t.Fatalf("read extracted nested/inner.txt: %v", err)
	}
	if string(gotInner) != "nested content" {
		t.Fatalf("nested/inner.txt = %q", gotInner)
	}

	for _, e := range builder.Manifest().Entries {
		if e.Type != EntryFile {
			continue
		}
		if e.Path != "top.txt" && e.Path != "nested/inner.txt" {
			t.Fatalf("unexpected manifest path %q", e.Path)
		}
	}
}

func TestManifestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	m := Manifest{Entries: []ManifestEntry{
		{Path: "a.txt", Type: EntryFile, Hash: "deadbeef", Size: 3},
		{Path: "sub", Type: EntryDirectory},
	}}

	if err := SaveManifest(path, m); err != nil {
		t.Fatalf("SaveManifest: %v", err)
	}

	loaded, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(loaded.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(loaded.Entries))
	}
	if loaded.Entries[0].Path != "a.txt" || loaded.Entries[0].Hash != "deadbeef" {
		t.Fatalf("loaded entry 0 = %+v", loaded.Entries[0])
	}
}
