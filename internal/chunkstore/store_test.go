package chunkstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vaultkeeper/internal/chunkid"
	"vaultkeeper/internal/orgstore"
)

func newTestStore(t *testing.T, withValidator bool) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	var v *Validator
	if withValidator {
		v = NewValidator(ValidatorConfig{VerifyHash: true, MaxSize: 1 << 20})
	}
	store := New(Config{
		Organization: orgstore.NewFlat(),
		Retrieval:    NewFileRetrieval(dir, 0),
		Existence:    NewFileExistence(dir),
		Sidecars:     NewSidecarStore(dir, 0),
		Validator:    v,
	})
	return store, dir
}

func sha256ID(t *testing.T, data []byte) chunkid.ID {
	t.Helper()
	h, err := chunkid.Hash(data, chunkid.SHA256)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return chunkid.ID(h)
}

func TestStoreWriteReadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, true)
	ctx := context.Background()
	data := []byte("hello\n")
	id := sha256ID(t, data)

	gotID, err := store.Write(ctx, data, id, chunkid.Metadata{HashAlgorithm: chunkid.SHA256, ChunkType: chunkid.TypeFile})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if gotID != id {
		t.Fatalf("Write returned %q, want %q", gotID, id)
	}

	got, found, err := store.Read(ctx, id)
	if err != nil || !found {
		t.Fatalf("Read: found=%v err=%v", found, err)
	}
	if string(got) != string(data) {
		t.Fatalf("Read = %q, want %q", got, data)
	}

	exists, err := store.Exists(ctx, id)
	if err != nil || !exists {
		t.Fatalf("Exists: %v, %v", exists, err)
	}
}

func TestStoreDedupMergesOriginalPaths(t *testing.T) {
	store, _ := newTestStore(t, true)
	ctx := context.Background()
	data := []byte("hello\n")
	id := sha256ID(t, data)

	meta1 := chunkid.Metadata{HashAlgorithm: chunkid.SHA256, ChunkType: chunkid.TypeFile, OriginalPaths: []string{"a/x.txt"}}
	meta2 := chunkid.Metadata{HashAlgorithm: chunkid.SHA256, ChunkType: chunkid.TypeFile, OriginalPaths: []string{"b/x.txt"}}

	if _, err := store.Write(ctx, data, id, meta1); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := store.Write(ctx, data, id, meta2); err != nil {
		t.Fatalf("second write: %v", err)
	}

	final, found, err := store.Metadata(ctx, id)
	if err != nil || !found {
		t.Fatalf("Metadata: found=%v err=%v", found, err)
	}
	want := map[string]bool{"a/x.txt": true, "b/x.txt": true}
	if len(final.OriginalPaths) != 2 {
		t.Fatalf("OriginalPaths = %v, want 2 entries", final.OriginalPaths)
	}
	for _, p := range final.OriginalPaths {
		if !want[p] {
			t.Fatalf("unexpected path %q in %v", p, final.OriginalPaths)
		}
	}
}

func TestStoreWriteSecondDifferentPayloadIsCorruption(t *testing.T) {
	store, _ := newTestStore(t, false)
	ctx := context.Background()
	data := []byte("hello\n")
	id := sha256ID(t, data) // intentionally reuse id for mismatched payload

	if _, err := store.Write(ctx, data, id, chunkid.Metadata{}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := store.Write(ctx, []byte("different\n"), id, chunkid.Metadata{}); err == nil {
		t.Fatal("expected corruption error for mismatched payload under same id")
	}
}

func TestStoreReadHashMismatchAfterExternalOverwrite(t *testing.T) {
	store, dir := newTestStore(t, true)
	ctx := context.Background()
	d1 := []byte("original")
	id := sha256ID(t, d1)

	if _, err := store.Write(ctx, d1, id, chunkid.Metadata{HashAlgorithm: chunkid.SHA256}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Externally overwrite the payload file with different bytes.
	if err := os.WriteFile(filepath.Join(dir, string(id)), []byte("tampered"), 0o644); err != nil {
		t.Fatalf("external overwrite: %v", err)
	}

	_, _, err := store.Read(ctx, id)
	if err == nil {
		t.Fatal("expected hash mismatch error on read with verification enabled")
	}

	// Without verification, the tampered bytes are returned without error.
	store2, _ := newTestStore(t, false)
	store2.retrieval = NewFileRetrieval(dir, 0)
	store2.existence = NewFileExistence(dir)
	got, found, err := store2.Read(ctx, id)
	if err != nil || !found {
		t.Fatalf("unverified read: found=%v err=%v", found, err)
	}
	if string(got) != "tampered" {
		t.Fatalf("unverified read = %q, want %q", got, "tampered")
	}
}

func TestStoreDeleteRemovesPayloadAndSidecar(t *testing.T) {
	store, _ := newTestStore(t, false)
	ctx := context.Background()
	data := []byte("x")
	id := sha256ID(t, data)

	if _, err := store.Write(ctx, data, id, chunkid.Metadata{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	exists, err := store.Exists(ctx, id)
	if err != nil || exists {
		t.Fatalf("expected chunk gone after delete, exists=%v err=%v", exists, err)
	}
	// Deleting again is not an error.
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestStoreReadRangeClamps(t *testing.T) {
	store, _ := newTestStore(t, false)
	ctx := context.Background()
	data := []byte("0123456789")
	id := sha256ID(t, data)
	if _, err := store.Write(ctx, data, id, chunkid.Metadata{}); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, found, err := store.ReadRange(ctx, id, 5, 100)
	if err != nil || !found {
		t.Fatalf("ReadRange: found=%v err=%v", found, err)
	}
	if string(got) != "56789" {
		t.Fatalf("ReadRange clamped = %q, want %q", got, "56789")
	}
}
