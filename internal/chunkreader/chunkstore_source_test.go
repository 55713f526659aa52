package chunkreader

import (
	"context"
	"testing"

	"vaultkeeper/internal/chunkid"
	"vaultkeeper/internal/chunkstore"
	"vaultkeeper/internal/orgstore"
)

func newTestStore(t *testing.T) *chunkstore.Store {
	t.Helper()
	dir := t.TempDir()
	return chunkstore.New(chunkstore.Config{
		Organization: orgstore.NewGitStyle(2),
		Retrieval:    chunkstore.NewFileRetrieval(dir, 0o644),
		Existence:    chunkstore.NewFileExistence(dir),
		Sidecars:     chunkstore.NewSidecarStore(dir, 0o644),
	})
}

func TestChunkStoreSourceServesRangesFromAStoredChunk(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	payload := []byte("the quick brown fox jumps over the lazy dog")
	const id chunkid.ID = "deadbeefcafe"
	if _, err := store.Write(ctx, payload, id, chunkid.Metadata{}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	src := NewChunkStoreSource(store, id)
	size, err := src.Size(ctx)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != int64(len(payload)) {
		t.Fatalf("Size = %d, want %d", size, len(payload))
	}

	reader, err := NewBuilder(src).Range(4, 9).Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer reader.Close()

	got, err := reader.Read(ctx, 4, 9)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(payload[4:9]) {
		t.Fatalf("Read = %q, want %q", got, payload[4:9])
	}
}

func TestChunkStoreSourceMissingChunkErrorsOnSize(t *testing.T) {
	store := newTestStore(t)
	src := NewChunkStoreSource(store, chunkid.ID("abcdef012345"))
	if _, err := src.Size(context.Background()); err == nil {
		t.Fatal("expected an error sizing a chunk that was never written")
	}
}
