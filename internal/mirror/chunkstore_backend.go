package mirror

import (
	"context"

	"vaultkeeper/internal/chunkid"
	"vaultkeeper/internal/chunkstore"
)

// ChunkStoreBackend adapts a *chunkstore.Store to the Backend interface so
// any organization/retrieval combination (flat local disk, git-style local
// disk, ...) can serve as a mirrored-store tier.
type ChunkStoreBackend struct {
	label string
	store *chunkstore.Store
}

// NewChunkStoreBackend wraps store as a named Backend.
func NewChunkStoreBackend(label string, store *chunkstore.Store) *ChunkStoreBackend {
	return &ChunkStoreBackend{label: label, store: store}
}

func (b *ChunkStoreBackend) Label() string { return b.label }

func (b *ChunkStoreBackend) ReadAll(ctx context.Context, id string) ([]byte, bool, error) {
	return b.store.Read(ctx, chunkid.ID(id))
}

func (b *ChunkStoreBackend) Write(ctx context.Context, id string, data []byte) error {
	_, err := b.store.Write(ctx, data, chunkid.ID(id), chunkid.Metadata{})
	return err
}

func (b *ChunkStoreBackend) Delete(ctx context.Context, id string) error {
	return b.store.Delete(ctx, chunkid.ID(id))
}

func (b *ChunkStoreBackend) Exists(ctx context.Context, id string) (bool, error) {
	return b.store.Exists(ctx, chunkid.ID(id))
}

func (b *ChunkStoreBackend) Size(ctx context.Context, id string) (int64, bool, error) {
	return b.store.Size(ctx, chunkid.ID(id))
}
