package chunkreader

import (
	"context"

	"vaultkeeper/internal/chunkid"
	"vaultkeeper/internal/chunkstore"
)

// storeHandle adapts one chunk id in a *chunkstore.Store to the Source
// interface, so chunkreader can open a lazy reader over a stored chunk. A
// chunk that is not in the store surfaces as a KindNotFound StoreError.
type storeHandle struct {
	store *chunkstore.Store
	id    chunkid.ID
}

// NewChunkStoreSource returns a Source over a single chunk in store.
func NewChunkStoreSource(store *chunkstore.Store, id chunkid.ID) Source {
	return &storeHandle{store: store, id: id}
}

func (h *storeHandle) Size(ctx context.Context) (int64, error) {
	n, found, err := h.store.Size(ctx, h.id)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, chunkstore.NewError(chunkstore.KindNotFound, string(h.id), "chunk not found")
	}
	return n, nil
}

func (h *storeHandle) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	data, found, err := h.store.ReadRange(ctx, h.id, offset, length)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, chunkstore.NewError(chunkstore.KindNotFound, string(h.id), "chunk not found")
	}
	return data, nil
}
