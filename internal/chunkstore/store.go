// Package chunkstore implements the composable, content-addressed chunk
// store: organization + retrieval + existence collaborate to provide
// write/read/update/delete/exists/size over chunks identified by
// chunkid.ID, with JSON sidecar metadata that merges on deduplicated
// writes. Store has no handle operation; a lazy reader over a stored chunk
// is built with chunkreader.NewChunkStoreSource.
package chunkstore

import (
	"bytes"
	"context"

	"vaultkeeper/internal/chunkid"
	"vaultkeeper/internal/orgstore"
)

// Store is a composable chunk store built from three injectable
// collaborators, split by capability rather than by concrete backend.
type Store struct {
	org       orgstore.Strategy
	retrieval Retrieval
	existence Existence
	sidecars  *SidecarStore
	validator *Validator
}

// Config gathers Store's collaborators. Validator may be nil to disable
// write/read validation.
type Config struct {
	Organization orgstore.Strategy
	Retrieval    Retrieval
	Existence    Existence
	Sidecars     *SidecarStore
	Validator    *Validator
}

// New assembles a Store from cfg.
func New(cfg Config) *Store {
	return &Store{
		org:       cfg.Organization,
		retrieval: cfg.Retrieval,
		existence: cfg.Existence,
		sidecars:  cfg.Sidecars,
		validator: cfg.Validator,
	}
}

// Write persists data under id, merging metadata with any existing
// sidecar record. A second write with the same id and
// byte-identical payload is a no-op on the payload and a set-union on
// OriginalPaths; a second write with a different payload under the same
// id is a corruption error.
func (s *Store) Write(ctx context.Context, data []byte, id chunkid.ID, meta chunkid.Metadata) (chunkid.ID, error) {
	path, err := s.org.Build(id)
	if err != nil {
		return "", Wrap(KindInvalidID, string(id), "build storage path", err)
	}

	if s.validator != nil {
		res := s.validator.ValidateWrite(id, data, meta)
		if !res.IsValid {
			return "", NewError(KindValidationFailed, string(id), joinErrors(res.Errors))
		}
	}

	existed, err := s.existence.Exists(ctx, path)
	if err != nil {
		return "", Wrap(KindWriteFailure, string(id), "probe existing chunk", err)
	}
	if existed {
		current, found, err := s.retrieval.ReadAll(ctx, path)
		if err != nil {
			return "", Wrap(KindReadFailure, string(id), "read existing payload", err)
		}
		if found && !bytes.Equal(current, data) {
			return "", NewError(KindCorruptedData, string(id), "payload differs from existing chunk with the same id")
		}
		// Byte-identical (or payload file briefly missing): fall through
		// to the idempotent metadata merge below without rewriting bytes
		// we already know are correct.
	} else {
		if err := s.retrieval.Write(ctx, path, data); err != nil {
			return "", Wrap(KindWriteFailure, string(id), "write payload", err)
		}
	}

	if s.sidecars != nil {
		meta.Size = int64(len(data))
		if _, err := s.sidecars.SaveMerged(ctx, path, meta); err != nil {
			return "", Wrap(KindWriteFailure, string(id), "write metadata sidecar", err)
		}
	}

	return id, nil
}

// Update is an alias for Write: updating a chunk is only ever an
// idempotent overwrite under the same id, which Write already enforces.
func (s *Store) Update(ctx context.Context, data []byte, id chunkid.ID, meta chunkid.Metadata) (chunkid.ID, error) {
	return s.Write(ctx, data, id, meta)
}

// Read returns the full payload for id, or (nil, false, nil) if absent.
func (s *Store) Read(ctx context.Context, id chunkid.ID) ([]byte, bool, error) {
	path, err := s.org.Build(id)
	if err != nil {
		return nil, false, Wrap(KindInvalidID, string(id), "build storage path", err)
	}
	data, found, err := s.retrieval.ReadAll(ctx, path)
	if err != nil {
		return nil, false, Wrap(KindReadFailure, string(id), "read payload", err)
	}
	if !found {
		return nil, false, nil
	}

	if s.validator != nil {
		if meta, metaFound, _ := s.sidecars.Load(ctx, path); metaFound {
			res := s.validator.ValidateRead(id, data, meta)
			if !res.IsValid {
				return data, true, NewError(KindHashMismatch, string(id), joinErrors(res.Errors))
			}
		}
	}

	return data, true, nil
}

// ReadRange returns bytes in [offset, offset+length) for id, clamped to
// the chunk's actual size, or (nil, false, nil) if id is absent.
func (s *Store) ReadRange(ctx context.Context, id chunkid.ID, offset, length int64) ([]byte, bool, error) {
	path, err := s.org.Build(id)
	if err != nil {
		return nil, false, Wrap(KindInvalidID, string(id), "build storage path", err)
	}
	data, found, err := s.retrieval.ReadRange(ctx, path, offset, length)
	if err != nil {
		return nil, false, Wrap(KindReadFailure, string(id), "read payload range", err)
	}
	return data, found, nil
}

// Delete removes id's payload and sidecar. A missing chunk is not an
// error.
func (s *Store) Delete(ctx context.Context, id chunkid.ID) error {
	path, err := s.org.Build(id)
	if err != nil {
		return Wrap(KindInvalidID, string(id), "build storage path", err)
	}
	if err := s.retrieval.Delete(ctx, path); err != nil {
		return Wrap(KindDeleteFailure, string(id), "delete payload", err)
	}
	if s.sidecars != nil {
		if err := s.sidecars.Delete(ctx, path); err != nil {
			return Wrap(KindDeleteFailure, string(id), "delete metadata sidecar", err)
		}
	}
	return nil
}

// Exists reports whether id's payload is present.
func (s *Store) Exists(ctx context.Context, id chunkid.ID) (bool, error) {
	path, err := s.org.Build(id)
	if err != nil {
		return false, Wrap(KindInvalidID, string(id), "build storage path", err)
	}
	found, err := s.existence.Exists(ctx, path)
	if err != nil {
		return false, Wrap(KindReadFailure, string(id), "probe existence", err)
	}
	return found, nil
}

// Size reports id's payload size, or (0, false, nil) if absent.
func (s *Store) Size(ctx context.Context, id chunkid.ID) (int64, bool, error) {
	path, err := s.org.Build(id)
	if err != nil {
		return 0, false, Wrap(KindInvalidID, string(id), "build storage path", err)
	}
	n, found, err := s.existence.Size(ctx, path)
	if err != nil {
		return 0, false, Wrap(KindReadFailure, string(id), "probe size", err)
	}
	return n, found, nil
}

// Metadata returns the sidecar record for id, if any.
func (s *Store) Metadata(ctx context.Context, id chunkid.ID) (chunkid.Metadata, bool, error) {
	if s.sidecars == nil {
		return chunkid.Metadata{}, false, nil
	}
	path, err := s.org.Build(id)
	if err != nil {
		return chunkid.Metadata{}, false, Wrap(KindInvalidID, string(id), "build storage path", err)
	}
	return s.sidecars.Load(ctx, path)
}

func joinErrors(errs []string) string {
	if len(errs) == 0 {
		return "validation failed"
	}
	out := errs[0]
	for _, e := range errs[1:] {
		out += "; " + e
	}
	return out
}
