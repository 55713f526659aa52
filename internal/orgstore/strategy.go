// Package orgstore provides organization strategies: pure, invertible
// mappings between a chunk identifier and its relative storage path.
//
// Grounded on the fanout path scheme in
// _examples/other_examples/61193880_rakoo-httpfile__dedupstore.go.go
// (randomPath: a 2-char directory prefix followed by the remainder),
// generalized here to a configurable number of fanout segments.
package orgstore

import (
	"errors"

	"vaultkeeper/internal/chunkid"
)

var (
	// ErrInvalidID is returned by GitStyle.Build when id is too short for
	// its fanout depth. An id that fails chunkid.Validate yields
	// chunkid.Validate's own error instead.
	ErrInvalidID = errors.New("orgstore: invalid chunk id")
	// ErrInvalidPath is returned by Parse when path does not correspond to
	// any id the strategy could have built.
	ErrInvalidPath = errors.New("orgstore: invalid storage path")
)

// Strategy maps a chunk identifier to a relative storage path and back.
// Implementations must satisfy Parse(Build(id)) == id for every valid id,
// must be pure (no I/O, no shared state), and must reject invalid hex.
type Strategy interface {
	// Build returns the relative path at which id's payload is stored.
	Build(id chunkid.ID) (string, error)
	// Parse recovers the chunk id encoded in a relative path produced by
	// Build (or found by walking the storage root).
	Parse(path string) (chunkid.ID, error)
}
