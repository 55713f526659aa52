package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"vaultkeeper/internal/chunkstore"
	"vaultkeeper/internal/storageconfig"
)

// Exit codes, in the order the CLI surface defines them: success, invalid
// usage, I/O failure, corruption/hash-mismatch, configuration error, and
// cancellation.
const (
	exitSuccess     = 0
	exitUsage       = 1
	exitIO          = 2
	exitCorruption  = 3
	exitConfig      = 4
	exitCancelled   = 5
)

// usageError marks an error as an invalid-usage failure (exit code 1)
// rather than letting it fall through to the generic I/O bucket.
type usageError struct{ err error }

func newUsageError(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// exitCodeFor classifies an error returned from a command's RunE into one
// of the CLI's documented exit codes. Unrecognized errors default to the
// I/O bucket, matching gastrolog's convention of returning raw error text
// without a bespoke taxonomy for every failure site.
func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}

	var usage usageError
	if errors.As(err, &usage) {
		return exitUsage
	}

	if errors.Is(err, context.Canceled) {
		return exitCancelled
	}

	var storeErr *chunkstore.StoreError
	if errors.As(err, &storeErr) {
		switch storeErr.Kind {
		case chunkstore.KindHashMismatch, chunkstore.KindCorruptedData:
			return exitCorruption
		case chunkstore.KindInvalidID, chunkstore.KindInvalidAlgorithm, chunkstore.KindInvalidMetadata, chunkstore.KindValidationFailed:
			return exitUsage
		}
		return exitIO
	}

	if errors.Is(err, storageconfig.ErrNoPrimary) {
		return exitConfig
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return exitIO
	}

	return exitIO
}
