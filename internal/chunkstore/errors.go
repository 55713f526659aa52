package chunkstore

import "fmt"

// Kind is a machine-readable error category. It groups failures by how a
// caller should react, not by which Go type produced them.
type Kind string

const (
	KindInvalidID         Kind = "invalid_id"
	KindInvalidPath       Kind = "invalid_path"
	KindNotFound          Kind = "not_found"
	KindReadFailure       Kind = "read_failure"
	KindWriteFailure      Kind = "write_failure"
	KindDeleteFailure     Kind = "delete_failure"
	KindInsufficientSpace Kind = "insufficient_space"
	KindHashMismatch      Kind = "hash_mismatch"
	KindCorruptedData     Kind = "corrupted_data"
	KindInvalidMetadata   Kind = "invalid_metadata"
	KindConcurrentMod     Kind = "concurrent_modification"
	KindLockTimeout       Kind = "lock_timeout"
	KindInvalidSize       Kind = "invalid_data_size"
	KindInvalidAlgorithm  Kind = "invalid_hash_algorithm"
	KindValidationFailed  Kind = "metadata_validation_failed"
	KindStorageUnavail    Kind = "storage_unavailable"
	KindQuotaExceeded     Kind = "quota_exceeded"
	KindPermissionDenied  Kind = "permission_denied"
	KindCustom            Kind = "custom"
)

// StoreError is the error type the engine returns for failures with a
// machine-readable kind, a human-readable message, the offending chunk id
// (when relevant), and an optional underlying cause. It follows the same
// Unwrap-chain shape as a parse error carrying a sentinel plus position:
// a typed wrapper around a sentinel or wrapped cause, not a bespoke string.
type StoreError struct {
	Kind    Kind
	ID      string // offending chunk id, empty if not applicable
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s (id=%s)", e.Kind, e.Message, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// NewError builds a StoreError with the given kind and message.
func NewError(kind Kind, id, message string) *StoreError {
	return &StoreError{Kind: kind, ID: id, Message: message}
}

// Wrap builds a StoreError that carries cause as its Unwrap target.
func Wrap(kind Kind, id, message string, cause error) *StoreError {
	return &StoreError{Kind: kind, ID: id, Message: message, Cause: cause}
}
