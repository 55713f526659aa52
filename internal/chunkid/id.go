// Package chunkid defines the chunk identifier and metadata value types
// shared across the storage engine.
package chunkid

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"

	"golang.org/x/crypto/blake2b"
)

var (
	ErrEmptyID        = errors.New("chunk id is empty")
	ErrNotLowerHex    = errors.New("chunk id is not lowercase hex")
	ErrUnknownHashAlg = errors.New("unknown hash algorithm")
)

// HashAlgorithm enumerates the content-hash algorithms a chunk may be
// identified by. The zero value is invalid; callers must pick one.
type HashAlgorithm string

const (
	SHA256    HashAlgorithm = "sha256"
	SHA1      HashAlgorithm = "sha1"
	MD5       HashAlgorithm = "md5"
	CRC32     HashAlgorithm = "crc32"
	Blake2b256 HashAlgorithm = "blake2b-256"
)

// hexLengths gives the canonical hex string length for each algorithm's
// digest. Validate does not check length; a length mismatch against these is
// reported as a warning, not an error, by chunkstore's Validator.
var hexLengths = map[HashAlgorithm]int{
	SHA256:     64,
	SHA1:       40,
	MD5:        32,
	CRC32:      8,
	Blake2b256: 64,
}

// CanonicalHexLength reports the expected id length for alg, and whether
// alg is known at all.
func CanonicalHexLength(alg HashAlgorithm) (int, bool) {
	n, ok := hexLengths[alg]
	return n, ok
}

// newHasher returns a fresh hash.Hash for alg, or ErrUnknownHashAlg.
func newHasher(alg HashAlgorithm) (hash.Hash, error) {
	switch alg {
	case SHA256:
		return sha256.New(), nil
	case SHA1:
		return sha1.New(), nil
	case MD5:
		return md5.New(), nil
	case CRC32:
		return crc32.NewIEEE(), nil
	case Blake2b256:
		h, err := blake2b.New256(nil)
		if err != nil {
			return nil, fmt.Errorf("blake2b-256: %w", err)
		}
		return h, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHashAlg, alg)
	}
}

// Hash computes the lowercase hex digest of data under alg.
func Hash(data []byte, alg HashAlgorithm) (string, error) {
	h, err := newHasher(alg)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ID is the opaque content-derived identifier of a chunk. By convention it
// is the lowercase hex digest of the chunk's payload under some
// HashAlgorithm. Equality is by string value alone.
type ID string

// IsLowerHex reports whether s consists only of lowercase hex digits and is
// non-empty.
func IsLowerHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}

// Validate checks that id is a non-empty lowercase hex string.
func Validate(id ID) error {
	if id == "" {
		return ErrEmptyID
	}
	if !IsLowerHex(string(id)) {
		return ErrNotLowerHex
	}
	return nil
}

// String returns the id as a plain string.
func (id ID) String() string { return string(id) }
