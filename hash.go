// Hash algorithm selection, shared by the store header's checksum and
// by HASH-type index bucket assignment.
//
// Three algorithms are supported, selectable via Config.ChecksumAlgorithm.
// xxh3 is the default (fastest); blake2b trades speed for distribution
// quality; fnv1a has no external dependency and exists for environments
// that can't vendor the other two.
package pagestore

import (
	"fmt"
	"hash/fnv"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Checksum/hash algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// hashBytes produces a 64-bit digest of data using the given algorithm,
// returned as 16 hex characters.
func hashBytes(data []byte, alg int) string {
	switch alg {
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum(nil))
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum64())
	case AlgXXHash3:
		fallthrough
	default:
		return fmt.Sprintf("%016x", xxh3.Hash(data))
	}
}

// hashUint64 produces a 64-bit digest of data using the given algorithm,
// for callers that need the raw number rather than its hex rendering
// (e.g. HASH-index bucket assignment).
func hashUint64(data []byte, alg int) uint64 {
	switch alg {
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil)
		h.Write(data)
		sum := h.Sum(nil)
		var v uint64
		for _, b := range sum {
			v = v<<8 | uint64(b)
		}
		return v
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write(data)
		return h.Sum64()
	case AlgXXHash3:
		fallthrough
	default:
		return xxh3.Hash(data)
	}
}
