// Optional transparent compression for block payloads.
//
// When Config.Compress is set, each block's on-disk slot grows from
// BlockSize to CompressedSlotSize (BlockSize + a 4-byte length prefix)
// so that an incompressible block still fits raw — the fixed-record-
// length contract is preserved, just at a larger constant
// size, rather than broken. Typical slotted pages compress well (the
// unused middle region between the directory and the payload is all
// zero bytes), so in practice most blocks land well under the cap.
package pagestore

import (
	"encoding/binary"

	"github.com/klauspost/compress/zstd"
)

// CompressedSlotSize is the on-disk slot size used when compression is
// enabled: four bytes for the compressed length, plus room for the
// worst case (the block doesn't compress at all).
const CompressedSlotSize = BlockSize + 4

// rawBlockMarker flags that the remainder of the slot is the raw,
// uncompressed block rather than a zstd frame.
const rawBlockMarker = 0xFFFFFFFF

// Shared encoder/decoder, built once: zstd encoder/decoder construction
// allocates internal state tables that are expensive to redo per block.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// compressBlock encodes a full BlockSize block into a CompressedSlotSize
// slot, falling back to a raw copy if the compressed frame would not be
// smaller.
func compressBlock(block []byte) []byte {
	compressed := zstdEncoder.EncodeAll(block, nil)
	out := make([]byte, CompressedSlotSize)
	if len(compressed) >= BlockSize {
		binary.LittleEndian.PutUint32(out[0:4], rawBlockMarker)
		copy(out[4:], block)
		return out
	}
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(compressed)))
	copy(out[4:], compressed)
	return out
}

// decompressBlock reverses compressBlock, returning a full BlockSize
// block.
func decompressBlock(slot []byte) ([]byte, error) {
	n := binary.LittleEndian.Uint32(slot[0:4])
	if n == rawBlockMarker {
		out := make([]byte, BlockSize)
		copy(out, slot[4:4+BlockSize])
		return out, nil
	}
	decoded, err := zstdDecoder.DecodeAll(slot[4:4+n], make([]byte, 0, BlockSize))
	if err != nil {
		return nil, err
	}
	if len(decoded) < BlockSize {
		padded := make([]byte, BlockSize)
		copy(padded, decoded)
		decoded = padded
	}
	return decoded, nil
}
