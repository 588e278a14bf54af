// Store header: the fixed-size metadata record that occupies block 0
// of every backing file. Block 0 is reserved by the data model (spec
// §3, "block 0 is reserved and never stored") and is never surfaced as
// a BlockId above the block store adapter.
//
// The header is padded to exactly BlockSize bytes, the same fixed
// record length every other block uses, and parsed/encoded with
// goccy/go-json.
package pagestore

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// storeHeaderVersion is the only header format this module writes.
const storeHeaderVersion = 1

// storeHeader is the block-0 metadata record for one backing file.
type storeHeader struct {
	Version     int    `json:"v"`
	LastBlock   uint32 `json:"last"`
	Dirty       bool   `json:"dirty"`
	ChecksumAlg int    `json:"calg"`
	Checksum    string `json:"csum"`
	Compressed  bool   `json:"gz"`
}

// encode serializes h, padded with spaces to exactly BlockSize bytes.
func (h *storeHeader) encode() ([]byte, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	if len(data) > BlockSize {
		return nil, ErrCorruptHeader
	}
	buf := make([]byte, BlockSize)
	copy(buf, data)
	for i := len(data); i < BlockSize; i++ {
		buf[i] = ' '
	}
	return buf, nil
}

// decodeStoreHeader parses a block-0 payload written by encode.
func decodeStoreHeader(block []byte) (*storeHeader, error) {
	var h storeHeader
	if err := json.Unmarshal(bytes.TrimSpace(block), &h); err != nil {
		return nil, ErrCorruptHeader
	}
	return &h, nil
}
