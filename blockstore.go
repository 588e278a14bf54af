// Block store adapter: durable mapping from BlockId to a fixed-size
// byte block, one backing file per relation. Block 0 holds the store
// header (storeheader.go) and is never handed out as a caller-visible
// BlockId.
//
// Durable block storage through a single read/write file handle with an
// explicit Close, modelled on original_source's
// HeapFile::db_open, which opens with DB_CREATE|DB_EXCL and a fixed
// record length (db.set_re_len(BLOCK_SZ)) — the same fixed-record-
// length KV contract this layer relies on.
package pagestore

import (
	"fmt"
	"os"
)

// OpenFlags selects create-vs-open semantics for a block store.
type OpenFlags int

const (
	// OpenExisting opens a backing file that must already exist.
	OpenExisting OpenFlags = iota
	// OpenCreate creates a new backing file; fails with ErrAlreadyExists
	// if one is already present.
	OpenCreate
)

// BlockStore is the durable key/value contract a heap file is built on:
// BlockId keys, fixed-size opaque block payloads. The file-backed
// implementation below (fileBlockStore) is the only implementation in
// this module; the interface exists so relation/heap-file code is not
// wedded to *os.File.
type BlockStore interface {
	Open(flags OpenFlags) error
	Close() error
	Put(key BlockId, data []byte) error
	Get(key BlockId) ([]byte, error)
	Remove() error
}

// Config configures a block store (and, transitively, every relation
// built on it). Zero-value fields default sensibly.
type Config struct {
	// ChecksumAlgorithm selects the algorithm used for the store
	// header's integrity checksum and for HASH-type index buckets.
	// Zero defaults to AlgXXHash3.
	ChecksumAlgorithm int

	// Compress enables transparent zstd compression of block payloads
	// (compress.go). Off by default.
	Compress bool
}

func (c Config) checksumAlg() int {
	if c.ChecksumAlgorithm == 0 {
		return AlgXXHash3
	}
	return c.ChecksumAlgorithm
}

func (c Config) slotSize() int {
	if c.Compress {
		return CompressedSlotSize
	}
	return BlockSize
}

// fileBlockStore is a BlockStore backed by a single *os.File named
// "<name>.db", one fixed-size slot per BlockId starting at offset
// key*slotSize.
type fileBlockStore struct {
	name   string
	path   string
	config Config
	file   *os.File
	header *storeHeader
	closed bool
}

func newFileBlockStore(name string, config Config) *fileBlockStore {
	return &fileBlockStore{name: name, path: name + ".db", config: config, closed: true}
}

// Open opens (or, with OpenCreate, creates) the backing file and reads
// the block-0 store header.
func (s *fileBlockStore) Open(flags OpenFlags) error {
	if !s.closed {
		return nil
	}

	switch flags {
	case OpenCreate:
		f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			if os.IsExist(err) {
				return fmt.Errorf("%s: %w", s.name, ErrAlreadyExists)
			}
			return err
		}
		s.file = f
		hdr := &storeHeader{
			Version:     storeHeaderVersion,
			ChecksumAlg: s.config.checksumAlg(),
			Compressed:  s.config.Compress,
		}
		if err := s.writeHeader(hdr); err != nil {
			f.Close()
			return err
		}
		s.header = hdr
	case OpenExisting:
		f, err := os.OpenFile(s.path, os.O_RDWR, 0644)
		if err != nil {
			return err
		}
		s.file = f
		hdr, err := s.readHeaderAt(0)
		if err != nil {
			f.Close()
			return err
		}
		s.header = hdr
		s.closed = false

		if hdr.Checksum != "" {
			sum, err := s.computeChecksum()
			if err != nil {
				s.closed = true
				f.Close()
				return err
			}
			if sum != hdr.Checksum {
				s.closed = true
				f.Close()
				return ErrCorruptHeader
			}
		}
		return nil
	}

	s.closed = false
	return nil
}

// Close recomputes the store header's checksum over every live block,
// marks the header clean, and closes the backing file. Idempotent: a
// second Close is a no-op.
func (s *fileBlockStore) Close() error {
	if s.closed {
		return nil
	}
	if s.header != nil {
		if sum, err := s.computeChecksum(); err == nil {
			s.header.Checksum = sum
		}
		s.header.Dirty = false
		_ = s.writeHeader(s.header)
	}
	err := s.file.Close()
	s.closed = true
	return err
}

// computeChecksum hashes the concatenation of every live block's
// payload (blocks 1..LastBlock; block 0 is the header itself and is
// excluded), using the store's configured checksum algorithm.
func (s *fileBlockStore) computeChecksum() (string, error) {
	var buf []byte
	for id := BlockId(1); id <= BlockId(s.header.LastBlock); id++ {
		block, err := s.Get(id)
		if err != nil {
			return "", err
		}
		buf = append(buf, block...)
	}
	return hashBytes(buf, s.header.ChecksumAlg), nil
}

// Remove closes (if needed) and deletes the backing file.
func (s *fileBlockStore) Remove() error {
	if !s.closed {
		if err := s.Close(); err != nil {
			return err
		}
	}
	if err := os.Remove(s.path); err != nil {
		return err
	}
	return nil
}

func (s *fileBlockStore) offset(key BlockId) int64 {
	return int64(key) * int64(s.config.slotSize())
}

// Put writes block at key, growing the file as needed.
func (s *fileBlockStore) Put(key BlockId, data []byte) error {
	if s.closed {
		return ErrClosed
	}
	if key == 0 {
		return fmt.Errorf("block 0 is reserved: %w", ErrNotFound)
	}

	if s.header != nil && !s.header.Dirty {
		s.header.Dirty = true
		if err := s.writeHeader(s.header); err != nil {
			return err
		}
	}

	slot := data
	if s.config.Compress {
		slot = compressBlock(data)
	}
	if _, err := s.file.WriteAt(slot, s.offset(key)); err != nil {
		return err
	}
	if key > BlockId(s.header.LastBlock) {
		s.header.LastBlock = uint32(key)
	}
	return nil
}

// Get reads the block stored at key.
func (s *fileBlockStore) Get(key BlockId) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if key == 0 {
		return nil, fmt.Errorf("block 0 is reserved: %w", ErrNotFound)
	}

	slot := make([]byte, s.config.slotSize())
	if _, err := s.file.ReadAt(slot, s.offset(key)); err != nil {
		return nil, err
	}
	if s.config.Compress {
		return decompressBlock(slot)
	}
	return slot, nil
}

func (s *fileBlockStore) writeHeader(hdr *storeHeader) error {
	buf, err := hdr.encode()
	if err != nil {
		return err
	}
	slot := make([]byte, s.config.slotSize())
	copy(slot, buf)
	_, err = s.file.WriteAt(slot, 0)
	return err
}

func (s *fileBlockStore) readHeaderAt(offset int64) (*storeHeader, error) {
	buf := make([]byte, BlockSize)
	if _, err := s.file.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	return decodeStoreHeader(buf)
}

// checksumAlgorithm exposes the store's configured checksum/hash
// algorithm. Nothing in this package calls it; HASH-type indices read
// the same value through Config.checksumAlg.
func (s *fileBlockStore) checksumAlgorithm() int {
	return s.config.checksumAlg()
}
