// Slotted page: a self-describing byte-level view over one fixed-size
// block. The directory grows from the low end, record payloads are
// packed densely against the high end, and free space lives in the
// middle. This is the only layer in the stack that reads and writes raw
// bytes at fixed offsets instead of going through a marshaling library —
// the whole point of the format is that a slot's size and offset are
// recoverable without parsing anything.
package pagestore

import "encoding/binary"

// BlockSize is the fixed size of every block. 4096 matches a typical
// filesystem page so one block is one disk I/O.
const BlockSize = 4096

// slot directory entry: 2 bytes size, 2 bytes offset.
const slotEntrySize = 4

// Page is an in-memory view over one block's bytes. Callers own the
// underlying byte slice (typically on loan from a BlockStore); writes
// mutate it in place and must be persisted by an explicit write-back
// through the owning HeapFile's Put.
type Page struct {
	Id         BlockId
	bytes      []byte
	numRecords uint16
	endFree    uint16
}

// NewPage constructs a page view over block. If isNew, the header is
// zeroed and end_free is set to the top of the block; otherwise the
// header is parsed from the existing bytes.
func NewPage(block []byte, id BlockId, isNew bool) *Page {
	p := &Page{Id: id, bytes: block}
	if isNew {
		p.numRecords = 0
		p.endFree = BlockSize - 1
		p.putHeader()
	} else {
		p.numRecords = binary.LittleEndian.Uint16(block[0:2])
		p.endFree = binary.LittleEndian.Uint16(block[2:4])
	}
	return p
}

// Bytes returns the page's backing block, for handing to
// HeapFile.Put/BlockStore.Put.
func (p *Page) Bytes() []byte { return p.bytes }

// putHeader rewrites the fixed two-field block header.
func (p *Page) putHeader() {
	binary.LittleEndian.PutUint16(p.bytes[0:2], p.numRecords)
	binary.LittleEndian.PutUint16(p.bytes[2:4], p.endFree)
}

// slotOffset returns the byte offset of directory entry id (1-based).
func slotOffset(id RecordId) int {
	return slotEntrySize * int(id)
}

// getSlot reads the (size, loc) pair for id from the directory.
func (p *Page) getSlot(id RecordId) (size, loc uint16) {
	off := slotOffset(id)
	size = binary.LittleEndian.Uint16(p.bytes[off : off+2])
	loc = binary.LittleEndian.Uint16(p.bytes[off+2 : off+4])
	return
}

// putSlot writes the (size, loc) pair for id into the directory.
func (p *Page) putSlot(id RecordId, size, loc uint16) {
	off := slotOffset(id)
	binary.LittleEndian.PutUint16(p.bytes[off:off+2], size)
	binary.LittleEndian.PutUint16(p.bytes[off+2:off+4], loc)
}

// hasRoom reports whether n more bytes of payload fit without growing
// the directory past the remaining free space.
func (p *Page) hasRoom(n uint16) bool {
	directoryEnd := slotEntrySize * (int(p.numRecords) + 1)
	available := int(p.endFree) - directoryEnd
	return available >= int(n)
}

// Add appends data as a new record and returns its assigned id. Ids are
// 1-based, strictly increasing, and never reused.
func (p *Page) Add(data []byte) (RecordId, error) {
	if !p.hasRoom(uint16(len(data))) {
		return 0, ErrNoRoom
	}
	p.numRecords++
	id := RecordId(p.numRecords)
	size := uint16(len(data))
	loc := p.endFree - size + 1
	p.endFree -= size
	p.putHeader()
	p.putSlot(id, size, loc)
	copy(p.bytes[loc:loc+size], data)
	return id, nil
}

// Get returns the payload for id, or nil if the slot is tombstoned or
// out of range.
func (p *Page) Get(id RecordId) []byte {
	if id == 0 || id > RecordId(p.numRecords) {
		return nil
	}
	size, loc := p.getSlot(id)
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, p.bytes[loc:loc+size])
	return out
}

// Put overwrites the record at id with data, sliding neighboring
// records to keep the payload region dense. Returns ErrNoRoom if data
// is larger than the current payload and the page lacks the extra
// space.
func (p *Page) Put(id RecordId, data []byte) error {
	size, loc := p.getSlot(id)
	newSize := uint16(len(data))

	if newSize > size {
		extra := newSize - size
		if !p.hasRoom(extra) {
			return ErrNoRoom
		}
		// Open a gap of `extra` bytes directly below loc by sliding every
		// record at or below it down by extra, then write the grown
		// payload into the combined space.
		p.slide(loc, loc-extra)
		loc -= extra
		copy(p.bytes[loc:loc+newSize], data)
	} else {
		copy(p.bytes[loc:loc+newSize], data)
		p.slide(loc+newSize, loc+size)
		// slide moved this record up by the bytes it gave back.
		loc += size - newSize
	}

	p.putSlot(id, newSize, loc)
	return nil
}

// Del tombstones id: its directory entry is zeroed (size 0, loc 0) and
// the hole it leaves is closed by sliding. num_records is never
// decremented, so ids remain stable and are never reused.
func (p *Page) Del(id RecordId) {
	size, loc := p.getSlot(id)
	p.putSlot(id, 0, 0)
	p.slide(loc, loc+size)
}

// Ids returns the ascending list of live (non-tombstoned) record ids.
func (p *Page) Ids() []RecordId {
	var ids []RecordId
	for id := RecordId(1); id <= RecordId(p.numRecords); id++ {
		size, _ := p.getSlot(id)
		if size != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// slide shifts the payload region [end_free+1, start) by (end - start)
// bytes, growing or shrinking the free gap in the middle of the page,
// then rewrites every live slot whose location lies at or before start
// and updates end_free. A no-op when start == end.
//
// Grounded on the source's SlottedPage::slide: when end > start the
// region below `start` is moved up (closing a hole left by a shrink or
// delete); when end < start it is moved down (opening room for a
// grow). shift is signed; Go's byte slices make the two directions a
// single copy with signed arithmetic rather than two branches.
func (p *Page) slide(start, end uint16) {
	if start == end {
		return
	}
	shift := int(end) - int(start)
	regionStart := int(p.endFree) + 1
	regionLen := int(start) - regionStart
	if regionLen > 0 {
		copy(p.bytes[regionStart+shift:regionStart+shift+regionLen], p.bytes[regionStart:regionStart+regionLen])
	}

	for _, id := range p.Ids() {
		size, loc := p.getSlot(id)
		if loc != 0 && int(loc) <= int(start) {
			p.putSlot(id, size, uint16(int(loc)+shift))
		}
	}

	p.endFree = uint16(int(p.endFree) + shift)
	p.putHeader()
}
