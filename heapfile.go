// Heap file: a sequence of slotted-page blocks under one logical name,
// persisted through a BlockStore. Grounded on original_source's
// HeapFile (create/drop/open/close/get_new/get/put/block_ids) and on
// a closed-flag idiom for idempotent Close.
package pagestore

// HeapFile is the block-level allocator and iterator for one relation's
// backing store.
type HeapFile struct {
	name   string
	store  *fileBlockStore
	last   BlockId
	closed bool
}

// NewHeapFile constructs a heap file for name. The backing store is not
// opened until Create or Open is called.
func NewHeapFile(name string, config Config) *HeapFile {
	return &HeapFile{name: name, store: newFileBlockStore(name, config), closed: true}
}

// Create exclusively creates the backing file and allocates block 1 as
// an empty slotted page. Fails with ErrAlreadyExists if the file is
// already present.
func (h *HeapFile) Create() error {
	if err := h.store.Open(OpenCreate); err != nil {
		return err
	}
	h.closed = false
	h.last = 0
	page, err := h.GetNew()
	if err != nil {
		return err
	}
	return h.Put(page)
}

// Open opens an existing backing file. Idempotent.
func (h *HeapFile) Open() error {
	if !h.closed {
		return nil
	}
	if err := h.store.Open(OpenExisting); err != nil {
		return err
	}
	h.closed = false
	h.last = BlockId(h.store.header.LastBlock)
	return nil
}

// Close closes the backing file. Idempotent with respect to the closed
// state; a second Close is a no-op.
func (h *HeapFile) Close() error {
	if h.closed {
		return nil
	}
	err := h.store.Close()
	h.closed = true
	return err
}

// Drop closes and removes the backing file.
func (h *HeapFile) Drop() error {
	if err := h.store.Remove(); err != nil {
		return err
	}
	h.closed = true
	return nil
}

// GetNew assigns a new block id, writes a zeroed block under that key
// so the backing store owns the memory, reads it back, and returns a
// fresh slotted-page view over it.
func (h *HeapFile) GetNew() (*Page, error) {
	if h.closed {
		return nil, ErrClosed
	}
	h.last++
	zero := make([]byte, BlockSize)
	if err := h.store.Put(h.last, zero); err != nil {
		h.last--
		return nil, err
	}
	block, err := h.store.Get(h.last)
	if err != nil {
		return nil, err
	}
	return NewPage(block, h.last, true), nil
}

// Get reads the block at blockId and returns a non-new slotted-page
// view over it.
func (h *HeapFile) Get(blockId BlockId) (*Page, error) {
	if h.closed {
		return nil, ErrClosed
	}
	block, err := h.store.Get(blockId)
	if err != nil {
		return nil, err
	}
	return NewPage(block, blockId, false), nil
}

// Put writes page's block bytes back under its id.
func (h *HeapFile) Put(page *Page) error {
	if h.closed {
		return ErrClosed
	}
	return h.store.Put(page.Id, page.Bytes())
}

// BlockIds returns the full iteration order 1..=last. Block 0 (the
// store header) is never included.
func (h *HeapFile) BlockIds() []BlockId {
	ids := make([]BlockId, 0, h.last)
	for i := BlockId(1); i <= h.last; i++ {
		ids = append(ids, i)
	}
	return ids
}

// LastBlockId returns the highest allocated block id.
func (h *HeapFile) LastBlockId() BlockId {
	return h.last
}
