package pagestore

import (
	"path/filepath"
	"testing"
)

func TestHeapFileCreateAllocatesBlockOne(t *testing.T) {
	name := filepath.Join(t.TempDir(), "foo")
	h := NewHeapFile(name, Config{})
	if err := h.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer h.Drop()

	if h.LastBlockId() != 1 {
		t.Fatalf("LastBlockId() = %d, want 1", h.LastBlockId())
	}
	ids := h.BlockIds()
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("BlockIds() = %v, want [1]", ids)
	}
}

func TestHeapFileGetNewIncrementsAndNeverReturnsZero(t *testing.T) {
	name := filepath.Join(t.TempDir(), "foo")
	h := NewHeapFile(name, Config{})
	if err := h.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer h.Drop()

	page, err := h.GetNew()
	if err != nil {
		t.Fatalf("GetNew: %v", err)
	}
	if page.Id != 2 {
		t.Fatalf("GetNew().Id = %d, want 2", page.Id)
	}
	for _, id := range h.BlockIds() {
		if id == 0 {
			t.Fatal("BlockIds() contains reserved block 0")
		}
	}
}

func TestHeapFileOpenRestoresLastBlockId(t *testing.T) {
	name := filepath.Join(t.TempDir(), "foo")
	h := NewHeapFile(name, Config{})
	if err := h.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.GetNew()
	h.GetNew()
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := NewHeapFile(name, Config{})
	if err := reopened.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Drop()
	if reopened.LastBlockId() != 3 {
		t.Fatalf("LastBlockId() after reopen = %d, want 3", reopened.LastBlockId())
	}
}

func TestHeapFileClosedOperationsFail(t *testing.T) {
	name := filepath.Join(t.TempDir(), "foo")
	h := NewHeapFile(name, Config{})
	if _, err := h.GetNew(); err != ErrClosed {
		t.Fatalf("GetNew() on unopened file = %v, want ErrClosed", err)
	}
}
