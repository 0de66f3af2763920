package vmm

import (
	"unsafe"

	"github.com/mkaput/kernel/kernel/mem/pmm"
)

// Level tags a PageTable with its position in the 4-level hierarchy.
type Level interface {
	L4 | L3 | L2 | L1
}

// L4, L3, L2 and L1 are the level-tag marker types used to instantiate
// PageTable[L]. They carry no data; they only let the type system
// distinguish "a PDPT" from "a PD" from "a PT".
type (
	L4 struct{}
	L3 struct{}
	L2 struct{}
	L1 struct{}
)

// HasNextLevel is satisfied by every level tag except L1: L4, L3 and L2
// tables all have a next level to descend into.
type HasNextLevel interface {
	L4 | L3 | L2
}

// PageTable is an array of 512 page-table entries tagged with its level in
// the hierarchy.
type PageTable[L Level] struct {
	Entries [512]Entry
}

// Clear zeroes every entry in the table.
func (t *PageTable[L]) Clear() {
	for i := range t.Entries {
		t.Entries[i] = 0
	}
}

// tableDerefFn resolves a virtual address to the table it points at. In
// production this is a raw pointer cast (the address was obtained through
// real recursive-mapping arithmetic); tests substitute a fake that indexes
// into Go-heap-backed fixtures instead, avoiding the need for a real MMU.
var tableDerefFn = func(addr uintptr) unsafe.Pointer {
	return unsafe.Pointer(addr)
}

func derefTable[L Level](addr uintptr) *PageTable[L] {
	return (*PageTable[L])(tableDerefFn(addr))
}

// nextTableAddress returns the virtual address reachable through entry
// index of a table whose own virtual address is selfAddr, and whether that
// entry is present and not huge.
func nextTableAddress[L HasNextLevel](t *PageTable[L], selfAddr uintptr, index uint16) (uintptr, bool) {
	entry := t.Entries[index]
	if !entry.HasFlags(FlagPresent) || entry.HasFlags(FlagHuge) {
		return 0, false
	}
	return childAddress(selfAddr, index), true
}

// ensureNextTable returns the virtual address of the Child-level table
// reachable through entry index, allocating and installing a fresh,
// zeroed frame via alloc when the entry is absent. It panics if the
// existing entry is HUGE.
func ensureNextTable[L HasNextLevel, Child Level](t *PageTable[L], selfAddr uintptr, index uint16, alloc FrameAlloc) uintptr {
	entry := &t.Entries[index]
	if entry.HasFlags(FlagHuge) {
		panic("vmm: attempted to descend through a HUGE intermediate entry")
	}

	addr := childAddress(selfAddr, index)

	if !entry.HasFlags(FlagPresent) {
		frame := alloc.Alloc()
		if !frame.Valid() {
			panic("vmm: out of memory")
		}
		entry.Set(frame, FlagPresent|FlagWritable)
		derefTable[Child](addr).Clear()
	}

	return addr
}

func childAddress(selfAddr uintptr, index uint16) uintptr {
	return uintptr(Canonicalize((uint64(selfAddr) << 9) | (uint64(index) << 12)))
}

// FrameAlloc is the minimal interface the Mapper needs from a physical
// frame allocator.
type FrameAlloc interface {
	Alloc() pmm.Frame
	Dealloc(pmm.Frame)
}
