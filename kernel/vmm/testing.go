package vmm

import "unsafe"

// SetTableDerefForTesting overrides the virtual-address-to-table resolution
// used by every PageTable dereference in this package. It exists so other
// packages that exercise a Mapper or ActivePageTable in tests (such as stack)
// can install a pure-memory page-hierarchy fake instead of dereferencing raw
// pointers. The returned func restores the previous behavior.
func SetTableDerefForTesting(fn func(addr uintptr) unsafe.Pointer) (restore func()) {
	saved := tableDerefFn
	tableDerefFn = fn
	return func() { tableDerefFn = saved }
}

// SetTLBFlushForTesting overrides the TLB-flush hooks used by Mapper.Unmap
// and ActivePageTable.With/Switch, so tests never execute the privileged
// instructions backing them. The returned func restores the previous
// behavior.
func SetTLBFlushForTesting(flushEntry func(uintptr), flush func()) (restore func()) {
	savedEntry, savedFlush := flushTLBEntryFn, flushTLBFn
	flushTLBEntryFn = flushEntry
	flushTLBFn = flush
	return func() { flushTLBEntryFn, flushTLBFn = savedEntry, savedFlush }
}

// SetCR3ForTesting overrides the CR3 read/write hooks used by
// ActivePageTable.With/Switch. The returned func restores the previous
// behavior.
func SetCR3ForTesting(read func() uintptr, write func(uint64)) (restore func()) {
	savedRead, savedWrite := currentCR3Fn, writeCR3Fn
	currentCR3Fn = read
	writeCR3Fn = write
	return func() { currentCR3Fn, writeCR3Fn = savedRead, savedWrite }
}
