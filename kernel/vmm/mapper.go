package vmm

import "github.com/mkaput/kernel/kernel/mem/pmm"

// Mapper exposes map/unmap/translate operations over a P4 table reachable
// at p4Addr — the fixed recursive address P4 for the active hierarchy, or a
// temporary alias established by ActivePageTable.With for an inactive one.
type Mapper struct {
	p4Addr uintptr
}

func newMapper(p4Addr uintptr) Mapper {
	return Mapper{p4Addr: p4Addr}
}

func (m Mapper) p4() *PageTable[L4] {
	return derefTable[L4](m.p4Addr)
}

// Translate resolves a virtual address to the physical address it is
// currently mapped to, or ok=false if any level of the walk is absent.
// 1 GiB and 2 MiB huge pages are honored even though MapTo never creates
// them.
func (m Mapper) Translate(virtAddr uintptr) (physAddr uintptr, ok bool) {
	page := PageFromAddress(virtAddr)
	offset := uintptr(virtAddr) & uintptr(0xFFF)
	p4i, p3i, p2i, p1i := page.Indices()

	p3Addr, present := nextTableAddress(m.p4(), m.p4Addr, p4i)
	if !present {
		return 0, false
	}
	p3 := derefTable[L3](p3Addr)

	if e := p3.Entries[p3i]; e.HasFlags(FlagPresent) && e.HasFlags(FlagHuge) {
		frame, _ := e.Frame()
		startFrame := uint64(frame)
		if startFrame%(512*512) != 0 {
			panic("vmm: misaligned 1GiB huge page")
		}
		return uintptr((startFrame+uint64(p2i)*512+uint64(p1i))<<12) + offset, true
	}

	p2Addr, present := nextTableAddress(p3, p3Addr, p3i)
	if !present {
		return 0, false
	}
	p2 := derefTable[L2](p2Addr)

	if e := p2.Entries[p2i]; e.HasFlags(FlagPresent) && e.HasFlags(FlagHuge) {
		frame, _ := e.Frame()
		startFrame := uint64(frame)
		if startFrame%512 != 0 {
			panic("vmm: misaligned 2MiB huge page")
		}
		return uintptr((startFrame+uint64(p1i))<<12) + offset, true
	}

	p1Addr, present := nextTableAddress(p2, p2Addr, p2i)
	if !present {
		return 0, false
	}
	p1 := derefTable[L1](p1Addr)

	frame, present := p1.Entries[p1i].Frame()
	if !present {
		return 0, false
	}
	return frame.Address() + offset, true
}

// MapTo installs a mapping from page to frame with the given flags,
// creating intermediate tables via alloc as needed. It panics if page is
// already mapped.
func (m Mapper) MapTo(page Page, frame pmm.Frame, flags Entry, alloc FrameAlloc) {
	p4i, p3i, p2i, p1i := page.Indices()

	p3Addr := ensureNextTable[L4, L3](m.p4(), m.p4Addr, p4i, alloc)
	p3 := derefTable[L3](p3Addr)

	p2Addr := ensureNextTable[L3, L2](p3, p3Addr, p3i, alloc)
	p2 := derefTable[L2](p2Addr)

	p1Addr := ensureNextTable[L2, L1](p2, p2Addr, p2i, alloc)
	p1 := derefTable[L1](p1Addr)

	if !p1.Entries[p1i].IsUnused() {
		panic("vmm: map_to target page is already mapped")
	}
	p1.Entries[p1i].Set(frame, flags)
}

// Map allocates a fresh frame and maps page to it.
func (m Mapper) Map(page Page, flags Entry, alloc FrameAlloc) pmm.Frame {
	frame := alloc.Alloc()
	if !frame.Valid() {
		panic("vmm: out of memory")
	}
	m.MapTo(page, frame, flags, alloc)
	return frame
}

// IdentityMap maps the page whose address equals frame's start address to
// frame itself.
func (m Mapper) IdentityMap(frame pmm.Frame, flags Entry, alloc FrameAlloc) {
	m.MapTo(PageFromAddress(frame.Address()), frame, flags, alloc)
}

// Unmap clears the mapping for page, flushes the TLB for its address and
// returns the frame it was pointing to back to alloc. It panics if page was
// not mapped. Emptied P3/P2/P1 tables are not freed.
func (m Mapper) Unmap(page Page, alloc FrameAlloc) {
	p4i, p3i, p2i, p1i := page.Indices()

	p3Addr, ok := nextTableAddress(m.p4(), m.p4Addr, p4i)
	if !ok {
		panic("vmm: unmap of unmapped page")
	}
	p3 := derefTable[L3](p3Addr)

	p2Addr, ok := nextTableAddress(p3, p3Addr, p3i)
	if !ok {
		panic("vmm: unmap of unmapped page")
	}
	p2 := derefTable[L2](p2Addr)

	p1Addr, ok := nextTableAddress(p2, p2Addr, p2i)
	if !ok {
		panic("vmm: unmap of unmapped page")
	}
	p1 := derefTable[L1](p1Addr)

	frame, ok := p1.Entries[p1i].Frame()
	if !ok {
		panic("vmm: unmap of unmapped page")
	}

	p1.Entries[p1i].SetUnused()
	flushTLBEntry(page.Address())
	alloc.Dealloc(frame)
}
