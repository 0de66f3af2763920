package vmm

import "github.com/mkaput/kernel/kernel/mem"

// Page identifies a 4 KiB virtual page by its page number (address /
// mem.PageSize). Constructing a Page asserts that the address it was built
// from is canonical.
type Page uintptr

// PageFromAddress returns the Page containing virtAddr, rounding down to
// the containing page boundary. It panics if virtAddr is not canonical.
func PageFromAddress(virtAddr uintptr) Page {
	if !IsCanonical(uint64(virtAddr)) {
		panic("vmm: non-canonical virtual address")
	}
	return Page(virtAddr >> mem.PageShift)
}

// Address returns the virtual start address of this page.
func (p Page) Address() uintptr {
	return uintptr(p) << mem.PageShift
}

// EndAddress returns the address immediately past this page.
func (p Page) EndAddress() uintptr {
	return p.Address() + uintptr(mem.PageSize)
}

// Indices decomposes the page number into its four 9-bit page-table
// indices: p4, p3, p2, p1.
func (p Page) Indices() (p4, p3, p2, p1 uint16) {
	n := uint(p)
	return uint16((n >> 27) & 0o777), uint16((n >> 18) & 0o777), uint16((n >> 9) & 0o777), uint16(n & 0o777)
}
