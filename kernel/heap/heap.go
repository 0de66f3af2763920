// Package heap bootstraps the kernel heap: it maps the fixed heap region
// described by the virtual-memory manager and hands growth requests from
// the Go runtime allocator (see package goruntime) back through the active
// page table.
//
// There is exactly one heap for the lifetime of the kernel, so this package
// exposes it as a singleton rather than a constructor; Bootstrap installs it
// once, early in boot, before any code that might allocate runs.
package heap

import (
	"github.com/mkaput/kernel/kernel/mem"
	"github.com/mkaput/kernel/kernel/vmm"
)

// Start and Size describe the fixed heap region: [Start, Start+Size).
const (
	Start = vmm.HeapStart
	Size  = vmm.HeapSize
)

var (
	active    *vmm.ActivePageTable
	frames    vmm.FrameAlloc
	reserveAt = Start + uintptr(Size)
)

// Bootstrap maps every page of [Start, Start+Size) WRITABLE, each backed by
// a freshly allocated frame, and records active/frames as the singletons
// future calls to ReserveRegion and MapRegion operate against.
func Bootstrap(activeTable *vmm.ActivePageTable, frameAlloc vmm.FrameAlloc) {
	active = activeTable
	frames = frameAlloc

	pageCount := Size.Pages()
	page := vmm.PageFromAddress(Start)
	for i := uint32(0); i < pageCount; i, page = i+1, page+1 {
		active.Map(page, vmm.FlagWritable, frames)
	}
}

// ReserveRegion carves out size bytes, rounded up to a page boundary, of
// address space immediately past the region already reserved, without
// mapping it to any frame. It is the Go runtime's sysReserve.
func ReserveRegion(size mem.Size) uintptr {
	regionStart := reserveAt
	pageCount := size.Pages()
	reserveAt += uintptr(pageCount) * uintptr(mem.PageSize)
	return regionStart
}

// MapRegion maps pageCount pages starting at virtAddr WRITABLE, each backed
// by a freshly allocated frame. It is the Go runtime's sysMap/sysAlloc.
func MapRegion(virtAddr uintptr, pageCount uint32) bool {
	page := vmm.PageFromAddress(virtAddr)
	for i := uint32(0); i < pageCount; i, page = i+1, page+1 {
		frame := frames.Alloc()
		if !frame.Valid() {
			return false
		}
		active.MapTo(page, frame, vmm.FlagWritable|vmm.FlagNoExecute, frames)
	}
	return true
}
