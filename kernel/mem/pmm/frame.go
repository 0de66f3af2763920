// Package pmm manages allocation of physical memory frames.
package pmm

import "github.com/mkaput/kernel/kernel/mem"

// Frame identifies a 4 KiB physical memory frame by its frame number
// (address / mem.PageSize). Frames are totally ordered by number.
//
// A Frame is a non-copyable token: duplicating one outside this package is a
// bug, since a live Frame represents exclusive ownership of a physical page.
// The one exception is a Frame held by a page-table entry, which models a
// shared pointer without an ownership transfer.
type Frame uint64

// InvalidFrame is returned by frame allocators when they fail to reserve a
// frame.
const InvalidFrame = Frame(^uint64(0))

// FrameFromAddress returns the Frame containing the given physical address.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame(uint64(physAddr) >> mem.PageShift)
}

// Valid returns true if this is not the sentinel InvalidFrame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical start address of this frame.
func (f Frame) Address() uintptr {
	return uintptr(f << mem.PageShift)
}

// FrameRange is an inclusive-start, exclusive-end span of frames: [Start, End).
type FrameRange struct {
	Start, End Frame
}

// Contains returns true if f lies inside the range.
func (r FrameRange) Contains(f Frame) bool {
	return f >= r.Start && f < r.End
}
