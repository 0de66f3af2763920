package pmm

import (
	"github.com/mkaput/kernel/kernel/mem"
	"github.com/mkaput/kernel/kernel/multiboot"
)

// MemArea describes an available physical memory region, expressed as a
// half-open byte range [PhysAddress, PhysAddress+Length).
type MemArea struct {
	PhysAddress uint64
	Length      uint64
}

// MemAreaVisitor is invoked by a MemAreaSource for each available memory
// area known to the allocator.
type MemAreaVisitor func(MemArea)

// MemAreaSource supplies the memory areas a CoreFrameAlloc draws frames
// from. MultibootMemAreas adapts the real bootloader-provided map; tests
// inject a fixed in-memory slice instead.
type MemAreaSource func(MemAreaVisitor)

// MultibootMemAreas is a MemAreaSource backed by the multiboot memory map
// tag, restricted to regions the bootloader reports as available.
func MultibootMemAreas(visit MemAreaVisitor) {
	multiboot.VisitMemRegions(func(entry *multiboot.MemoryMapEntry) {
		if entry.Type == multiboot.MemAvailable {
			visit(MemArea{PhysAddress: entry.PhysAddress, Length: entry.Length})
		}
	})
}

// CoreFrameAlloc is a bump-pointer frame allocator that hands out frames
// from the memory areas reported by its MemAreaSource, skipping any frame
// that falls inside one of two fixed reserved ranges: the loaded kernel
// image and the multiboot information blob. It never reuses a frame once
// handed out; Dealloc is a no-op placeholder.
type CoreFrameAlloc struct {
	areas    MemAreaSource
	reserved [2]FrameRange

	cursor    Frame
	areaValid bool
	areaBase  Frame
	areaLast  Frame
	exhausted bool
}

// NewCoreFrameAlloc constructs a CoreFrameAlloc drawing frames from areas.
// kernelImage and multibootBlob describe the physical address ranges
// (half-open, [start, end)) that must never be handed out even though the
// bootloader reports them as available.
func NewCoreFrameAlloc(areas MemAreaSource, kernelImage, multibootBlob FrameRange) *CoreFrameAlloc {
	return &CoreFrameAlloc{
		areas:    areas,
		reserved: [2]FrameRange{kernelImage, multibootBlob},
	}
}

// Alloc returns the lowest-numbered unallocated, unreserved frame within any
// available memory area, or InvalidFrame once the areas are exhausted.
func (a *CoreFrameAlloc) Alloc() Frame {
	if a.exhausted {
		return InvalidFrame
	}

	if !a.areaValid {
		if !a.pickNextArea(0) {
			a.exhausted = true
			return InvalidFrame
		}
	}

	for {
		if a.cursor > a.areaLast {
			if !a.pickNextArea(a.cursor) {
				a.exhausted = true
				return InvalidFrame
			}
			continue
		}

		if snapped, ok := a.snapPastReserved(a.cursor); ok {
			a.cursor = snapped
			continue
		}

		frame := a.cursor
		a.cursor++
		return frame
	}
}

// Dealloc is a no-op placeholder: CoreFrameAlloc never reuses a returned
// frame. Callers must not assume the frame becomes available again.
func (a *CoreFrameAlloc) Dealloc(Frame) {}

// snapPastReserved returns (re, true) if cursor falls within a reserved
// range [rs, re), so the caller can retry from the new cursor position.
func (a *CoreFrameAlloc) snapPastReserved(cursor Frame) (Frame, bool) {
	for _, r := range a.reserved {
		if r.Contains(cursor) {
			return r.End, true
		}
	}
	return 0, false
}

// pickNextArea scans the multiboot memory map for the available area with
// the minimum base address whose last frame is >= minFrame, and positions
// the cursor at the first candidate frame in that area (snapping up into the
// area if minFrame falls in a gap below it).
func (a *CoreFrameAlloc) pickNextArea(minFrame Frame) bool {
	var (
		found    bool
		bestBase Frame
		bestLast Frame
	)

	a.areas(func(area MemArea) {
		base := Frame(area.PhysAddress >> mem.PageShift)
		last := Frame((area.PhysAddress+area.Length)>>mem.PageShift) - 1

		if last < minFrame {
			return
		}

		if !found || base < bestBase {
			found = true
			bestBase = base
			bestLast = last
		}
	})

	if !found {
		return false
	}

	a.areaValid = true
	a.areaBase = bestBase
	a.areaLast = bestLast

	if minFrame < bestBase {
		a.cursor = bestBase
	} else {
		a.cursor = minFrame
	}

	return true
}
