// Package stack hands out kernel stacks, each separated from its neighbor
// by an unmapped guard page so a stack overflow faults instead of
// corrupting adjacent memory.
package stack

import (
	"github.com/mkaput/kernel/kernel/vmm"
)

// Stack describes a mapped, contiguous stack region: [bottom, top).
type Stack struct {
	Top, Bottom uintptr
}

func newStack(top, bottom uintptr) Stack {
	if top <= bottom {
		panic("stack: top must be greater than bottom")
	}
	return Stack{Top: top, Bottom: bottom}
}

// Allocator hands out stacks from a fixed, ascending range of virtual
// pages. Each call consumes one guard page (left unmapped) followed by the
// requested number of stack pages (mapped WRITABLE).
type Allocator struct {
	next vmm.Page
	last vmm.Page
}

// NewAllocator returns an Allocator that carves stacks out of
// [rangeStart, rangeEnd), given as page-aligned virtual addresses.
func NewAllocator(rangeStart, rangeEnd uintptr) *Allocator {
	return &Allocator{
		next: vmm.PageFromAddress(rangeStart),
		last: vmm.PageFromAddress(rangeEnd - 1),
	}
}

// Alloc consumes a guard page and sizeInPages contiguous pages from the
// allocator's range, mapping the latter WRITABLE via active and alloc. It
// returns ok=false without consuming any pages if sizeInPages is zero or
// the range is exhausted.
func (a *Allocator) Alloc(active *vmm.ActivePageTable, alloc vmm.FrameAlloc, sizeInPages uint) (s Stack, ok bool) {
	if sizeInPages == 0 {
		return Stack{}, false
	}

	guardPage := a.next
	startPage := guardPage + 1
	endPage := startPage + vmm.Page(sizeInPages-1)

	if guardPage > a.last || startPage > a.last || endPage > a.last {
		return Stack{}, false
	}

	for p := startPage; p <= endPage; p++ {
		active.Map(p, vmm.FlagWritable, alloc)
	}

	a.next = endPage + 1

	return newStack(endPage.EndAddress(), startPage.Address()), true
}
