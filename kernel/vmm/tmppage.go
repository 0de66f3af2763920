package vmm

import "github.com/mkaput/kernel/kernel/mem/pmm"

// privateFrameAlloc is a closed, three-slot frame allocator. TmpPage uses
// one so that mapping its own scratch page — which may need to create up to
// three intermediate tables (P3, P2, P1) — never re-enters the main frame
// allocator, which would be unsafe in the middle of a remap.
type privateFrameAlloc struct {
	frames [3]pmm.Frame
	next   int
}

func newPrivateFrameAlloc(frames [3]pmm.Frame) *privateFrameAlloc {
	return &privateFrameAlloc{frames: frames}
}

func (a *privateFrameAlloc) Alloc() pmm.Frame {
	if a.next >= len(a.frames) {
		return pmm.InvalidFrame
	}
	f := a.frames[a.next]
	a.next++
	return f
}

func (a *privateFrameAlloc) Dealloc(f pmm.Frame) {
	if a.next > 0 {
		a.next--
		a.frames[a.next] = f
	}
}

// TmpPage is a single reserved virtual page used to create a temporary
// alias for a physical frame while editing a page hierarchy that is not
// (yet, or no longer) reachable through the recursive trick.
type TmpPage struct {
	page  Page
	alloc *privateFrameAlloc
}

// NewTmpPage reserves virtAddr as the scratch page and primes its private
// allocator with three frames obtained from the main allocator up front.
func NewTmpPage(virtAddr uintptr, mainAlloc FrameAlloc) *TmpPage {
	var frames [3]pmm.Frame
	for i := range frames {
		frames[i] = mainAlloc.Alloc()
		if !frames[i].Valid() {
			panic("vmm: out of memory reserving TmpPage frames")
		}
	}
	return &TmpPage{
		page:  PageFromAddress(virtAddr),
		alloc: newPrivateFrameAlloc(frames),
	}
}

// MapTableFrame maps the scratch page to frame (WRITABLE) through active's
// mapper and returns the scratch page's virtual address, so the caller can
// dereference it as a PageTable of whichever level frame actually holds.
func (t *TmpPage) MapTableFrame(frame pmm.Frame, active *ActivePageTable) uintptr {
	active.MapTo(t.page, frame, FlagPresent|FlagWritable, t.alloc)
	return t.page.Address()
}

// Unmap tears down the scratch mapping established by MapTableFrame,
// returning the frame to the private allocator (not the main one).
func (t *TmpPage) Unmap(active *ActivePageTable) {
	active.Unmap(t.page, t.alloc)
}
