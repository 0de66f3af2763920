package stack

import (
	"testing"
	"unsafe"

	"github.com/mkaput/kernel/kernel/mem/pmm"
	"github.com/mkaput/kernel/kernel/vmm"
)

type fakeFrameAlloc struct {
	next pmm.Frame
}

func (a *fakeFrameAlloc) Alloc() pmm.Frame {
	f := a.next
	a.next++
	return f
}

func (a *fakeFrameAlloc) Dealloc(pmm.Frame) {}

func withFakeAddressSpace(t *testing.T) {
	backing := make(map[uintptr]*[512]vmm.Entry)
	restoreDeref := vmm.SetTableDerefForTesting(func(addr uintptr) unsafe.Pointer {
		tbl, ok := backing[addr]
		if !ok {
			tbl = new([512]vmm.Entry)
			backing[addr] = tbl
		}
		return unsafe.Pointer(tbl)
	})
	restoreTLB := vmm.SetTLBFlushForTesting(func(uintptr) {}, func() {})
	t.Cleanup(func() {
		restoreDeref()
		restoreTLB()
	})
}

func TestAllocatorLeavesGuardPageUnmapped(t *testing.T) {
	withFakeAddressSpace(t)

	active := vmm.NewActivePageTable()
	alloc := &fakeFrameAlloc{next: 1}

	const rangeStart = 0x2000_0000_0000
	const rangeEnd = rangeStart + 16*0x1000

	sa := NewAllocator(rangeStart, rangeEnd)

	s, ok := sa.Alloc(active, alloc, 2)
	if !ok {
		t.Fatal("expected first allocation in a fresh range to succeed")
	}

	guardAddr := uintptr(rangeStart)
	if s.Bottom != guardAddr+0x1000 {
		t.Fatalf("expected stack bottom to start one page past the guard page; got 0x%x", s.Bottom)
	}
	if s.Top != guardAddr+0x1000+2*0x1000 {
		t.Fatalf("expected stack top at bottom+2 pages; got 0x%x", s.Top)
	}
	if s.Top <= s.Bottom {
		t.Fatal("expected top > bottom")
	}

	if _, ok := active.Translate(guardAddr); ok {
		t.Fatal("expected the guard page to remain unmapped")
	}
	if _, ok := active.Translate(s.Bottom); !ok {
		t.Fatal("expected the first stack page to be mapped")
	}
	if _, ok := active.Translate(s.Top - 1); !ok {
		t.Fatal("expected the last stack page to be mapped")
	}
}

func TestAllocatorSucceedingCallsDoNotOverlap(t *testing.T) {
	withFakeAddressSpace(t)

	active := vmm.NewActivePageTable()
	alloc := &fakeFrameAlloc{next: 1}

	const rangeStart = 0x2000_0000_0000
	const rangeEnd = rangeStart + 64*0x1000

	sa := NewAllocator(rangeStart, rangeEnd)

	first, ok := sa.Alloc(active, alloc, 2)
	if !ok {
		t.Fatal("expected first allocation to succeed")
	}
	second, ok := sa.Alloc(active, alloc, 2)
	if !ok {
		t.Fatal("expected second allocation to succeed")
	}

	if second.Bottom < first.Top {
		t.Fatalf("expected second stack (bottom 0x%x) not to overlap first (top 0x%x)", second.Bottom, first.Top)
	}
	if second.Bottom == first.Top {
		t.Fatalf("expected a guard page between stacks; second.Bottom (0x%x) immediately follows first.Top (0x%x)", second.Bottom, first.Top)
	}
}

func TestAllocatorRejectsZeroPages(t *testing.T) {
	withFakeAddressSpace(t)

	active := vmm.NewActivePageTable()
	alloc := &fakeFrameAlloc{next: 1}

	sa := NewAllocator(0x2000_0000_0000, 0x2000_0000_0000+16*0x1000)
	if _, ok := sa.Alloc(active, alloc, 0); ok {
		t.Fatal("expected Alloc(0) to fail")
	}
}

func TestAllocatorExhaustion(t *testing.T) {
	withFakeAddressSpace(t)

	active := vmm.NewActivePageTable()
	alloc := &fakeFrameAlloc{next: 1}

	// Room for exactly one guard page + 2 stack pages.
	sa := NewAllocator(0x2000_0000_0000, 0x2000_0000_0000+3*0x1000)

	if _, ok := sa.Alloc(active, alloc, 2); !ok {
		t.Fatal("expected the only allocation that fits to succeed")
	}
	if _, ok := sa.Alloc(active, alloc, 1); ok {
		t.Fatal("expected the range to be exhausted")
	}
}
