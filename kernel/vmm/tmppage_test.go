package vmm

import (
	"testing"

	"github.com/mkaput/kernel/kernel/mem/pmm"
)

func TestTmpPageMapUnmapRoundTrip(t *testing.T) {
	space := withFakeAddressSpace(t)
	withFakeCR3(t, space, pmm.Frame(1))

	active := NewActivePageTable()
	alloc := &fakeFrameAlloc{next: 2}

	tmp := NewTmpPage(TempMappingAddr, alloc)

	targetFrame := pmm.Frame(900)
	gotAddr := tmp.MapTableFrame(targetFrame, active)
	if gotAddr != TempMappingAddr {
		t.Fatalf("expected MapTableFrame to return the reserved scratch address %#x; got %#x", TempMappingAddr, gotAddr)
	}

	physAddr, ok := active.Translate(TempMappingAddr)
	if !ok || physAddr != targetFrame.Address() {
		t.Fatalf("expected scratch page to translate to target frame %#x; got (0x%x, %v)", targetFrame.Address(), physAddr, ok)
	}

	tmp.Unmap(active)

	if _, ok := active.Translate(TempMappingAddr); ok {
		t.Fatal("expected scratch page to be unmapped")
	}
}

func TestTmpPageUsesPrivateAllocatorNotMainOne(t *testing.T) {
	space := withFakeAddressSpace(t)
	withFakeCR3(t, space, pmm.Frame(1))

	active := NewActivePageTable()
	main := &fakeFrameAlloc{next: 100}

	tmp := NewTmpPage(TempMappingAddr, main)
	mainCursorAfterReserve := main.next

	tmp.MapTableFrame(pmm.Frame(5), active)
	tmp.Unmap(active)

	if main.next != mainCursorAfterReserve {
		t.Fatalf("expected mapping/unmapping the scratch page not to touch the main allocator; cursor moved from %d to %d", mainCursorAfterReserve, main.next)
	}
}
