package vmm

import (
	"testing"

	"github.com/mkaput/kernel/kernel/mem/pmm"
)

// withFakeCR3 installs a fake CR3 that starts out pointing at activeFrame
// and records whatever gets written to it, standing in for the real
// register so tables_test never trips a privileged instruction. It seeds
// activeFrame's own recursive slot in space, since a real active table
// always satisfies that invariant before anything loads it into CR3.
func withFakeCR3(t *testing.T, space *fakeAddressSpace, activeFrame pmm.Frame) *pmm.Frame {
	space.seedSelfMap(activeFrame)

	cur := activeFrame

	savedRead, savedWrite := currentCR3Fn, writeCR3Fn
	currentCR3Fn = func() uintptr { return cur.Address() }
	writeCR3Fn = func(p4PhysAddr uint64) { cur = pmm.FrameFromAddress(uintptr(p4PhysAddr)) }

	t.Cleanup(func() {
		currentCR3Fn, writeCR3Fn = savedRead, savedWrite
	})

	return &cur
}

func TestNewInactivePageTableInstallsRecursiveSlot(t *testing.T) {
	space := withFakeAddressSpace(t)
	activeFrame := pmm.Frame(1)
	withFakeCR3(t, space, activeFrame)

	active := NewActivePageTable()
	alloc := &fakeFrameAlloc{next: 2}
	tmp := NewTmpPage(TempMappingAddr, alloc)

	newFrame := alloc.Alloc()
	inactive := NewInactivePageTable(newFrame, active, tmp)

	if inactive.P4Frame != newFrame {
		t.Fatalf("expected InactivePageTable.P4Frame == %d; got %d", newFrame, inactive.P4Frame)
	}

	table := space.table(newFrame)
	frame, ok := table[recursiveSlot].Frame()
	if !ok || frame != newFrame {
		t.Fatalf("expected recursive slot to point at own frame %d; got (%d, %v)", newFrame, frame, ok)
	}
	if !table[recursiveSlot].HasFlags(FlagWritable) {
		t.Fatal("expected recursive slot to be WRITABLE")
	}
}

// TestActivePageTableWithRestoresRecursiveSlot exercises the one routine
// the vmm package treats as its most dangerous: ActivePageTable.With must
// leave both hierarchies' recursive slots exactly as it found them,
// active self-mapped to active and newTable self-mapped to newTable. The
// assertions below key storage by physical frame rather than by
// dereferencing P4, precisely so that a restore which writes through the
// wrong alias (see tables.go) corrupts a frame the test is actually
// looking at, instead of corrupting the very P4 resolution the test would
// otherwise use to check it.
func TestActivePageTableWithRestoresRecursiveSlot(t *testing.T) {
	space := withFakeAddressSpace(t)
	activeFrame := pmm.Frame(1)
	withFakeCR3(t, space, activeFrame)

	active := NewActivePageTable()
	alloc := &fakeFrameAlloc{next: 2}
	tmp := NewTmpPage(TempMappingAddr, alloc)

	newFrame := alloc.Alloc()
	inactive := NewInactivePageTable(newFrame, active, tmp)

	targetPage := PageFromAddress(0x5000)
	targetFrame := pmm.Frame(500)

	var sawDuringCallback uintptr
	var sawOK bool
	active.With(inactive, tmp, func(m Mapper) {
		m.MapTo(targetPage, targetFrame, FlagWritable, alloc)
		sawDuringCallback, sawOK = m.Translate(targetPage.Address())
	})

	if !sawOK || sawDuringCallback != targetFrame.Address() {
		t.Fatalf("expected mapping written inside With() to read back correctly; got (0x%x, %v)", sawDuringCallback, sawOK)
	}

	if got, ok := space.table(activeFrame)[recursiveSlot].Frame(); !ok || got != activeFrame {
		t.Fatalf("expected the active table's own frame %d to be self-mapped again after With(); got (%d, %v)", activeFrame, got, ok)
	}
	if got, ok := space.table(newFrame)[recursiveSlot].Frame(); !ok || got != newFrame {
		t.Fatalf("expected newTable's frame %d to still be self-mapped after With(); got (%d, %v)", newFrame, got, ok)
	}
}

func TestActivePageTableSwitch(t *testing.T) {
	space := withFakeAddressSpace(t)
	activeFrame := pmm.Frame(1)
	cr3 := withFakeCR3(t, space, activeFrame)

	active := NewActivePageTable()
	alloc := &fakeFrameAlloc{next: 2}
	tmp := NewTmpPage(TempMappingAddr, alloc)

	newFrame := alloc.Alloc()
	inactive := NewInactivePageTable(newFrame, active, tmp)

	old := active.Switch(inactive)

	if old.P4Frame != activeFrame {
		t.Fatalf("expected Switch to return the previously active frame %d; got %d", activeFrame, old.P4Frame)
	}
	if *cr3 != newFrame {
		t.Fatalf("expected CR3 to now hold %d; got %d", newFrame, *cr3)
	}
}
