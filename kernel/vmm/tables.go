package vmm

import "github.com/mkaput/kernel/kernel/mem/pmm"

// ActivePageTable is a Mapper over the page hierarchy currently loaded into
// CR3; its recursive slot 511 is assumed to point back to its own frame.
type ActivePageTable struct {
	Mapper
}

// NewActivePageTable returns an ActivePageTable for the hierarchy reachable
// through the fixed recursive address P4.
func NewActivePageTable() *ActivePageTable {
	return &ActivePageTable{Mapper: newMapper(P4)}
}

// InactivePageTable owns a frame holding a P4 that is not currently loaded
// into CR3. Its own recursive slot 511 points to itself, so once it becomes
// active it is immediately walkable through P4.
type InactivePageTable struct {
	P4Frame pmm.Frame
}

// NewInactivePageTable maps frame through tmp, zeroes it and installs its
// own recursive slot (511 -> frame, PRESENT|WRITABLE), then unmaps tmp.
func NewInactivePageTable(frame pmm.Frame, active *ActivePageTable, tmp *TmpPage) InactivePageTable {
	tableAddr := tmp.MapTableFrame(frame, active)
	derefTable[L4](tableAddr).Clear()

	table := derefTable[L4](tableAddr)
	table.Entries[recursiveSlot].Set(frame, FlagPresent|FlagWritable)

	tmp.Unmap(active)

	return InactivePageTable{P4Frame: frame}
}

// With runs f against a Mapper that edits newTable instead of the active
// hierarchy, without switching CR3:
//
//  1. the active P4's recursive slot is saved and temporarily aliased via
//     tmp so the active hierarchy remains reachable during the swap;
//  2. the active P4's slot 511 is overwritten to point at newTable's frame;
//  3. f runs against a Mapper that now resolves P4 to newTable;
//  4. the saved recursive slot is restored and the temporary alias unmapped.
//
// Both the hot-swap and the restore are followed by a full TLB flush.
func (a *ActivePageTable) With(newTable InactivePageTable, tmp *TmpPage, f func(Mapper)) {
	activeP4Frame := pmm.FrameFromAddress(currentCR3Fn())

	backupAddr := tmp.MapTableFrame(activeP4Frame, a)

	activeP4 := derefTable[L4](P4)
	savedEntry := activeP4.Entries[recursiveSlot]

	activeP4.Entries[recursiveSlot].Set(newTable.P4Frame, FlagPresent|FlagWritable)
	flushTLB()

	f(newMapper(P4))

	// P4 now resolves into newTable, not the original active table, so the
	// restore must go through backupAddr: a direct, non-recursive mapping of
	// the active P4's physical frame that the slot-511 hot-swap above never
	// touched.
	derefTable[L4](backupAddr).Entries[recursiveSlot] = savedEntry
	flushTLB()

	tmp.Unmap(a)
}

// Switch loads newTable into CR3 and returns the table that was active
// before the switch, wrapped as an InactivePageTable so the caller may
// reclaim its frame.
func (a *ActivePageTable) Switch(newTable InactivePageTable) InactivePageTable {
	oldFrame := pmm.FrameFromAddress(currentCR3Fn())
	writeCR3Fn(uint64(newTable.P4Frame.Address()))
	return InactivePageTable{P4Frame: oldFrame}
}

// currentCR3Fn and writeCR3Fn are seams over the raw CR3 accessors so tests
// never execute privileged instructions.
var (
	currentCR3Fn = defaultCurrentCR3
	writeCR3Fn   = defaultWriteCR3
)
