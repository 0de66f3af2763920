package vmm

import "github.com/mkaput/kernel/kernel/mem/pmm"

// Entry is a single 64-bit page-table entry: bits 12-51 hold the physical
// frame address, the low 9 bits and bit 63 hold permission flags.
type Entry uint64

// Entry flag bits.
const (
	FlagPresent Entry = 1 << iota
	FlagWritable
	FlagUser
	FlagWriteThrough
	FlagNoCache
	FlagAccessed
	FlagDirty
	FlagHuge
	FlagGlobal
)

// FlagNoExecute is bit 63; it requires NXE to be set in IA32_EFER to take
// effect.
const FlagNoExecute Entry = 1 << 63

// addrMask isolates bits 12-51, the physical frame address field.
const addrMask Entry = 0x000F_FFFF_FFFF_F000

// IsUnused returns true if the raw entry value is zero.
func (e Entry) IsUnused() bool {
	return e == 0
}

// SetUnused zeroes the entry.
func (e *Entry) SetUnused() {
	*e = 0
}

// HasFlags returns true if every bit set in flags is also set in e.
func (e Entry) HasFlags(flags Entry) bool {
	return e&flags == flags
}

// Flags returns the permission bits of the entry, excluding the frame
// address field.
func (e Entry) Flags() Entry {
	return e &^ addrMask
}

// Frame returns the physical frame this entry points to. The second return
// value is false if the entry is not PRESENT.
func (e Entry) Frame() (pmm.Frame, bool) {
	if !e.HasFlags(FlagPresent) {
		return pmm.InvalidFrame, false
	}
	return pmm.FrameFromAddress(uintptr(e & addrMask)), true
}

// Set installs frame into the entry with the given flags, always adding
// FlagPresent. It panics if the frame's address does not fit the entry's
// address field.
func (e *Entry) Set(frame pmm.Frame, flags Entry) {
	addr := Entry(frame.Address())
	if addr&^addrMask != 0 {
		panic("vmm: frame address does not fit page-table entry address field")
	}
	*e = addr | flags | FlagPresent
}
