// +build amd64

package vmm

import "github.com/mkaput/kernel/kernel/mem"

// P4 is the virtual address of the active P4 table, valid only while its
// slot 511 still points back to itself (see Mapper and ActivePageTable).
const P4 = uintptr(0xFFFF_FFFF_FFFF_F000)

// recursiveSlot is the P4/P3/P2 entry index (511) reserved for the
// recursive self-mapping trick.
const recursiveSlot = 511

// TempMappingAddr is a fixed virtual address reserved for TmpPage, chosen
// outside both the kernel image and the heap range.
const TempMappingAddr = uintptr(0xFFFF_FF7F_FFFF_F000)

// HeapStart and HeapSize bound the kernel heap region mapped by Bootstrap.
const (
	HeapStart = uintptr(0x4000_0000_0000)
	HeapSize  = mem.Size(100 * 1024)
)

// SysStackStart/SysStackEnd bound the virtual range package stack carves the
// double-fault and machine-check IST stacks out of, kept well away from both
// the heap and the recursive mapping range.
const (
	SysStackStart = uintptr(0x4000_0100_0000)
	SysStackEnd   = uintptr(0x4000_0110_0000)
)
