package vmm

import (
	"github.com/mkaput/kernel/kernel/mem"
	"github.com/mkaput/kernel/kernel/mem/pmm"
	"github.com/mkaput/kernel/kernel/multiboot"
)

// vgaTextBufferFrame is the physical frame backing the legacy VGA text
// console, identity-mapped WRITABLE by every remap so console output keeps
// working across the hierarchy switch.
const vgaTextBufferFrame = 0xB8000

// RemapKernel rebuilds the page hierarchy from the bootloader-reported ELF
// sections, giving every mapped frame exactly the permissions its section
// warrants, switches CR3 to the new hierarchy, then turns the page that used
// to hold the old P4 into a guard page.
//
// mbInfoStart/mbInfoEnd bound the multiboot information blob, which must
// stay mapped (read-only) so later calls to the multiboot package keep
// working after the switch.
func RemapKernel(active *ActivePageTable, alloc FrameAlloc, mbInfoStart, mbInfoEnd uintptr) {
	tmp := NewTmpPage(TempMappingAddr, alloc)

	newFrame := alloc.Alloc()
	if !newFrame.Valid() {
		panic("vmm: out of memory allocating new P4")
	}
	newTable := NewInactivePageTable(newFrame, active, tmp)

	active.With(newTable, tmp, func(m Mapper) {
		multiboot.VisitElfSections(func(name string, flags multiboot.ElfSectionFlag, address uintptr, size uint64) {
			if flags&multiboot.ElfSectionAllocated == 0 {
				return
			}
			if address%uintptr(mem.PageSize) != 0 {
				panic("vmm: ELF section " + name + " is not page aligned")
			}

			entryFlags := Entry(0)
			if flags&multiboot.ElfSectionWritable != 0 {
				entryFlags |= FlagWritable
			}
			if flags&multiboot.ElfSectionExecutable == 0 {
				entryFlags |= FlagNoExecute
			}

			startFrame := pmm.FrameFromAddress(address)
			endFrame := pmm.FrameFromAddress(address + uintptr(size) - 1)
			for f := startFrame; f <= endFrame; f++ {
				m.IdentityMap(f, entryFlags, alloc)
			}
		})

		m.IdentityMap(pmm.FrameFromAddress(vgaTextBufferFrame), FlagWritable, alloc)

		startFrame := pmm.FrameFromAddress(mbInfoStart)
		endFrame := pmm.FrameFromAddress(mbInfoEnd - 1)
		for f := startFrame; f <= endFrame; f++ {
			m.IdentityMap(f, 0, alloc)
		}
	})

	oldTable := active.Switch(newTable)

	oldP4Page := PageFromAddress(oldTable.P4Frame.Address())
	active.Unmap(oldP4Page, alloc)
}
