package cpu

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt stops instruction execution until the next interrupt.
func Halt()

// FlushTLBEntry flushes a single TLB entry for the given virtual address.
func FlushTLBEntry(virtAddr uintptr)

// FlushTLB reloads CR3 with its current value, flushing every non-global
// TLB entry.
func FlushTLB()

// ReadCR2 returns the faulting address recorded by the last page fault.
func ReadCR2() uint64

// ReadCR3 returns the physical address of the currently active P4 table.
func ReadCR3() uint64

// WriteCR3 loads a new P4 physical address into CR3, flushing the TLB.
func WriteCR3(p4PhysAddr uint64)

// SwitchPDT sets the root page table directory to point to the specified
// physical address and flushes the TLB.
func SwitchPDT(pdtPhysAddr uintptr)

// ActivePDT returns the physical address of the currently active page table.
func ActivePDT() uintptr

// EnableNXE sets the NXE bit (bit 11) of the IA32_EFER MSR, allowing
// NO_EXECUTE page-table entries to be honored.
func EnableNXE()

// EnableWriteProtect sets the WP bit (bit 16) of CR0 so that read-only
// pages cannot be written even by ring-0 code.
func EnableWriteProtect()

// ID executes the CPUID instruction for the given leaf and returns the
// resulting eax/ebx/ecx/edx registers.
func ID(leaf uint32) (eax, ebx, ecx, edx uint32)

// IsIntel returns true if the CPU vendor string reported via CPUID leaf 0
// is "GenuineIntel".
func IsIntel() bool {
	_, ebx, ecx, edx := ID(0)
	return ebx == 0x756e6547 && edx == 0x49656e69 && ecx == 0x6c65746e
}
