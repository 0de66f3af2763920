package vmm

import "github.com/mkaput/kernel/kernel/cpu"

// flushTLBEntryFn and flushTLBFn are seams over the real CPU primitives so
// tests can observe TLB flush calls without executing privileged
// instructions.
var (
	flushTLBEntryFn = cpu.FlushTLBEntry
	flushTLBFn      = cpu.FlushTLB
)

func flushTLBEntry(virtAddr uintptr) {
	flushTLBEntryFn(virtAddr)
}

func flushTLB() {
	flushTLBFn()
}
