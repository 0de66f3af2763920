// Package kmain wires together every subsystem the kernel needs before it
// can hand off to a shell: early console, physical/virtual memory, the Go
// runtime heap, the GDT/TSS/IDT, the 8259 PIC and the keyboard driver.
package kmain

import (
	"github.com/mkaput/kernel/kernel"
	"github.com/mkaput/kernel/kernel/cpu"
	"github.com/mkaput/kernel/kernel/driver/keyboard"
	"github.com/mkaput/kernel/kernel/gdt"
	"github.com/mkaput/kernel/kernel/goruntime"
	"github.com/mkaput/kernel/kernel/hal"
	"github.com/mkaput/kernel/kernel/heap"
	"github.com/mkaput/kernel/kernel/idt"
	"github.com/mkaput/kernel/kernel/kfmt"
	"github.com/mkaput/kernel/kernel/kfmt/early"
	"github.com/mkaput/kernel/kernel/mem/pmm"
	"github.com/mkaput/kernel/kernel/multiboot"
	"github.com/mkaput/kernel/kernel/pic"
	"github.com/mkaput/kernel/kernel/shell"
	"github.com/mkaput/kernel/kernel/stack"
	"github.com/mkaput/kernel/kernel/vmm"
)

var errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

// doubleFaultStackPages and machineCheckStackPages size the IST stacks used
// by the corresponding fatal exception handlers; both exceptions can occur
// while the normal kernel stack is itself corrupt or exhausted.
const (
	doubleFaultStackPages  = 4
	machineCheckStackPages = 4
)

// Kmain is the only Go symbol that is visible (exported) from the rt0
// initialization code. It is invoked by the rt0 assembly code after setting
// up a minimal g0 struct that allows Go code to run using the 4K stack
// allocated by the assembly code, and it never returns.
//
// The rt0 code passes the address of the multiboot info payload provided by
// the bootloader as well as the physical addresses for the kernel start/end.
//
//go:noinline
func Kmain(multibootInfoPtr, kernelStart, kernelEnd uintptr) {
	hal.InitTerminal()
	hal.ActiveTerminal.Clear()

	multiboot.SetInfoPtr(multibootInfoPtr)
	cpu.EnableNXE()

	kernelImage := pmm.FrameRange{
		Start: pmm.FrameFromAddress(kernelStart),
		End:   pmm.FrameFromAddress(kernelEnd-1) + 1,
	}
	mbInfoEnd := multibootInfoPtr + uintptr(multiboot.InfoSize())
	multibootBlob := pmm.FrameRange{
		Start: pmm.FrameFromAddress(multibootInfoPtr),
		End:   pmm.FrameFromAddress(mbInfoEnd-1) + 1,
	}

	frameAlloc := pmm.NewCoreFrameAlloc(pmm.MultibootMemAreas, kernelImage, multibootBlob)

	active := vmm.NewActivePageTable()
	vmm.RemapKernel(active, frameAlloc, multibootInfoPtr, mbInfoEnd)
	cpu.EnableWriteProtect()

	heap.Bootstrap(active, frameAlloc)
	if err := goruntime.Init(); err != nil {
		panic(err)
	}

	stacks := stack.NewAllocator(vmm.SysStackStart, vmm.SysStackEnd)
	doubleFaultStack, ok := stacks.Alloc(active, frameAlloc, doubleFaultStackPages)
	if !ok {
		early.Printf("kmain: failed to allocate double fault stack\n")
		kernel.Panic(errKmainReturned)
	}
	machineCheckStack, ok := stacks.Alloc(active, frameAlloc, machineCheckStackPages)
	if !ok {
		early.Printf("kmain: failed to allocate machine check stack\n")
		kernel.Panic(errKmainReturned)
	}

	gdt.Init(doubleFaultStack.Top, machineCheckStack.Top)
	idt.Init()
	pic.Init()
	keyboard.Init()
	cpu.EnableInterrupts()

	kfmt.SetOutputSink(hal.ActiveTerminal)
	shell.Start()

	// shell.Start never returns; reaching this point means it did, which
	// is itself a fatal condition.
	kernel.Panic(errKmainReturned)
}
