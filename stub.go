package main

import "github.com/mkaput/kernel/kernel/kmain"

// multibootInfoPtr, kernelStartAddr and kernelEndAddr are populated by the
// rt0 assembly trampoline before it jumps here: the multiboot info pointer
// handed to the bootloader-loaded kernel in EBX, and the kernel image's
// physical bounds as computed from the linker script symbols.
var (
	multibootInfoPtr uintptr
	kernelStartAddr  uintptr
	kernelEndAddr    uintptr
)

// main makes a dummy call to the actual kernel main entrypoint function. It
// is intentionally defined to prevent the Go compiler from optimizing away the
// real kernel code.
//
// Global variables are passed as arguments to Kmain to prevent the compiler
// from inlining the actual call and removing Kmain from the generated .o file.
func main() {
	kmain.Kmain(multibootInfoPtr, kernelStartAddr, kernelEndAddr)
}
