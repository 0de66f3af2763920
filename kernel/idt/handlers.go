package idt

import (
	"github.com/mkaput/kernel/kernel/cpu"
	"github.com/mkaput/kernel/kernel/kfmt/early"
)

// cpuHaltFn is a variable rather than a direct call so tests can replace it.
var cpuHaltFn = cpu.Halt

func fatal(name string, vector uint8, errorCode uint64, frame *Frame) {
	early.Printf("\n-----------------------------------\n")
	early.Printf("fatal exception: %s (vector %d, error code %x)\n", name, vector, errorCode)
	early.Printf("rip=%x cs=%x rflags=%x rsp=%x ss=%x\n", frame.RIP, frame.CS, frame.RFlags, frame.RSP, frame.SS)
	early.Printf("*** kernel halted ***")
	early.Printf("\n-----------------------------------\n")
	cpuHaltFn()
}

func breakpoint(frame *Frame) {
	early.Printf("breakpoint hit at rip=%x\n", frame.RIP)
}
