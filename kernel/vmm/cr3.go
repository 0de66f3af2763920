package vmm

import "github.com/mkaput/kernel/kernel/cpu"

func defaultCurrentCR3() uintptr {
	return uintptr(cpu.ReadCR3())
}

func defaultWriteCR3(p4PhysAddr uint64) {
	cpu.WriteCR3(p4PhysAddr)
}
