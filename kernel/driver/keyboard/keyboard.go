// Package keyboard drives a PS/2 keyboard on IRQ1: translating set-1
// scancodes into ASCII and buffering them for readers that cannot busy-poll
// the controller themselves.
package keyboard

import (
	"github.com/mkaput/kernel/kernel/cpu"
	"github.com/mkaput/kernel/kernel/idt"
	"github.com/mkaput/kernel/kernel/pic"
	"github.com/mkaput/kernel/kernel/port"
)

const (
	dataPort = 0x60

	// irqVector is the IDT vector the 8259 master PIC delivers IRQ1
	// (keyboard) to once pic.Init has rebased it to pic.MasterOffset.
	irqVector = pic.MasterOffset + 1

	bufferSize = 256

	keyReleasedBit = 0x80
)

// scancode set 1 make-codes, top bit of the byte cleared for the "pressed"
// reading; the top bit set marks the matching "released" code.
const (
	scBackspace = 0x0E
	scTab       = 0x0F
	scEnter     = 0x1C
	scSpace     = 0x39
)

var scancodeToASCII = [128]byte{
	0x02: '1', 0x03: '2', 0x04: '3', 0x05: '4', 0x06: '5',
	0x07: '6', 0x08: '7', 0x09: '8', 0x0A: '9', 0x0B: '0',
	0x0C: '-', 0x0D: '=',
	scBackspace: '\b',
	scTab:       '\t',
	0x10: 'q', 0x11: 'w', 0x12: 'e', 0x13: 'r', 0x14: 't',
	0x15: 'y', 0x16: 'u', 0x17: 'i', 0x18: 'o', 0x19: 'p',
	0x1A: '[', 0x1B: ']',
	scEnter: '\n',
	0x1E:    'a', 0x1F: 's', 0x20: 'd', 0x21: 'f', 0x22: 'g',
	0x23: 'h', 0x24: 'j', 0x25: 'k', 0x26: 'l',
	0x27: ';', 0x28: '\'', 0x29: '`',
	0x2B: '\\',
	0x2C: 'z', 0x2D: 'x', 0x2E: 'c', 0x2F: 'v', 0x30: 'b',
	0x31: 'n', 0x32: 'm',
	0x33: ',', 0x34: '.', 0x35: '/',
	scSpace: ' ',
}

// bytePorts abstracts raw byte-wide port I/O so tests can substitute an
// in-memory fake instead of talking to real hardware. Mirrors the seam
// package pic uses for the same reason.
type bytePorts interface {
	Read() uint8
}

type hwDataPort struct{}

func (hwDataPort) Read() uint8 {
	return port.New[uint8](dataPort).Read()
}

var dataIO bytePorts = hwDataPort{}

// buffer is a fixed-capacity ring populated by the IRQ1 handler and drained
// by ReadByte/Wait. It is only ever written from interrupt context and read
// from task context, so no lock is needed beyond disabling interrupts around
// the shared head/tail update.
var buffer struct {
	data       [bufferSize]byte
	head, tail int
	count      int
}

func push(b byte) {
	if buffer.count == bufferSize {
		return
	}
	buffer.data[buffer.tail] = b
	buffer.tail = (buffer.tail + 1) % bufferSize
	buffer.count++
}

func pop() (byte, bool) {
	if buffer.count == 0 {
		return 0, false
	}
	b := buffer.data[buffer.head]
	buffer.head = (buffer.head + 1) % bufferSize
	buffer.count--
	return b, true
}

// Init installs the IRQ1 handler and unmasks the keyboard line. Callers
// must have already run idt.Init and pic.Init.
func Init() {
	idt.RegisterInterrupt(irqVector, handleIRQ)
	pic.Unmask(irqVector)
}

func handleIRQ(vector uint8, errorCode uint64, frame *idt.Frame) {
	sc := dataIO.Read()

	if sc&keyReleasedBit == 0 {
		if ch := scancodeToASCII[sc]; ch != 0 {
			push(ch)
		}
	}

	pic.EOI(vector)
}

// disableInterruptsFn and enableInterruptsFn are variables so tests can
// replace the privileged CLI/STI instructions with no-ops.
var (
	disableInterruptsFn = cpu.DisableInterrupts
	enableInterruptsFn  = cpu.EnableInterrupts
)

// ReadByte returns the next buffered key, or false if none is available.
func ReadByte() (byte, bool) {
	disableInterruptsFn()
	b, ok := pop()
	enableInterruptsFn()
	return b, ok
}

// Wait blocks, halting the CPU between interrupts, until a key is available
// and returns it.
func Wait() byte {
	for {
		if b, ok := ReadByte(); ok {
			return b
		}
		cpu.Halt()
	}
}
