package console

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/mkaput/kernel/kernel/port"
)

const (
	clearColor = Black
	clearChar  = byte(' ')
)

// CRTC (6845) index/data ports and the undocumented 0x3E0 port some real
// hardware and QEMU expose as an alias of the data port when reading back
// the cursor end-scan-line register. This is a deliberate, bit-exact quirk
// carried over rather than normalized to 0x3D5.
const (
	crtcCmdPort  = 0x3D4
	crtcDataPort = 0x3D5
	crtcWatPort  = 0x3E0

	crtcCursorStart    = 0x0A
	crtcCursorEnd      = 0x0B
	crtcCursorAddrLow  = 0x0F
	crtcCursorAddrHigh = 0x0E

	cursorDisableBit = 0x20
)

// bytePorts abstracts raw byte-wide port I/O so tests can substitute an
// in-memory fake instead of talking to real hardware. Mirrors the seam
// package pic uses for the same reason.
type bytePorts interface {
	Read(number uint16) uint8
	Write(number uint16, value uint8)
}

type hwBytePorts struct{}

func (hwBytePorts) Read(number uint16) uint8 {
	return port.Port[uint8]{Number: number}.Read()
}

func (hwBytePorts) Write(number uint16, value uint8) {
	port.Port[uint8]{Number: number}.Write(value)
}

var crtcIO bytePorts = hwBytePorts{}

// Ega implements an EGA-compatible text console. At the moment, it uses the
// ega console physical address as its outpucons. After implementing a memory
// allocator, each console will use its own framebuffer while the active console
// will periodically sync its internal buffer with the physical screen buffer.
type Ega struct {
	sync.Mutex

	width  uint16
	height uint16

	fb []uint16
}

// Init sets up the console.
func (cons *Ega) Init(width, height uint16, fbPhysAddr uintptr) {
	cons.width = width
	cons.height = height

	cons.fb = *(*[]uint16)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  int(cons.width * cons.height),
		Cap:  int(cons.width * cons.height),
		Data: fbPhysAddr,
	}))
}

// Clear clears the specified rectangular region
func (cons *Ega) Clear(x, y, width, height uint16) {
	var (
		attr                 = uint16((clearColor << 4) | clearColor)
		clr                  = attr | uint16(clearChar)
		rowOffset, colOffset uint16
	)

	// clip rectangle
	if x >= cons.width {
		x = cons.width
	}
	if y >= cons.height {
		y = cons.height
	}

	if x+width > cons.width {
		width = cons.width - x
	}
	if y+height > cons.height {
		height = cons.height - y
	}

	rowOffset = (y * cons.width) + x
	for ; height > 0; height, rowOffset = height-1, rowOffset+cons.width {
		for colOffset = rowOffset; colOffset < rowOffset+width; colOffset++ {
			cons.fb[colOffset] = clr
		}
	}
}

// Dimensions returns the console width and height in characters.
func (cons *Ega) Dimensions() (uint16, uint16) {
	return cons.width, cons.height
}

// Scroll a particular number of lines to the specified direction.
func (cons *Ega) Scroll(dir ScrollDir, lines uint16) {
	if lines == 0 || lines > cons.height {
		return
	}

	var i uint16
	offset := lines * cons.width

	switch dir {
	case Up:
		for ; i < (cons.height-lines)*cons.width; i++ {
			cons.fb[i] = cons.fb[i+offset]
		}
	case Down:
		for i = cons.height*cons.width - 1; i >= lines*cons.width; i-- {
			cons.fb[i] = cons.fb[i-offset]
		}
	}
}

// Write a char to the specified location.
func (cons *Ega) Write(ch byte, attr Attr, x, y uint16) {
	if x >= cons.width || y >= cons.height {
		return
	}

	cons.fb[(y*cons.width)+x] = (uint16(attr) << 8) | uint16(ch)
}

// EnableCursor turns on the hardware text cursor and sets its scan-line
// range to a thin underline. The end-scan-line value is read back from the
// undocumented 0x3E0 port rather than the data port (0x3D5): real 6845
// clones and QEMU alike answer reads of the current CRTC register on
// either port, and the original driver this is ported from relies on that.
func (cons *Ega) EnableCursor() {
	crtcIO.Write(crtcCmdPort, crtcCursorStart)
	crtcIO.Write(crtcDataPort, (crtcIO.Read(crtcDataPort)&0xC0)|14)

	crtcIO.Write(crtcCmdPort, crtcCursorEnd)
	crtcIO.Write(crtcDataPort, (crtcIO.Read(crtcWatPort)&0xE0)|15)

	cons.SetCursor(0, 0)
}

// DisableCursor turns off the hardware text cursor.
func (cons *Ega) DisableCursor() {
	crtcIO.Write(crtcCmdPort, crtcCursorStart)
	crtcIO.Write(crtcDataPort, cursorDisableBit)
}

// SetCursor moves the hardware text cursor to (x, y).
func (cons *Ega) SetCursor(x, y uint16) {
	pos := y*cons.width + x

	crtcIO.Write(crtcCmdPort, crtcCursorAddrLow)
	crtcIO.Write(crtcDataPort, uint8(pos&0xFF))

	crtcIO.Write(crtcCmdPort, crtcCursorAddrHigh)
	crtcIO.Write(crtcDataPort, uint8((pos>>8)&0xFF))
}
