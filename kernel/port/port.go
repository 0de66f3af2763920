// Package port provides typed wrappers over the x86 in/out instruction
// family for talking to memory-mapped-I/O-free hardware such as the 8259
// PIC, the PS/2 controller and the VGA CRTC registers.
package port

// Value is satisfied by the integer widths the in/out instructions support.
type Value interface {
	~uint8 | ~uint16 | ~uint32
}

// Port is a typed, safe-by-convention wrapper around a single I/O port
// number. T pins the transfer width (8, 16 or 32 bits) at compile time.
type Port[T Value] struct {
	Number uint16
}

// New returns a Port bound to the given port number.
func New[T Value](number uint16) Port[T] {
	return Port[T]{Number: number}
}

// Read reads a value of width T from the port.
func (p Port[T]) Read() T {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return T(inb(p.Number))
	case uint16:
		return T(inw(p.Number))
	case uint32:
		return T(inl(p.Number))
	default:
		panic("port: unsupported width")
	}
}

// Write writes a value of width T to the port.
func (p Port[T]) Write(value T) {
	switch v := any(value).(type) {
	case uint8:
		outb(p.Number, v)
	case uint16:
		outw(p.Number, v)
	case uint32:
		outl(p.Number, v)
	default:
		panic("port: unsupported width")
	}
}

// UnsafePort is identical to Port but documents, at the call site, that the
// caller is bypassing the usual device-driver ownership discipline (e.g.
// probing hardware before its driver has been installed).
type UnsafePort[T Value] struct {
	Number uint16
}

// Read reads a value of width T from the port.
func (p UnsafePort[T]) Read() T {
	return Port[T]{Number: p.Number}.Read()
}

// Write writes a value of width T to the port.
func (p UnsafePort[T]) Write(value T) {
	Port[T]{Number: p.Number}.Write(value)
}
