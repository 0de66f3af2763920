package pic

// SetPortsForTesting installs fake in place of the real 8259 command/data
// ports so tests in other packages that exercise code paths ending in
// EOI/Mask/Unmask never execute privileged IN/OUT instructions. It returns
// a function that restores the previous ports.
func SetPortsForTesting(fake interface {
	Read(number uint16) uint8
	Write(number uint16, value uint8)
}) (restore func()) {
	saved := io
	io = fake
	return func() { io = saved }
}
