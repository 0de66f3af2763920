package console

// SetCRTCPortsForTesting installs fake in place of the real CRTC I/O ports
// so tests exercising cursor control never execute privileged IN/OUT
// instructions. It returns a function that restores the previous ports.
func SetCRTCPortsForTesting(fake interface {
	Read(number uint16) uint8
	Write(number uint16, value uint8)
}) (restore func()) {
	saved := crtcIO
	crtcIO = fake
	return func() { crtcIO = saved }
}
