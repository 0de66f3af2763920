package keyboard

// SetDataPortForTesting installs fake in place of the real PS/2 data port
// so tests can drive handleIRQ without executing a privileged IN
// instruction, and replaces the interrupt disable/enable calls made by
// ReadByte with no-ops. It returns a function that restores the previous
// port and interrupt calls and drains the buffer.
func SetDataPortForTesting(fake interface{ Read() uint8 }) (restore func()) {
	saved := dataIO
	savedDisable, savedEnable := disableInterruptsFn, enableInterruptsFn
	dataIO = fake
	disableInterruptsFn, enableInterruptsFn = func() {}, func() {}
	return func() {
		dataIO = saved
		disableInterruptsFn, enableInterruptsFn = savedDisable, savedEnable
		buffer.head, buffer.tail, buffer.count = 0, 0, 0
	}
}
