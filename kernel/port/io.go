package port

// The low-level in/out primitives are kept behind function-pointer seams so
// that tests can exercise Port/UnsafePort without access to a ring-0 CPU.
var (
	inbFn  = archInb
	inwFn  = archInw
	inlFn  = archInl
	outbFn = archOutb
	outwFn = archOutw
	outlFn = archOutl
)

func inb(p uint16) uint8       { return inbFn(p) }
func inw(p uint16) uint16      { return inwFn(p) }
func inl(p uint16) uint32      { return inlFn(p) }
func outb(p uint16, v uint8)   { outbFn(p, v) }
func outw(p uint16, v uint16)  { outwFn(p, v) }
func outl(p uint16, v uint32)  { outlFn(p, v) }

// archInb, archInw, archInl, archOutb, archOutw and archOutl are implemented
// in port_amd64.s.
func archInb(port uint16) uint8
func archInw(port uint16) uint16
func archInl(port uint16) uint32
func archOutb(port uint16, value uint8)
func archOutw(port uint16, value uint16)
func archOutl(port uint16, value uint32)
