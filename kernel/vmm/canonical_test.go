package vmm

import "testing"

func TestCanonicalize(t *testing.T) {
	specs := []struct {
		in, exp uint64
	}{
		{0x0000_7FFF_FFFF_F000, 0x0000_7FFF_FFFF_F000},
		{0x0000_8000_0000_0000, 0xFFFF_8000_0000_0000},
	}

	for specIndex, spec := range specs {
		if got := Canonicalize(spec.in); got != spec.exp {
			t.Errorf("[spec %d] Canonicalize(0x%x) = 0x%x; want 0x%x", specIndex, spec.in, got, spec.exp)
		}
	}
}

func TestIsCanonical(t *testing.T) {
	specs := []struct {
		addr uint64
		exp  bool
	}{
		{0x0000_7FFF_FFFF_F000, true},
		{0x0000_8000_0000_0000, false},
		{0xFFFF_8000_0000_0000, true},
		{0xFFFF_FFFF_FFFF_F000, true},
	}

	for specIndex, spec := range specs {
		if got := IsCanonical(spec.addr); got != spec.exp {
			t.Errorf("[spec %d] IsCanonical(0x%x) = %v; want %v", specIndex, spec.addr, got, spec.exp)
		}
	}
}
