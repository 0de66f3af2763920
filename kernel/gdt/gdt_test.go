package gdt

import (
	"testing"
	"unsafe"
)

func TestEncodeCodeSegmentSetsLongModeAndExecutable(t *testing.T) {
	desc := encodeCodeSegment()

	access := (desc >> 40) & 0xFF
	flags := (desc >> 52) & 0xF

	if access&codeAccessPresent == 0 {
		t.Fatalf("code segment must be present")
	}
	if access&codeAccessExecutable == 0 {
		t.Fatalf("code segment must be executable")
	}
	if flags&codeFlagsLongMode == 0 {
		t.Fatalf("code segment must set the long-mode flag")
	}
}

func TestEncodeTSSDescriptorRoundTripsAddress(t *testing.T) {
	addr := uint64(0x1234_5678_9ABC)
	low, high := encodeTSSDescriptor(addr)

	got := (low>>16)&0xFFFFFF | ((low>>56)&0xFF)<<24 | high<<32
	if got != addr {
		t.Fatalf("recovered address = %x, want %x", got, addr)
	}

	access := (low >> 40) & 0xFF
	if access&tssAccessPresent == 0 {
		t.Fatalf("TSS descriptor must be present")
	}
}

func TestEncodeTSSDescriptorLimitCoversWholeStruct(t *testing.T) {
	low, _ := encodeTSSDescriptor(0)
	limit := low&0xFFFF | ((low>>48)&0xF)<<16

	want := uint64(unsafe.Sizeof(TaskStateSegment{}) - 1)
	if limit != want {
		t.Fatalf("limit = %x, want %x", limit, want)
	}
}
