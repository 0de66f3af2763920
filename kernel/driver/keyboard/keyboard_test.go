package keyboard

import (
	"testing"

	"github.com/mkaput/kernel/kernel/pic"
)

type fakeDataPort struct {
	scancodes []uint8
	pos       int
}

func (f *fakeDataPort) Read() uint8 {
	if f.pos >= len(f.scancodes) {
		return 0
	}
	sc := f.scancodes[f.pos]
	f.pos++
	return sc
}

type fakePICPorts struct {
	state map[uint16]uint8
}

func (f *fakePICPorts) Read(number uint16) uint8 {
	return f.state[number]
}

func (f *fakePICPorts) Write(number uint16, value uint8) {
	f.state[number] = value
}

func withFakePIC(t *testing.T) {
	restore := pic.SetPortsForTesting(&fakePICPorts{state: make(map[uint16]uint8)})
	t.Cleanup(restore)
}

func TestHandleIRQTranslatesMakeCodes(t *testing.T) {
	withFakePIC(t)
	fake := &fakeDataPort{scancodes: []uint8{0x1E, 0x1F, scEnter}}
	restore := SetDataPortForTesting(fake)
	defer restore()

	for range fake.scancodes {
		handleIRQ(irqVector, 0, nil)
	}

	want := []byte{'a', 's', '\n'}
	for _, exp := range want {
		got, ok := ReadByte()
		if !ok {
			t.Fatalf("expected a buffered byte, got none")
		}
		if got != exp {
			t.Errorf("expected %q; got %q", exp, got)
		}
	}

	if _, ok := ReadByte(); ok {
		t.Errorf("expected buffer to be empty")
	}
}

func TestHandleIRQIgnoresBreakCodes(t *testing.T) {
	withFakePIC(t)
	fake := &fakeDataPort{scancodes: []uint8{0x1E, 0x1E | keyReleasedBit}}
	restore := SetDataPortForTesting(fake)
	defer restore()

	handleIRQ(irqVector, 0, nil)
	handleIRQ(irqVector, 0, nil)

	got, ok := ReadByte()
	if !ok || got != 'a' {
		t.Fatalf("expected a single buffered 'a'; got %q, ok=%v", got, ok)
	}
	if _, ok := ReadByte(); ok {
		t.Errorf("expected no second byte from the break code")
	}
}

func TestBufferDropsWhenFull(t *testing.T) {
	scancodes := make([]uint8, bufferSize+10)
	for i := range scancodes {
		scancodes[i] = 0x1E
	}
	withFakePIC(t)
	fake := &fakeDataPort{scancodes: scancodes}
	restore := SetDataPortForTesting(fake)
	defer restore()

	for range scancodes {
		handleIRQ(irqVector, 0, nil)
	}

	count := 0
	for {
		if _, ok := ReadByte(); !ok {
			break
		}
		count++
	}
	if count != bufferSize {
		t.Errorf("expected buffer to cap at %d entries; got %d", bufferSize, count)
	}
}
