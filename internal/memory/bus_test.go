package memory

import "testing"

type stubPPU struct {
	regs [8]uint8
}

func (s *stubPPU) ReadRegister(addr uint16) uint8          { return s.regs[addr&7] }
func (s *stubPPU) WriteRegister(addr uint16, value uint8)  { s.regs[addr&7] = value }
func (s *stubPPU) WriteOAMByte(value uint8)                {}

type stubAPU struct {
	last   uint16
	status uint8
}

func (s *stubAPU) WriteRegister(addr uint16, value uint8) { s.last = addr }
func (s *stubAPU) ReadStatus() uint8                      { return s.status }

type stubInput struct{ written uint8 }

func (s *stubInput) Read(addr uint16) uint8         { return 0x40 }
func (s *stubInput) Write(addr uint16, value uint8) { s.written = value }

type stubCart struct{ mem [0xA000]uint8 }

func (s *stubCart) ReadPRG(addr uint16) uint8 {
	if addr < 0x6000 {
		return 0
	}
	return s.mem[addr-0x6000]
}
func (s *stubCart) WritePRG(addr uint16, value uint8) {
	if addr >= 0x6000 {
		s.mem[addr-0x6000] = value
	}
}

func newTestBus() (*Bus, *stubPPU, *stubAPU, *stubInput, *stubCart) {
	b := New()
	ppu, apu, in, cart := &stubPPU{}, &stubAPU{}, &stubInput{}, &stubCart{}
	b.PPU, b.APU, b.Input, b.Cart = ppu, apu, in, cart
	return b, ppu, apu, in, cart
}

func TestRAMMirroring(t *testing.T) {
	b, _, _, _, _ := newTestBus()
	b.Write(0x0000, 0x42)
	for _, mirror := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		if got := b.Read(mirror); got != 0x42 {
			t.Fatalf("RAM mirror at %#x: got %#x want 0x42", mirror, got)
		}
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	b, ppu, _, _, _ := newTestBus()
	b.Write(0x2000, 0x11)
	if ppu.regs[0] != 0x11 {
		t.Fatalf("expected write to reach PPU register 0")
	}
	b.Write(0x2008, 0x22) // mirrors $2000
	if ppu.regs[0] != 0x22 {
		t.Fatalf("expected $2008 to mirror $2000")
	}
}

func TestOAMDMATriggersHook(t *testing.T) {
	b, _, _, _, _ := newTestBus()
	var got uint8
	b.DMAHook = func(page uint8) { got = page }
	b.Write(0x4014, 0x07)
	if got != 0x07 {
		t.Fatalf("expected DMA hook called with page 0x07, got %#x", got)
	}
}

func TestControllerStrobeRouting(t *testing.T) {
	b, _, _, in, _ := newTestBus()
	b.Write(0x4016, 1)
	if in.written != 1 {
		t.Fatalf("expected controller strobe write to route through")
	}
	if b.Read(0x4016) != 0x40 {
		t.Fatalf("expected controller read to route through")
	}
}

func TestCartridgePRGRAMWindow(t *testing.T) {
	b, _, _, _, _ := newTestBus()
	b.Write(0x6000, 0x99)
	if b.Read(0x6000) != 0x99 {
		t.Fatalf("expected PRG-RAM round trip through cartridge")
	}
}

func TestOpenBusOnUnmappedExpansion(t *testing.T) {
	b, _, _, _, _ := newTestBus()
	b.Write(0x0000, 0x77) // leaves 0x77 on the bus via the RAM read below
	b.Read(0x0000)
	if got := b.Read(0x4020); got != 0 {
		t.Fatalf("expected the unmapped expansion area to read as 0, got %#x", got)
	}
}
