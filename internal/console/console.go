// Package console wires the CPU, PPU, APU, buses, cartridge, and
// controller pair into a single NTSC-timed machine and drives the
// 3 PPU ticks : 1 CPU tick : 1 APU tick schedule per CPU cycle.
package console

import (
	"image/color"
	"io"

	"nesgo/internal/apu"
	"nesgo/internal/cartridge"
	"nesgo/internal/cpu"
	"nesgo/internal/input"
	"nesgo/internal/memory"
	"nesgo/internal/ppu"
)

// cartridgePort is the subset of *cartridge.Cartridge the console needs;
// expressed as an interface so tests can substitute a fake without
// building a real iNES image.
type cartridgePort interface {
	memory.CartridgePort
	memory.PatternPort
	memory.MirrorSource
	HasBatteryRAM() bool
	PRGRAM() []uint8
}

// Console owns one complete NES: the three processing units, the two
// address buses, the controller pair, and whatever cartridge is loaded.
type Console struct {
	CPU        *cpu.CPU
	PPU        *ppu.PPU
	APU        *apu.APU
	Bus        *memory.Bus
	PictureBus *memory.PictureBus
	Input      *input.Pair

	cart cartridgePort

	frameDone bool
	frameBuf  [256 * 240]color.RGBA
}

// New constructs a console with no cartridge loaded. Call LoadROM before
// RunFrame.
func New() *Console {
	c := &Console{
		Bus:        memory.New(),
		PictureBus: memory.NewPictureBus(),
		Input:      input.NewPair(),
	}
	c.PPU = ppu.New(c.PictureBus)
	c.APU = apu.New(c.Bus)
	c.CPU = cpu.New(c.Bus)

	c.Bus.PPU = c.PPU
	c.Bus.APU = c.APU
	c.Bus.Input = c.Input
	c.Bus.DMAHook = c.runOAMDMA

	c.PPU.NMI = c.CPU.RaiseNMI
	c.PPU.FrameDone = func() { c.frameDone = true }
	c.PPU.ScanlineEnd = c.tickMapperScanline
	c.APU.FrameIRQ = c.CPU.RaiseIRQ
	c.APU.DMCIRQ = c.CPU.RaiseIRQ

	return c
}

// LoadROM parses an iNES image and wires it onto both buses. The
// returned error is non-nil for a parse failure (cartridge left
// unloaded) or, per cartridge.Load, ErrUnsupportedMapper (cartridge is
// still wired with its NROM fallback so a caller that tolerates the
// degraded mapper can keep going).
func (c *Console) LoadROM(r io.Reader) error {
	cart, err := cartridge.Load(r)
	if cart == nil {
		return err
	}
	c.cart = cart
	c.Bus.Cart = cart
	c.PictureBus.Pattern = cart
	c.PictureBus.Mirror = cart
	c.Reset()
	return err
}

// Reset performs a soft reset: CPU registers and PC reload from the
// reset vector, PPU and APU return to power-up state, controllers clear.
func (c *Console) Reset() {
	c.CPU.Reset()
	c.PPU.Reset()
	c.APU.Reset()
	c.Input.Reset()
	c.frameDone = false
}

// BatteryRAM reports the cartridge's 8 KiB PRG-RAM for host-side
// persistence, when the loaded mapper declares battery backing.
func (c *Console) BatteryRAM() ([]uint8, bool) {
	if c.cart == nil || !c.cart.HasBatteryRAM() {
		return nil, false
	}
	return c.cart.PRGRAM(), true
}

// SetButton updates one button on the given 1-based controller port.
func (c *Console) SetButton(port int, button input.Button, pressed bool) {
	c.Input.SetButton(port, button, pressed)
}

// RunFrame advances the machine until the PPU completes a frame buffer
// and returns it. A frame is ~29780 CPU cycles (~29781 on an odd frame
// with rendering disabled, one fewer when the pre-render dot-skip
// applies) — that variation is an emergent property of the PPU's own
// timing, not something this loop tracks directly.
func (c *Console) RunFrame() *[256 * 240]color.RGBA {
	c.frameDone = false
	for !c.frameDone {
		c.step()
	}
	raw := c.PPU.Frame()
	for i, px := range raw {
		c.frameBuf[i] = color.RGBA{
			R: uint8(px >> 16),
			G: uint8(px >> 8),
			B: uint8(px),
			A: 0xFF,
		}
	}
	return &c.frameBuf
}

// AudioDrain drains and returns the APU's accumulated samples as signed
// 16-bit PCM.
func (c *Console) AudioDrain() []int16 {
	samples := c.APU.Samples()
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = int16(s * 32767)
	}
	return out
}

// step advances the machine by one CPU instruction (or stall/interrupt
// cycle) and catches the PPU and APU up by the cycles it consumed, at a
// fixed 3:1:1 ratio.
func (c *Console) step() {
	cycles := c.CPU.Step()
	for i := uint64(0); i < cycles; i++ {
		c.PPU.Step()
		c.PPU.Step()
		c.PPU.Step()
		c.APU.Step()
	}
}

// runOAMDMA services a $4014 write: copies the named page into OAM 256
// bytes at a time and stalls the CPU for the DMA's duration.
func (c *Console) runOAMDMA(page uint8) {
	data := c.Bus.Page(page)
	for _, b := range data {
		c.PPU.WriteOAMByte(b)
	}
	c.CPU.StallForDMA(c.CPU.Cycles%2 != 0)
}

// tickMapperScanline is wired to the PPU's once-per-visible-scanline
// hook; it advances the cartridge's scanline IRQ counter (MMC3 and
// similar mappers) and latches a CPU IRQ when it fires.
func (c *Console) tickMapperScanline() {
	if c.cart == nil {
		return
	}
	ticker, ok := c.cart.(cartridge.ScanlineTicker)
	if !ok {
		// A real *cartridge.Cartridge exposes its mapper's hook through
		// a ScanlineTicker() accessor rather than implementing it itself.
		provider, isProvider := c.cart.(interface {
			ScanlineTicker() (cartridge.ScanlineTicker, bool)
		})
		if !isProvider {
			return
		}
		if ticker, ok = provider.ScanlineTicker(); !ok {
			return
		}
	}
	ticker.TickScanline()
	if ticker.IRQPending() {
		c.CPU.RaiseIRQ()
		ticker.ClearIRQ()
	}
}
