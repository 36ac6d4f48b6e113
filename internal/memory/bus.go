// Package memory implements the CPU bus and the PPU's picture bus:
// address decoding, mirroring, and the register windows that route
// CPU reads and writes to the PPU, APU, controllers, and cartridge.
package memory

// PPUPort is the subset of PPU behavior the CPU bus dispatches
// $2000-$3FFF register reads/writes to.
type PPUPort interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
	WriteOAMByte(value uint8) // used by OAM DMA; writes at OAMADDR and advances it, like $2004
}

// APUPort is the subset of APU behavior the CPU bus dispatches to.
type APUPort interface {
	WriteRegister(addr uint16, value uint8)
	ReadStatus() uint8
}

// InputPort is the controller pair's CPU-visible register interface.
type InputPort interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// CartridgePort is the subset of cartridge behavior the CPU bus reaches
// for addresses $6000 and up.
type CartridgePort interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, value uint8)
}

// Bus is the 64 KiB CPU address space dispatcher: 2 KiB of RAM
// mirrored to $1FFF, the PPU register window, the APU/IO window, and
// cartridge space. DMA is triggered through a callback so that the
// owning console can apply CPU stall cycles.
type Bus struct {
	RAM [0x0800]uint8

	PPU   PPUPort
	APU   APUPort
	Input InputPort
	Cart  CartridgePort

	// DMAHook is invoked with the page byte written to $4014; the
	// console wires this to copy 256 bytes into OAM and to stall the CPU.
	DMAHook func(page uint8)

	openBus uint8
}

// New constructs a Bus; PPU/APU/Input/Cart are wired in after
// construction since they, in turn, need a reference back to this bus
// or to the console for callbacks (NMI, DMA, IRQ).
func New() *Bus {
	return &Bus{}
}

// Read performs a CPU bus read, dispatching by address range.
func (b *Bus) Read(addr uint16) uint8 {
	var value uint8
	switch {
	case addr < 0x2000:
		value = b.RAM[addr&0x07FF]
	case addr < 0x4000:
		value = b.PPU.ReadRegister(0x2000 | (addr & 0x0007))
	case addr == 0x4015:
		value = b.APU.ReadStatus()
	case addr == 0x4016, addr == 0x4017:
		if b.Input != nil {
			value = b.Input.Read(addr)
		} else {
			value = b.openBus
		}
	case addr < 0x4018:
		value = b.openBus // write-only APU registers: open bus
	case addr < 0x6000:
		value = 0 // unmapped expansion area reads as 0
	default:
		if b.Cart != nil {
			value = b.Cart.ReadPRG(addr)
		} else {
			value = b.openBus
		}
	}
	b.openBus = value
	return value
}

// Write performs a CPU bus write, dispatching by address range.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		b.RAM[addr&0x07FF] = value
	case addr < 0x4000:
		b.PPU.WriteRegister(0x2000|(addr&0x0007), value)
	case addr == 0x4014:
		if b.DMAHook != nil {
			b.DMAHook(value)
		}
	case addr == 0x4016:
		if b.Input != nil {
			b.Input.Write(addr, value)
		}
	case addr <= 0x4013, addr == 0x4015, addr == 0x4017:
		b.APU.WriteRegister(addr, value)
	case addr < 0x6000:
		// $4018-$5FFF: open bus / expansion, writes ignored.
	default:
		if b.Cart != nil {
			b.Cart.WritePRG(addr, value)
		}
	}
}

// Page returns a 256-byte snapshot of the page used as the source of
// OAM DMA: CPU RAM for pages $00-$1F (mirrored) and PRG-RAM/PRG-ROM
// for cartridge-mapped pages.
func (b *Bus) Page(page uint8) [256]uint8 {
	var out [256]uint8
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		out[i] = b.Read(base + uint16(i))
	}
	return out
}
