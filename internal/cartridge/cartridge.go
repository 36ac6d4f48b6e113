// Package cartridge implements iNES ROM loading and the mapper family
// that intermediates between the CPU/picture buses and cartridge memory.
package cartridge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Mirror is the nametable mirroring policy reported by a cartridge or,
// for mapper 1/7, switched at runtime by the mapper itself.
type Mirror uint8

const (
	MirrorHorizontal Mirror = iota
	MirrorVertical
	MirrorSingleLow
	MirrorSingleHigh
	MirrorFourScreen
)

var (
	// ErrBadHeader is returned when the iNES signature is missing or the
	// file is shorter than a header.
	ErrBadHeader = errors.New("cartridge: bad iNES header")
	// ErrTruncatedROM is returned when the header declares more PRG/CHR
	// data than the file actually contains.
	ErrTruncatedROM = errors.New("cartridge: truncated ROM body")
	// ErrUnsupportedMapper is returned when the header names a mapper id
	// outside the supported set. The cartridge is still constructed
	// (with a NROM fallback mapper) so callers can inspect MapperID.
	ErrUnsupportedMapper = errors.New("cartridge: unsupported mapper")
)

const (
	prgBankSize = 16 * 1024
	chrBankSize = 8 * 1024
	trainerSize = 512
	headerSize  = 16
)

// Cartridge owns the immutable PRG/CHR byte arrays decoded from an iNES
// image plus the mapper that interprets them. It is constructed once by
// Load and lives until the host loads a different ROM.
type Cartridge struct {
	PRG []uint8
	CHR []uint8

	MapperID uint8
	Mirror   Mirror

	chrIsRAM   bool
	hasBattery bool
	prgRAM     [0x2000]uint8

	mapper Mapper
}

// Mapper is the four-operation contract every cartridge-side bank
// switcher implements. Read/write PRG covers CPU addresses
// $6000-$FFFF; read/write CHR covers PPU addresses $0000-$1FFF.
type Mapper interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, value uint8)
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
}

// MirrorProvider is implemented by mappers that can change nametable
// mirroring at runtime (MMC1, MMC3, AxROM). CurrentMirror checks for
// this interface on every call, so the picture bus sees a change on its
// next nametable access.
type MirrorProvider interface {
	Mirror() Mirror
}

// ScanlineTicker is implemented only by mappers with a scanline-counted
// IRQ (MMC3). The console calls TickScanline from the PPU's ScanlineEnd
// hook, once per visible scanline at a fixed dot while rendering is
// enabled, and IRQPending reports whether the mapper wants the console
// to latch an IRQ.
type ScanlineTicker interface {
	TickScanline()
	IRQPending() bool
	ClearIRQ()
}

// Load parses an iNES image and constructs the cartridge and its mapper.
// On ErrUnsupportedMapper the cartridge is still usable (NROM fallback);
// all other errors return a nil cartridge.
func Load(r io.Reader) (*Cartridge, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(buf) < headerSize || !bytes.Equal(buf[0:4], []byte{0x4E, 0x45, 0x53, 0x1A}) {
		return nil, ErrBadHeader
	}

	prgUnits := int(buf[4])
	chrUnits := int(buf[5])
	flags6 := buf[6]
	flags7 := buf[7]

	cart := &Cartridge{
		MapperID:   (flags6 >> 4) | (flags7 & 0xF0),
		hasBattery: flags6&0x02 != 0,
	}
	switch {
	case flags6&0x08 != 0:
		cart.Mirror = MirrorFourScreen
	case flags6&0x01 != 0:
		cart.Mirror = MirrorVertical
	default:
		cart.Mirror = MirrorHorizontal
	}

	offset := headerSize
	if flags6&0x04 != 0 {
		offset += trainerSize
	}

	prgSize := prgUnits * prgBankSize
	if prgSize == 0 || offset+prgSize > len(buf) {
		return nil, ErrTruncatedROM
	}
	cart.PRG = append([]uint8(nil), buf[offset:offset+prgSize]...)
	offset += prgSize

	chrSize := chrUnits * chrBankSize
	if chrSize == 0 {
		cart.CHR = make([]uint8, chrBankSize)
		cart.chrIsRAM = true
	} else {
		if offset+chrSize > len(buf) {
			return nil, ErrTruncatedROM
		}
		cart.CHR = append([]uint8(nil), buf[offset:offset+chrSize]...)
	}

	mapper, err := NewMapper(cart.MapperID, cart)
	if err != nil {
		// Unsupported mapper ids are reported but non-fatal: the
		// cartridge still loads, falling back to NROM.
		cart.mapper = NewNROM(cart)
		return cart, fmt.Errorf("%w: id %d", ErrUnsupportedMapper, cart.MapperID)
	}
	cart.mapper = mapper
	return cart, nil
}

func (c *Cartridge) ReadPRG(addr uint16) uint8        { return c.mapper.ReadPRG(addr) }
func (c *Cartridge) WritePRG(addr uint16, value uint8) { c.mapper.WritePRG(addr, value) }
func (c *Cartridge) ReadCHR(addr uint16) uint8        { return c.mapper.ReadCHR(addr) }
func (c *Cartridge) WriteCHR(addr uint16, value uint8) { c.mapper.WriteCHR(addr, value) }

// CurrentMirror returns the cartridge's active mirroring mode, consulting
// the mapper first for mappers that can switch it at runtime.
func (c *Cartridge) CurrentMirror() Mirror {
	if mp, ok := c.mapper.(MirrorProvider); ok {
		return mp.Mirror()
	}
	return c.Mirror
}

// ScanlineTicker exposes the mapper's scanline-IRQ hook, if any.
func (c *Cartridge) ScanlineTicker() (ScanlineTicker, bool) {
	st, ok := c.mapper.(ScanlineTicker)
	return st, ok
}

// HasBatteryRAM reports whether the header's battery-backed PRG-RAM bit
// was set (mappers 0, 1, 4 support persisting this as an 8 KiB blob;
// the actual file I/O is the host's responsibility, not this package's).
func (c *Cartridge) HasBatteryRAM() bool { return c.hasBattery }

// PRGRAM returns the cartridge's 8 KiB of battery-backable PRG-RAM.
func (c *Cartridge) PRGRAM() []uint8 { return c.prgRAM[:] }

// prgBankCount returns the number of 16 KiB PRG banks, never zero.
func (c *Cartridge) prgBankCount() int {
	n := len(c.PRG) / prgBankSize
	if n == 0 {
		return 1
	}
	return n
}

// chrBankCount8k returns the number of 8 KiB CHR banks, never zero.
func (c *Cartridge) chrBankCount8k() int {
	n := len(c.CHR) / chrBankSize
	if n == 0 {
		return 1
	}
	return n
}

// maskBank reduces a bank index modulo the available bank count; every
// mapper must apply this before indexing into PRG or CHR.
func maskBank(index, count int) int {
	if count <= 0 {
		return 0
	}
	return index % count
}
