package ppu

// Step advances the PPU by one dot. VBlank's NMI edge is reported
// through the NMI callback, not through a return value.
func (p *PPU) Step() {
	p.tick()
}

func (p *PPU) tick() {
	switch {
	case p.scanline == preRenderScanline:
		p.preRenderDot()
	case p.scanline < postRenderScanline:
		p.visibleDot()
	case p.scanline == postRenderScanline:
		// Idle; frame buffer is complete and was already published at
		// the end of the last visible scanline.
	case p.scanline == vblankStartScanline && p.dot == 1:
		p.status |= statusVBlank
		if p.ctrl&ctrlNMIEnable != 0 && p.NMI != nil {
			p.NMI()
		}
	}

	p.advanceDot()
}

func (p *PPU) advanceDot() {
	p.dot++
	if p.scanline == preRenderScanline && p.dot == 340 && p.oddFrame && p.renderingEnabled() {
		p.dot++ // skip the last dot of an odd-frame pre-render scanline
	}
	if p.dot >= dotsPerScanline {
		p.dot = 0
		p.scanline++
		if p.scanline == postRenderScanline && p.FrameDone != nil {
			p.FrameDone()
		}
		if p.scanline >= scanlinesPerFrame {
			p.scanline = 0
			p.oddFrame = !p.oddFrame
		}
	}
}

func (p *PPU) preRenderDot() {
	if p.dot == 1 {
		p.status &^= statusVBlank | statusSprite0 | statusOverflow
	}
	if p.renderingEnabled() {
		if p.fetchesAt(p.dot) {
			p.shiftBackgroundRegisters()
			p.backgroundFetch()
		}
		if p.dot >= 280 && p.dot <= 304 {
			p.copyVertical()
		}
		if p.dot == 256 {
			p.incrementY()
		}
		if p.dot == 257 {
			p.copyHorizontal()
			p.evaluateSprites() // prepares scanline 0, pipelined one line ahead
		}
	}
}

func (p *PPU) visibleDot() {
	if p.dot >= 1 && p.dot <= 256 {
		if p.renderingEnabled() {
			p.renderPixel()
			p.shiftBackgroundRegisters()
			p.backgroundFetch()
		} else {
			p.frame[p.scanline*256+(p.dot-1)] = hardwarePalette[p.paletteEntry(0)&0x3F]
		}
		if p.dot == 256 && p.renderingEnabled() {
			p.incrementY()
		}
	}
	if p.dot >= 321 && p.dot <= 336 && p.renderingEnabled() {
		p.shiftBackgroundRegisters()
		p.backgroundFetch()
	}
	if p.dot == 257 {
		if p.renderingEnabled() {
			p.copyHorizontal()
		}
		p.evaluateSprites()
	}
	if p.dot == 260 && p.renderingEnabled() && p.ScanlineEnd != nil {
		p.ScanlineEnd()
	}
}

// fetchesAt reports whether dot falls in one of the two windows during
// which the background pipeline fetches and shifts: the current
// scanline's own 256 pixels, and the two-tile prefetch for the next
// scanline at the end of the line.
func (p *PPU) fetchesAt(dot int) bool {
	return (dot >= 1 && dot <= 256) || (dot >= 321 && dot <= 336)
}

// backgroundFetch performs the nametable/attribute/pattern fetch and
// shift-register reload for the tile that will be displayed 8-16 dots
// from now, following the PPU's 8-dot fetch cadence.
func (p *PPU) backgroundFetch() {
	if p.dot == 0 {
		return
	}
	switch p.dot % 8 {
	case 1:
		ntAddr := 0x2000 | (p.v & 0x0FFF)
		p.ntLatch = p.Bus.Read(ntAddr)
	case 3:
		atAddr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
		shift := ((p.v >> 4) & 4) | (p.v & 2)
		p.atLatch = (p.Bus.Read(atAddr) >> shift) & 0x03
	case 5:
		base := uint16(0)
		if p.ctrl&ctrlBGPattern != 0 {
			base = 0x1000
		}
		fineY := (p.v >> 12) & 0x07
		p.patLoLatch = p.Bus.Read(base + uint16(p.ntLatch)*16 + fineY)
	case 7:
		base := uint16(0)
		if p.ctrl&ctrlBGPattern != 0 {
			base = 0x1000
		}
		fineY := (p.v >> 12) & 0x07
		p.patHiLatch = p.Bus.Read(base + uint16(p.ntLatch)*16 + fineY + 8)
	case 0:
		p.reloadShiftRegisters()
		p.incrementX()
	}
}

// shiftBackgroundRegisters advances the pattern and attribute shift
// registers by one bit, exposing the next pixel at bit 15-fineX.
func (p *PPU) shiftBackgroundRegisters() {
	p.bgPatLo <<= 1
	p.bgPatHi <<= 1
	p.bgAttrLo <<= 1
	p.bgAttrHi <<= 1
}

func (p *PPU) reloadShiftRegisters() {
	p.bgPatLo = (p.bgPatLo &^ 0x00FF) | uint16(p.patLoLatch)
	p.bgPatHi = (p.bgPatHi &^ 0x00FF) | uint16(p.patHiLatch)
	var attrLo, attrHi uint16
	if p.atLatch&0x01 != 0 {
		attrLo = 0x00FF
	}
	if p.atLatch&0x02 != 0 {
		attrHi = 0x00FF
	}
	p.bgAttrLo = (p.bgAttrLo &^ 0x00FF) | attrLo
	p.bgAttrHi = (p.bgAttrHi &^ 0x00FF) | attrHi
}

// renderPixel composites the background shifters with the prepared
// sprite list at the current dot.
func (p *PPU) renderPixel() {
	x := p.dot - 1
	bgIndex := p.backgroundIndexAt(x)
	spriteIndex, spriteIsZero, spritePriorityBehind, spriteFound := p.spriteIndexAt(x)

	bgOpaque := bgIndex&0x03 != 0
	spOpaque := spriteFound && spriteIndex&0x03 != 0

	if spOpaque && bgOpaque && spriteIsZero && x != 255 &&
		!(p.mask&maskShowBGLeft == 0 && x < 8) &&
		!(p.mask&maskShowSpriteLeft == 0 && x < 8) {
		p.status |= statusSprite0
	}

	var final uint8
	switch {
	case !spOpaque && !bgOpaque:
		final = p.paletteEntry(0)
	case !spOpaque:
		final = p.paletteEntry(bgIndex)
	case !bgOpaque:
		final = p.paletteEntry(spriteIndex)
	case spritePriorityBehind:
		final = p.paletteEntry(bgIndex)
	default:
		final = p.paletteEntry(spriteIndex)
	}

	p.frame[p.scanline*256+x] = hardwarePalette[final&0x3F]
}

// backgroundIndexAt returns the 4-bit (palette*4 + colorIndex) value
// for screen column x, honoring the left-edge hide mask and fine-X.
func (p *PPU) backgroundIndexAt(x int) uint8 {
	if p.mask&maskShowBG == 0 {
		return 0
	}
	if p.mask&maskShowBGLeft == 0 && x < 8 {
		return 0
	}
	shift := uint(15 - p.x)
	lo := uint8((p.bgPatLo >> shift) & 1)
	hi := uint8((p.bgPatHi >> shift) & 1)
	colorIndex := (hi << 1) | lo
	aLo := uint8((p.bgAttrLo >> shift) & 1)
	aHi := uint8((p.bgAttrHi >> shift) & 1)
	attr := (aHi << 1) | aLo
	return (attr << 2) | colorIndex
}

// spriteIndexAt returns the first matching sprite's palette index (16
// + palette*4 + colorIndex), whether it is sprite 0, and whether its
// priority bit places it behind the background.
func (p *PPU) spriteIndexAt(x int) (index uint8, isZero bool, behind bool, found bool) {
	if p.mask&maskShowSprites == 0 {
		return 0, false, false, false
	}
	if p.mask&maskShowSpriteLeft == 0 && x < 8 {
		return 0, false, false, false
	}
	for i := 0; i < p.spriteCount; i++ {
		s := &p.sprites[i]
		col := x - int(s.x)
		if col < 0 || col > 7 {
			continue
		}
		lo := (s.patternLo >> uint(7-col)) & 1
		hi := (s.patternHi >> uint(7-col)) & 1
		colorIndex := (hi << 1) | lo
		if colorIndex == 0 {
			continue // transparent; a later lower-priority sprite might still show
		}
		return 16 | (s.paletteIdx << 2) | colorIndex, s.isZero, s.priority, true
	}
	return 0, false, false, false
}

func (p *PPU) paletteEntry(index uint8) uint8 {
	addr := 0x3F00 + uint16(index)
	if index&0x03 == 0 {
		addr = 0x3F00
	}
	return p.Bus.Read(addr) & 0x3F
}

func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	coarseY := (p.v & 0x03E0) >> 5
	switch coarseY {
	case 29:
		coarseY = 0
		p.v ^= 0x0800
	case 31:
		coarseY = 0
	default:
		coarseY++
	}
	p.v = (p.v &^ 0x03E0) | (coarseY << 5)
}

func (p *PPU) copyHorizontal() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) copyVertical() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

// evaluateSprites scans primary OAM for up to 8 sprites intersecting
// the NEXT scanline, setting the overflow flag if more than 8 match.
// Called from the pre-render scanline this prepares line 0, since
// evaluation is pipelined one scanline ahead of what it's fetched for.
func (p *PPU) evaluateSprites() {
	height := 8
	if p.ctrl&ctrlSpriteSize16 != 0 {
		height = 16
	}
	target := p.scanline + 1
	if p.scanline == preRenderScanline {
		target = 0
	}

	p.spriteCount = 0
	for i := 0; i < 64 && p.spriteCount < 8; i++ {
		y := int(p.oam[i*4+0])
		row := target - y - 1
		if row < 0 || row >= height {
			continue
		}
		tile := p.oam[i*4+1]
		attr := p.oam[i*4+2]
		x := p.oam[i*4+3]
		flipV := attr&0x80 != 0
		flipH := attr&0x40 != 0
		behind := attr&0x20 != 0
		paletteIdx := attr & 0x03

		if flipV {
			row = height - 1 - row
		}

		var base uint16
		var patternIndex int
		if height == 16 {
			base = uint16(tile&0x01) * 0x1000
			patternIndex = int(tile &^ 0x01)
			if row >= 8 {
				patternIndex++
				row -= 8
			}
		} else {
			base = 0
			if p.ctrl&ctrlSpritePattern != 0 {
				base = 0x1000
			}
			patternIndex = int(tile)
		}

		lo := p.Bus.Read(base + uint16(patternIndex)*16 + uint16(row))
		hi := p.Bus.Read(base + uint16(patternIndex)*16 + uint16(row) + 8)
		if flipH {
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}

		p.sprites[p.spriteCount] = sprite{
			x:          x,
			patternLo:  lo,
			patternHi:  hi,
			paletteIdx: paletteIdx,
			priority:   behind,
			isZero:     i == 0,
		}
		p.spriteCount++
	}

	if p.spriteCount == 8 {
		for i := p.spriteCount; i < 64; i++ {
			y := int(p.oam[i*4+0])
			row := target - y - 1
			if row >= 0 && row < height {
				p.status |= statusOverflow
				break
			}
		}
	}
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}
