package cpu

// execute decodes and runs a single instruction, returning its cycle
// cost including any page-cross or branch-taken penalty.
func (c *CPU) execute(opcode uint8) uint64 {
	info := opcodeTable[opcode]
	if info.name == "" {
		c.warnUndefinedOpcode(opcode)
		return 2
	}

	if info.mode == Relative {
		return c.executeBranch(info.name)
	}

	addr, accum, pageCrossed := c.resolveOperand(info.mode)
	cycles := info.cycles
	if info.pageCrossCost && pageCrossed {
		cycles++
	}

	switch info.name {
	case "LDA":
		c.A = c.load(addr, accum)
		c.setZN(c.A)
	case "LDX":
		c.X = c.load(addr, accum)
		c.setZN(c.X)
	case "LDY":
		c.Y = c.load(addr, accum)
		c.setZN(c.Y)
	case "STA":
		c.Bus.Write(addr, c.A)
	case "STX":
		c.Bus.Write(addr, c.X)
	case "STY":
		c.Bus.Write(addr, c.Y)

	case "TAX":
		c.X = c.A
		c.setZN(c.X)
	case "TAY":
		c.Y = c.A
		c.setZN(c.Y)
	case "TXA":
		c.A = c.X
		c.setZN(c.A)
	case "TYA":
		c.A = c.Y
		c.setZN(c.A)
	case "TSX":
		c.X = c.SP
		c.setZN(c.X)
	case "TXS":
		c.SP = c.X

	case "PHA":
		c.push8(c.A)
	case "PHP":
		c.push8(c.packStatus(true))
	case "PLA":
		c.A = c.pull8()
		c.setZN(c.A)
	case "PLP":
		c.unpackStatus(c.pull8())

	case "AND":
		c.A &= c.load(addr, accum)
		c.setZN(c.A)
	case "ORA":
		c.A |= c.load(addr, accum)
		c.setZN(c.A)
	case "EOR":
		c.A ^= c.load(addr, accum)
		c.setZN(c.A)
	case "BIT":
		v := c.load(addr, accum)
		c.Z = (c.A & v) == 0
		c.V = v&flagV != 0
		c.N = v&flagN != 0

	case "ADC":
		c.adc(c.load(addr, accum))
	case "SBC":
		c.adc(^c.load(addr, accum))

	case "CMP":
		c.compare(c.A, c.load(addr, accum))
	case "CPX":
		c.compare(c.X, c.load(addr, accum))
	case "CPY":
		c.compare(c.Y, c.load(addr, accum))

	case "INC":
		v := c.load(addr, accum) + 1
		c.store(addr, accum, v)
		c.setZN(v)
	case "DEC":
		v := c.load(addr, accum) - 1
		c.store(addr, accum, v)
		c.setZN(v)
	case "INX":
		c.X++
		c.setZN(c.X)
	case "INY":
		c.Y++
		c.setZN(c.Y)
	case "DEX":
		c.X--
		c.setZN(c.X)
	case "DEY":
		c.Y--
		c.setZN(c.Y)

	case "ASL":
		v := c.load(addr, accum)
		c.C = v&0x80 != 0
		v <<= 1
		c.store(addr, accum, v)
		c.setZN(v)
	case "LSR":
		v := c.load(addr, accum)
		c.C = v&0x01 != 0
		v >>= 1
		c.store(addr, accum, v)
		c.setZN(v)
	case "ROL":
		v := c.load(addr, accum)
		oldC := c.C
		c.C = v&0x80 != 0
		v <<= 1
		if oldC {
			v |= 0x01
		}
		c.store(addr, accum, v)
		c.setZN(v)
	case "ROR":
		v := c.load(addr, accum)
		oldC := c.C
		c.C = v&0x01 != 0
		v >>= 1
		if oldC {
			v |= 0x80
		}
		c.store(addr, accum, v)
		c.setZN(v)

	case "JMP":
		c.PC = addr
	case "JSR":
		c.push16(c.PC - 1)
		c.PC = addr
	case "RTS":
		c.PC = c.pull16() + 1
	case "RTI":
		c.unpackStatus(c.pull8())
		c.PC = c.pull16()
	case "BRK":
		cycles = c.interrupt(irqVector, true)

	case "CLC":
		c.C = false
	case "SEC":
		c.C = true
	case "CLI":
		c.I = false
	case "SEI":
		c.I = true
	case "CLV":
		c.V = false
	case "CLD":
		c.D = false
	case "SED":
		c.D = true

	case "NOP":
		if info.mode != Implied && info.mode != Accumulator {
			c.load(addr, accum)
		}
	}

	return cycles
}

// resolveOperand fetches any operand bytes for mode and returns the
// effective address (if any), whether the instruction targets the
// accumulator directly, and whether indexing crossed a page boundary.
func (c *CPU) resolveOperand(mode Mode) (addr uint16, accum bool, pageCrossed bool) {
	switch mode {
	case Implied:
		return 0, false, false
	case Accumulator:
		return 0, true, false
	case Immediate:
		addr = c.PC
		c.PC++
		return addr, false, false
	case ZeroPage:
		return c.zeroPage(), false, false
	case ZeroPageX:
		return c.zeroPageX(), false, false
	case ZeroPageY:
		return c.zeroPageY(), false, false
	case Absolute:
		return c.absolute(), false, false
	case AbsoluteX:
		a, crossed := c.absoluteX()
		return a, false, crossed
	case AbsoluteY:
		a, crossed := c.absoluteY()
		return a, false, crossed
	case Indirect:
		ptr := c.absolute()
		return c.read16bug(ptr), false, false
	case IndexedIndirect:
		return c.indexedIndirect(), false, false
	case IndirectIndexed:
		a, crossed := c.indirectIndexed()
		return a, false, crossed
	}
	return 0, false, false
}

func (c *CPU) load(addr uint16, accum bool) uint8 {
	if accum {
		return c.A
	}
	return c.Bus.Read(addr)
}

func (c *CPU) store(addr uint16, accum bool, v uint8) {
	if accum {
		c.A = v
		return
	}
	c.Bus.Write(addr, v)
}

// adc implements ADC's carry/overflow semantics. SBC is dispatched
// through the same path with the operand's bits inverted, matching
// real 6502 hardware.
func (c *CPU) adc(v uint8) {
	carry := uint16(0)
	if c.C {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	result := uint8(sum)
	c.V = (c.A^v)&0x80 == 0 && (c.A^result)&0x80 != 0
	c.C = sum > 0xFF
	c.A = result
	c.setZN(c.A)
}

func (c *CPU) compare(reg, v uint8) {
	c.C = reg >= v
	c.setZN(reg - v)
}

var branchFlags = map[string]func(*CPU) bool{
	"BPL": func(c *CPU) bool { return !c.N },
	"BMI": func(c *CPU) bool { return c.N },
	"BVC": func(c *CPU) bool { return !c.V },
	"BVS": func(c *CPU) bool { return c.V },
	"BCC": func(c *CPU) bool { return !c.C },
	"BCS": func(c *CPU) bool { return c.C },
	"BNE": func(c *CPU) bool { return !c.Z },
	"BEQ": func(c *CPU) bool { return c.Z },
}

// executeBranch implements the shared branch timing rule: 2 cycles if
// not taken, 3 if taken, 4 if taken across a page boundary.
func (c *CPU) executeBranch(name string) uint64 {
	base := c.PC + 1
	target := c.relativeTarget()
	if !branchFlags[name](c) {
		return 2
	}
	cycles := uint64(3)
	if pagesDiffer(base, target) {
		cycles++
	}
	c.PC = target
	return cycles
}
