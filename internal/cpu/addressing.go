package cpu

// Addressing-mode operand resolvers. Each consumes the operand bytes
// that follow the opcode and returns the effective address plus whether
// a page boundary was crossed (which, for the modes that care, adds
// one cycle).

func (c *CPU) zeroPage() uint16 {
	return uint16(c.fetch8())
}

func (c *CPU) zeroPageX() uint16 {
	return uint16(c.fetch8() + c.X)
}

func (c *CPU) zeroPageY() uint16 {
	return uint16(c.fetch8() + c.Y)
}

func (c *CPU) absolute() uint16 {
	return c.fetch16()
}

func (c *CPU) absoluteX() (uint16, bool) {
	base := c.fetch16()
	addr := base + uint16(c.X)
	return addr, pagesDiffer(base, addr)
}

func (c *CPU) absoluteY() (uint16, bool) {
	base := c.fetch16()
	addr := base + uint16(c.Y)
	return addr, pagesDiffer(base, addr)
}

// indexedIndirect resolves (zp,X): read the zero-page pointer at
// operand+X (wrapping within the zero page) to get the effective
// address.
func (c *CPU) indexedIndirect() uint16 {
	ptr := c.fetch8() + c.X
	lo := uint16(c.Bus.Read(uint16(ptr)))
	hi := uint16(c.Bus.Read(uint16(ptr + 1)))
	return hi<<8 | lo
}

// indirectIndexed resolves (zp),Y: read the zero-page pointer at
// operand, then add Y to the resulting 16-bit address.
func (c *CPU) indirectIndexed() (uint16, bool) {
	ptr := c.fetch8()
	lo := uint16(c.Bus.Read(uint16(ptr)))
	hi := uint16(c.Bus.Read(uint16(ptr + 1)))
	base := hi<<8 | lo
	addr := base + uint16(c.Y)
	return addr, pagesDiffer(base, addr)
}

// relativeTarget computes a branch target. The operand MUST be treated as a
// signed 8-bit offset; interpreting it as unsigned is the canonical
// off-by-a-lot bug in naive implementations.
func (c *CPU) relativeTarget() uint16 {
	offset := int8(c.fetch8())
	return uint16(int32(c.PC) + int32(offset))
}
