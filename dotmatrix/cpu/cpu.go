package cpu

import (
	"fmt"

	"github.com/teodor/go-dotmatrix/dotmatrix/addr"
	"github.com/teodor/go-dotmatrix/dotmatrix/bus"
)

// Flag masks for the F register. The low nibble of F always reads as zero.
const (
	zeroFlag      uint8 = 0x80
	subFlag       uint8 = 0x40
	halfCarryFlag uint8 = 0x20
	carryFlag     uint8 = 0x10
)

// CPU holds the SM83 register file and interrupt state. Every memory access
// and every internal idle cycle advances the bus by one M-cycle, so
// instruction timing falls out of the access pattern rather than a table.
type CPU struct {
	a, f uint8
	b, c uint8
	d, e uint8
	h, l uint8

	sp uint16
	pc uint16

	ime       bool
	imeQueued bool // the effect of EI is delayed by one instruction
	halted    bool
	haltBug   bool
	stopped   bool

	opcode uint8  // prefetched during the previous instruction
	cycle  uint64 // free-running M-cycle counter

	bus *bus.Bus
}

// Snapshot is an observable copy of the register file.
type Snapshot struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
	IME                    bool
	Cycles                 uint64
}

// New creates a CPU attached to the given bus and prefetches the first
// opcode from PC 0 without consuming time.
func New(b *bus.Bus) *CPU {
	c := &CPU{bus: b}
	c.opcode = b.ReadPassive(c.pc)
	c.pc++
	return c
}

// Snapshot returns a copy of the register file.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		A: c.a, F: c.f, B: c.b, C: c.c,
		D: c.d, E: c.e, H: c.h, L: c.l,
		SP: c.sp, PC: c.pc,
		IME:    c.ime,
		Cycles: c.cycle,
	}
}

// Step services interrupts, executes the prefetched opcode and prefetches
// the next one. It returns only after the instruction's full M-cycle cost
// has been ticked through the bus.
func (c *CPU) Step() {
	pending := c.bus.Pending()
	if c.ime && pending != 0 {
		for i := uint8(0); i < 5; i++ {
			if pending&(1<<i) == 0 {
				continue
			}
			interrupt := addr.Interrupt(i)
			c.bus.ClearInterrupt(interrupt)
			c.ime = false
			c.halted = false
			c.runCycle()
			// PC already advanced past the prefetched opcode
			c.pushVal(c.pc - 1)
			c.pc = interrupt.Vector()
			c.opcode = c.fetch8()
			break
		}
	}

	if c.halted {
		if pending == 0 {
			c.runCycle()
			return
		}
		c.halted = false
	}

	if c.imeQueued {
		c.ime = true
		c.imeQueued = false
	}

	c.execute(c.opcode)

	// The next opcode is fetched in the same M-cycle as the last execution
	// cycle. The halt bug suppresses the PC advance once.
	if !c.haltBug {
		c.opcode = c.fetch8()
	}
	c.haltBug = false

	if c.halted && !c.ime && c.bus.Pending() != 0 {
		c.haltBug = true
		c.halted = false
	}
}

func (c *CPU) execute(op uint8) {
	fn := opcodeTable[op]
	if fn == nil {
		panic(fmt.Sprintf("unhandled opcode 0x%02X", op))
	}
	fn(c)
}

// runCycle burns one M-cycle with no memory access.
func (c *CPU) runCycle() {
	c.cycle++
	c.bus.Tick()
}

func (c *CPU) read8(address uint16) uint8 {
	c.cycle++
	return c.bus.Read(address)
}

func (c *CPU) write8(address uint16, value uint8) {
	c.cycle++
	c.bus.Write(address, value)
}

func (c *CPU) read16(address uint16) uint16 {
	low := c.read8(address)
	high := c.read8(address + 1)
	return uint16(high)<<8 | uint16(low)
}

// fetch8 reads the byte at PC and advances it.
func (c *CPU) fetch8() uint8 {
	ret := c.read8(c.pc)
	c.pc++
	return ret
}

// fetch16 reads a little-endian word at PC and advances it.
func (c *CPU) fetch16() uint16 {
	ret := c.read16(c.pc)
	c.pc += 2
	return ret
}

// register pair accessors

func (c *CPU) getAF() uint16 { return uint16(c.a)<<8 | uint16(c.f) }
func (c *CPU) getBC() uint16 { return uint16(c.b)<<8 | uint16(c.c) }
func (c *CPU) getDE() uint16 { return uint16(c.d)<<8 | uint16(c.e) }
func (c *CPU) getHL() uint16 { return uint16(c.h)<<8 | uint16(c.l) }

// setAF clears the low nibble of F, which does not exist in hardware.
func (c *CPU) setAF(value uint16) {
	c.a = uint8(value >> 8)
	c.f = uint8(value) & 0xF0
}

func (c *CPU) setBC(value uint16) {
	c.b = uint8(value >> 8)
	c.c = uint8(value)
}

func (c *CPU) setDE(value uint16) {
	c.d = uint8(value >> 8)
	c.e = uint8(value)
}

func (c *CPU) setHL(value uint16) {
	c.h = uint8(value >> 8)
	c.l = uint8(value)
}

// flag helpers

func (c *CPU) flag(mask uint8) bool {
	return c.f&mask != 0
}

func (c *CPU) setFlag(mask uint8, set bool) {
	if set {
		c.f |= mask
	} else {
		c.f &^= mask
	}
}

func (c *CPU) setFlags(z, n, h, cy bool) {
	c.setFlag(zeroFlag, z)
	c.setFlag(subFlag, n)
	c.setFlag(halfCarryFlag, h)
	c.setFlag(carryFlag, cy)
}

// readReg8 reads the operand register encoded as 0..7 in opcode fields:
// B, C, D, E, H, L, (HL), A. Index 6 costs a memory cycle.
func (c *CPU) readReg8(idx uint8) uint8 {
	switch idx & 7 {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.read8(c.getHL())
	default:
		return c.a
	}
}

// writeReg8 writes the operand register encoded as 0..7.
func (c *CPU) writeReg8(idx, value uint8) {
	switch idx & 7 {
	case 0:
		c.b = value
	case 1:
		c.c = value
	case 2:
		c.d = value
	case 3:
		c.e = value
	case 4:
		c.h = value
	case 5:
		c.l = value
	case 6:
		c.write8(c.getHL(), value)
	default:
		c.a = value
	}
}

// stack

// pushVal pushes a word; the leading idle cycle is part of every push.
func (c *CPU) pushVal(value uint16) {
	c.runCycle()
	c.write8(c.sp-1, uint8(value>>8))
	c.write8(c.sp-2, uint8(value))
	c.sp -= 2
}

func (c *CPU) popVal() uint16 {
	value := c.read16(c.sp)
	c.sp += 2
	return value
}

// ALU

// addToA adds a value (plus carry-in for ADC) into A with full flag math.
func (c *CPU) addToA(value uint8, carry bool) {
	cy := uint8(0)
	if carry {
		cy = 1
	}
	res := c.a + value + cy
	c.setFlags(
		res == 0,
		false,
		(c.a&0xF)+(value&0xF)+cy > 0xF,
		uint16(c.a)+uint16(value)+uint16(cy) > 0xFF,
	)
	c.a = res
}

// aluSub computes A minus value (minus carry-in) and sets flags. It does
// not write A so the CP instructions can share it.
func (c *CPU) aluSub(value uint8, carry bool) uint8 {
	cy := uint8(0)
	if carry {
		cy = 1
	}
	res := c.a - value - cy
	c.setFlags(
		res == 0,
		true,
		((c.a&0xF)-(value&0xF)-cy)&0x10 != 0,
		uint16(c.a) < uint16(value)+uint16(cy),
	)
	return res
}

func (c *CPU) andA(value uint8) {
	c.a &= value
	c.setFlags(c.a == 0, false, true, false)
}

func (c *CPU) orA(value uint8) {
	c.a |= value
	c.setFlags(c.a == 0, false, false, false)
}

func (c *CPU) xorA(value uint8) {
	c.a ^= value
	c.setFlags(c.a == 0, false, false, false)
}

// incIdx handles INC r8 including the (HL) form.
func (c *CPU) incIdx(idx uint8) {
	res := c.readReg8(idx) + 1
	c.writeReg8(idx, res)
	c.setFlag(zeroFlag, res == 0)
	c.setFlag(subFlag, false)
	c.setFlag(halfCarryFlag, res&0xF == 0)
}

// decIdx handles DEC r8 including the (HL) form.
func (c *CPU) decIdx(idx uint8) {
	res := c.readReg8(idx) - 1
	c.writeReg8(idx, res)
	c.setFlag(zeroFlag, res == 0)
	c.setFlag(subFlag, true)
	c.setFlag(halfCarryFlag, res&0xF == 0xF)
}

// addToHL adds a 16-bit value into HL; one idle cycle, Z untouched.
func (c *CPU) addToHL(value uint16) {
	c.runCycle()
	hl := c.getHL()
	res := hl + value
	c.setFlag(subFlag, false)
	c.setFlag(halfCarryFlag, (hl&0xFFF)+(value&0xFFF) > 0xFFF)
	c.setFlag(carryFlag, uint32(hl)+uint32(value) > 0xFFFF)
	c.setHL(res)
}

// addSPImm fetches the signed displacement and returns SP plus it. Flags
// come from unsigned 8-bit math on the low byte of SP.
func (c *CPU) addSPImm() uint16 {
	imm := c.fetch8()
	res := c.sp + uint16(int16(int8(imm)))
	c.setFlags(
		false,
		false,
		(c.sp&0xF)+uint16(imm&0xF) > 0xF,
		(c.sp&0xFF)+uint16(imm) > 0xFF,
	)
	return res
}

// branch helpers; the taken path costs the extra cycle

func (c *CPU) jrIf(cond bool) {
	offset := int8(c.fetch8())
	if cond {
		c.runCycle()
		c.pc += uint16(int16(offset))
	}
}

func (c *CPU) jpIf(cond bool) {
	target := c.fetch16()
	if cond {
		c.runCycle()
		c.pc = target
	}
}

func (c *CPU) callIf(cond bool) {
	target := c.fetch16()
	if cond {
		c.pushVal(c.pc)
		c.pc = target
	}
}

// retIf always burns the condition-check cycle, then pops on the taken path.
func (c *CPU) retIf(cond bool) {
	c.runCycle()
	if cond {
		c.pc = c.popVal()
		c.runCycle()
	}
}

func (c *CPU) rst(target uint16) {
	c.pushVal(c.pc)
	c.pc = target
}
