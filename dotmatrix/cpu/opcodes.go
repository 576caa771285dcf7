package cpu

// opcodeFunc executes one primary opcode. Timing is implicit: every memory
// access and idle cycle the handler performs ticks the bus.
type opcodeFunc func(*CPU)

// opcodeTable dispatches the 256 primary opcodes. The regular LD r8,r8 and
// ALU blocks (0x40-0xBF) are filled by init below; the eleven holes the
// hardware leaves undefined stay nil and fault in execute.
var opcodeTable = [256]opcodeFunc{
	0x00: opcode0x00,
	0x01: opcode0x01,
	0x02: opcode0x02,
	0x03: opcode0x03,
	0x04: opcode0x04,
	0x05: opcode0x05,
	0x06: opcode0x06,
	0x07: opcode0x07,
	0x08: opcode0x08,
	0x09: opcode0x09,
	0x0A: opcode0x0A,
	0x0B: opcode0x0B,
	0x0C: opcode0x0C,
	0x0D: opcode0x0D,
	0x0E: opcode0x0E,
	0x0F: opcode0x0F,
	0x10: opcode0x10,
	0x11: opcode0x11,
	0x12: opcode0x12,
	0x13: opcode0x13,
	0x14: opcode0x14,
	0x15: opcode0x15,
	0x16: opcode0x16,
	0x17: opcode0x17,
	0x18: opcode0x18,
	0x19: opcode0x19,
	0x1A: opcode0x1A,
	0x1B: opcode0x1B,
	0x1C: opcode0x1C,
	0x1D: opcode0x1D,
	0x1E: opcode0x1E,
	0x1F: opcode0x1F,
	0x20: opcode0x20,
	0x21: opcode0x21,
	0x22: opcode0x22,
	0x23: opcode0x23,
	0x24: opcode0x24,
	0x25: opcode0x25,
	0x26: opcode0x26,
	0x27: opcode0x27,
	0x28: opcode0x28,
	0x29: opcode0x29,
	0x2A: opcode0x2A,
	0x2B: opcode0x2B,
	0x2C: opcode0x2C,
	0x2D: opcode0x2D,
	0x2E: opcode0x2E,
	0x2F: opcode0x2F,
	0x30: opcode0x30,
	0x31: opcode0x31,
	0x32: opcode0x32,
	0x33: opcode0x33,
	0x34: opcode0x34,
	0x35: opcode0x35,
	0x36: opcode0x36,
	0x37: opcode0x37,
	0x38: opcode0x38,
	0x39: opcode0x39,
	0x3A: opcode0x3A,
	0x3B: opcode0x3B,
	0x3C: opcode0x3C,
	0x3D: opcode0x3D,
	0x3E: opcode0x3E,
	0x3F: opcode0x3F,
	0xC0: opcode0xC0,
	0xC1: opcode0xC1,
	0xC2: opcode0xC2,
	0xC3: opcode0xC3,
	0xC4: opcode0xC4,
	0xC5: opcode0xC5,
	0xC6: opcode0xC6,
	0xC7: opcode0xC7,
	0xC8: opcode0xC8,
	0xC9: opcode0xC9,
	0xCA: opcode0xCA,
	0xCB: opcode0xCB,
	0xCC: opcode0xCC,
	0xCD: opcode0xCD,
	0xCE: opcode0xCE,
	0xCF: opcode0xCF,
	0xD0: opcode0xD0,
	0xD1: opcode0xD1,
	0xD2: opcode0xD2,
	0xD4: opcode0xD4,
	0xD5: opcode0xD5,
	0xD6: opcode0xD6,
	0xD7: opcode0xD7,
	0xD8: opcode0xD8,
	0xD9: opcode0xD9,
	0xDA: opcode0xDA,
	0xDC: opcode0xDC,
	0xDE: opcode0xDE,
	0xDF: opcode0xDF,
	0xE0: opcode0xE0,
	0xE1: opcode0xE1,
	0xE2: opcode0xE2,
	0xE5: opcode0xE5,
	0xE6: opcode0xE6,
	0xE7: opcode0xE7,
	0xE8: opcode0xE8,
	0xE9: opcode0xE9,
	0xEA: opcode0xEA,
	0xEE: opcode0xEE,
	0xEF: opcode0xEF,
	0xF0: opcode0xF0,
	0xF1: opcode0xF1,
	0xF2: opcode0xF2,
	0xF3: opcode0xF3,
	0xF5: opcode0xF5,
	0xF6: opcode0xF6,
	0xF7: opcode0xF7,
	0xF8: opcode0xF8,
	0xF9: opcode0xF9,
	0xFA: opcode0xFA,
	0xFB: opcode0xFB,
	0xFE: opcode0xFE,
	0xFF: opcode0xFF,
}

func init() {
	// LD r8, r8 block (0x40-0x7F), with HALT in the 0x76 slot
	for op := 0x40; op <= 0x7F; op++ {
		if op == 0x76 {
			opcodeTable[op] = opcodeHALT
			continue
		}
		opcodeTable[op] = opcodeLDR8R8
	}
	// ALU A, r8 block (0x80-0xBF)
	for op := 0x80; op <= 0xBF; op++ {
		opcodeTable[op] = opcodeALUR8
	}
}

// LD r8, r8; operands decoded from the opcode byte
func opcodeLDR8R8(c *CPU) {
	c.writeReg8(c.opcode>>3, c.readReg8(c.opcode))
}

// ADD/ADC/SUB/SBC/AND/XOR/OR/CP A, r8
func opcodeALUR8(c *CPU) {
	val := c.readReg8(c.opcode)
	switch (c.opcode >> 3) & 7 {
	case 0:
		c.addToA(val, false)
	case 1:
		c.addToA(val, c.flag(carryFlag))
	case 2:
		c.a = c.aluSub(val, false)
	case 3:
		c.a = c.aluSub(val, c.flag(carryFlag))
	case 4:
		c.andA(val)
	case 5:
		c.xorA(val)
	case 6:
		c.orA(val)
	case 7:
		c.aluSub(val, false)
	}
}

// HALT
func opcodeHALT(c *CPU) {
	c.halted = true
}

// NOP
func opcode0x00(_ *CPU) {}

// LD BC, d16
func opcode0x01(c *CPU) {
	c.setBC(c.fetch16())
}

// LD (BC), A
func opcode0x02(c *CPU) {
	c.write8(c.getBC(), c.a)
}

// INC BC
func opcode0x03(c *CPU) {
	c.runCycle()
	c.setBC(c.getBC() + 1)
}

// INC B
func opcode0x04(c *CPU) {
	c.incIdx(0)
}

// DEC B
func opcode0x05(c *CPU) {
	c.decIdx(0)
}

// LD B, d8
func opcode0x06(c *CPU) {
	c.b = c.fetch8()
}

// RLCA
func opcode0x07(c *CPU) {
	c.a = c.a<<1 | c.a>>7
	c.setFlags(false, false, false, c.a&1 != 0)
}

// LD (a16), SP
func opcode0x08(c *CPU) {
	address := c.fetch16()
	c.write8(address, uint8(c.sp))
	c.write8(address+1, uint8(c.sp>>8))
}

// ADD HL, BC
func opcode0x09(c *CPU) {
	c.addToHL(c.getBC())
}

// LD A, (BC)
func opcode0x0A(c *CPU) {
	c.a = c.read8(c.getBC())
}

// DEC BC
func opcode0x0B(c *CPU) {
	c.runCycle()
	c.setBC(c.getBC() - 1)
}

// INC C
func opcode0x0C(c *CPU) {
	c.incIdx(1)
}

// DEC C
func opcode0x0D(c *CPU) {
	c.decIdx(1)
}

// LD C, d8
func opcode0x0E(c *CPU) {
	c.c = c.fetch8()
}

// RRCA
func opcode0x0F(c *CPU) {
	c.a = c.a>>1 | c.a<<7
	c.setFlags(false, false, false, c.a&0x80 != 0)
}

// STOP
func opcode0x10(c *CPU) {
	c.stopped = true
}

// LD DE, d16
func opcode0x11(c *CPU) {
	c.setDE(c.fetch16())
}

// LD (DE), A
func opcode0x12(c *CPU) {
	c.write8(c.getDE(), c.a)
}

// INC DE
func opcode0x13(c *CPU) {
	c.runCycle()
	c.setDE(c.getDE() + 1)
}

// INC D
func opcode0x14(c *CPU) {
	c.incIdx(2)
}

// DEC D
func opcode0x15(c *CPU) {
	c.decIdx(2)
}

// LD D, d8
func opcode0x16(c *CPU) {
	c.d = c.fetch8()
}

// RLA
func opcode0x17(c *CPU) {
	carry := c.a&0x80 != 0
	c.a = c.a << 1
	if c.flag(carryFlag) {
		c.a |= 1
	}
	c.setFlags(false, false, false, carry)
}

// JR r8
func opcode0x18(c *CPU) {
	c.jrIf(true)
}

// ADD HL, DE
func opcode0x19(c *CPU) {
	c.addToHL(c.getDE())
}

// LD A, (DE)
func opcode0x1A(c *CPU) {
	c.a = c.read8(c.getDE())
}

// DEC DE
func opcode0x1B(c *CPU) {
	c.runCycle()
	c.setDE(c.getDE() - 1)
}

// INC E
func opcode0x1C(c *CPU) {
	c.incIdx(3)
}

// DEC E
func opcode0x1D(c *CPU) {
	c.decIdx(3)
}

// LD E, d8
func opcode0x1E(c *CPU) {
	c.e = c.fetch8()
}

// RRA
func opcode0x1F(c *CPU) {
	carry := c.a&1 != 0
	c.a = c.a >> 1
	if c.flag(carryFlag) {
		c.a |= 0x80
	}
	c.setFlags(false, false, false, carry)
}

// JR NZ, r8
func opcode0x20(c *CPU) {
	c.jrIf(!c.flag(zeroFlag))
}

// LD HL, d16
func opcode0x21(c *CPU) {
	c.setHL(c.fetch16())
}

// LD (HL+), A
func opcode0x22(c *CPU) {
	hl := c.getHL()
	c.write8(hl, c.a)
	c.setHL(hl + 1)
}

// INC HL
func opcode0x23(c *CPU) {
	c.runCycle()
	c.setHL(c.getHL() + 1)
}

// INC H
func opcode0x24(c *CPU) {
	c.incIdx(4)
}

// DEC H
func opcode0x25(c *CPU) {
	c.decIdx(4)
}

// LD H, d8
func opcode0x26(c *CPU) {
	c.h = c.fetch8()
}

// DAA adjusts A after BCD arithmetic. N is left untouched.
func opcode0x27(c *CPU) {
	var correction uint8
	if c.flag(halfCarryFlag) || (!c.flag(subFlag) && c.a&0xF > 9) {
		correction |= 0x06
	}
	carry := c.flag(carryFlag) || (!c.flag(subFlag) && c.a > 0x99)
	if carry {
		correction |= 0x60
	}
	if c.flag(subFlag) {
		c.a -= correction
	} else {
		c.a += correction
	}
	c.setFlag(zeroFlag, c.a == 0)
	c.setFlag(halfCarryFlag, false)
	c.setFlag(carryFlag, carry)
}

// JR Z, r8
func opcode0x28(c *CPU) {
	c.jrIf(c.flag(zeroFlag))
}

// ADD HL, HL
func opcode0x29(c *CPU) {
	c.addToHL(c.getHL())
}

// LD A, (HL+)
func opcode0x2A(c *CPU) {
	hl := c.getHL()
	c.a = c.read8(hl)
	c.setHL(hl + 1)
}

// DEC HL
func opcode0x2B(c *CPU) {
	c.runCycle()
	c.setHL(c.getHL() - 1)
}

// INC L
func opcode0x2C(c *CPU) {
	c.incIdx(5)
}

// DEC L
func opcode0x2D(c *CPU) {
	c.decIdx(5)
}

// LD L, d8
func opcode0x2E(c *CPU) {
	c.l = c.fetch8()
}

// CPL
func opcode0x2F(c *CPU) {
	c.a = ^c.a
	c.setFlag(subFlag, true)
	c.setFlag(halfCarryFlag, true)
}

// JR NC, r8
func opcode0x30(c *CPU) {
	c.jrIf(!c.flag(carryFlag))
}

// LD SP, d16
func opcode0x31(c *CPU) {
	c.sp = c.fetch16()
}

// LD (HL-), A
func opcode0x32(c *CPU) {
	hl := c.getHL()
	c.write8(hl, c.a)
	c.setHL(hl - 1)
}

// INC SP
func opcode0x33(c *CPU) {
	c.runCycle()
	c.sp++
}

// INC (HL)
func opcode0x34(c *CPU) {
	c.incIdx(6)
}

// DEC (HL)
func opcode0x35(c *CPU) {
	c.decIdx(6)
}

// LD (HL), d8
func opcode0x36(c *CPU) {
	value := c.fetch8()
	c.write8(c.getHL(), value)
}

// SCF
func opcode0x37(c *CPU) {
	c.setFlag(subFlag, false)
	c.setFlag(halfCarryFlag, false)
	c.setFlag(carryFlag, true)
}

// JR C, r8
func opcode0x38(c *CPU) {
	c.jrIf(c.flag(carryFlag))
}

// ADD HL, SP
func opcode0x39(c *CPU) {
	c.addToHL(c.sp)
}

// LD A, (HL-)
func opcode0x3A(c *CPU) {
	hl := c.getHL()
	c.a = c.read8(hl)
	c.setHL(hl - 1)
}

// DEC SP
func opcode0x3B(c *CPU) {
	c.runCycle()
	c.sp--
}

// INC A
func opcode0x3C(c *CPU) {
	c.incIdx(7)
}

// DEC A
func opcode0x3D(c *CPU) {
	c.decIdx(7)
}

// LD A, d8
func opcode0x3E(c *CPU) {
	c.a = c.fetch8()
}

// CCF
func opcode0x3F(c *CPU) {
	c.setFlag(subFlag, false)
	c.setFlag(halfCarryFlag, false)
	c.setFlag(carryFlag, !c.flag(carryFlag))
}

// RET NZ
func opcode0xC0(c *CPU) {
	c.retIf(!c.flag(zeroFlag))
}

// POP BC
func opcode0xC1(c *CPU) {
	c.setBC(c.popVal())
}

// JP NZ, a16
func opcode0xC2(c *CPU) {
	c.jpIf(!c.flag(zeroFlag))
}

// JP a16
func opcode0xC3(c *CPU) {
	c.jpIf(true)
}

// CALL NZ, a16
func opcode0xC4(c *CPU) {
	c.callIf(!c.flag(zeroFlag))
}

// PUSH BC
func opcode0xC5(c *CPU) {
	c.pushVal(c.getBC())
}

// ADD A, d8
func opcode0xC6(c *CPU) {
	c.addToA(c.fetch8(), false)
}

// RST 00
func opcode0xC7(c *CPU) {
	c.rst(0x00)
}

// RET Z
func opcode0xC8(c *CPU) {
	c.retIf(c.flag(zeroFlag))
}

// RET
func opcode0xC9(c *CPU) {
	c.pc = c.popVal()
	c.runCycle()
}

// JP Z, a16
func opcode0xCA(c *CPU) {
	c.jpIf(c.flag(zeroFlag))
}

// CALL Z, a16
func opcode0xCC(c *CPU) {
	c.callIf(c.flag(zeroFlag))
}

// CALL a16
func opcode0xCD(c *CPU) {
	c.callIf(true)
}

// ADC A, d8
func opcode0xCE(c *CPU) {
	c.addToA(c.fetch8(), c.flag(carryFlag))
}

// RST 08
func opcode0xCF(c *CPU) {
	c.rst(0x08)
}

// RET NC
func opcode0xD0(c *CPU) {
	c.retIf(!c.flag(carryFlag))
}

// POP DE
func opcode0xD1(c *CPU) {
	c.setDE(c.popVal())
}

// JP NC, a16
func opcode0xD2(c *CPU) {
	c.jpIf(!c.flag(carryFlag))
}

// CALL NC, a16
func opcode0xD4(c *CPU) {
	c.callIf(!c.flag(carryFlag))
}

// PUSH DE
func opcode0xD5(c *CPU) {
	c.pushVal(c.getDE())
}

// SUB d8
func opcode0xD6(c *CPU) {
	c.a = c.aluSub(c.fetch8(), false)
}

// RST 10
func opcode0xD7(c *CPU) {
	c.rst(0x10)
}

// RET C
func opcode0xD8(c *CPU) {
	c.retIf(c.flag(carryFlag))
}

// RETI
func opcode0xD9(c *CPU) {
	c.ime = true
	c.pc = c.popVal()
	c.runCycle()
}

// JP C, a16
func opcode0xDA(c *CPU) {
	c.jpIf(c.flag(carryFlag))
}

// CALL C, a16
func opcode0xDC(c *CPU) {
	c.callIf(c.flag(carryFlag))
}

// SBC A, d8
func opcode0xDE(c *CPU) {
	c.a = c.aluSub(c.fetch8(), c.flag(carryFlag))
}

// RST 18
func opcode0xDF(c *CPU) {
	c.rst(0x18)
}

// LDH (a8), A
func opcode0xE0(c *CPU) {
	offset := c.fetch8()
	c.write8(0xFF00|uint16(offset), c.a)
}

// POP HL
func opcode0xE1(c *CPU) {
	c.setHL(c.popVal())
}

// LD (C), A
func opcode0xE2(c *CPU) {
	c.write8(0xFF00|uint16(c.c), c.a)
}

// PUSH HL
func opcode0xE5(c *CPU) {
	c.pushVal(c.getHL())
}

// AND d8
func opcode0xE6(c *CPU) {
	c.andA(c.fetch8())
}

// RST 20
func opcode0xE7(c *CPU) {
	c.rst(0x20)
}

// ADD SP, r8
func opcode0xE8(c *CPU) {
	c.sp = c.addSPImm()
	c.runCycle()
	c.runCycle()
}

// JP HL
func opcode0xE9(c *CPU) {
	c.pc = c.getHL()
}

// LD (a16), A
func opcode0xEA(c *CPU) {
	c.write8(c.fetch16(), c.a)
}

// XOR d8
func opcode0xEE(c *CPU) {
	c.xorA(c.fetch8())
}

// RST 28
func opcode0xEF(c *CPU) {
	c.rst(0x28)
}

// LDH A, (a8)
func opcode0xF0(c *CPU) {
	offset := c.fetch8()
	c.a = c.read8(0xFF00 | uint16(offset))
}

// POP AF
func opcode0xF1(c *CPU) {
	c.setAF(c.popVal())
}

// LD A, (C)
func opcode0xF2(c *CPU) {
	c.a = c.read8(0xFF00 | uint16(c.c))
}

// DI
func opcode0xF3(c *CPU) {
	c.imeQueued = false
	c.ime = false
}

// PUSH AF
func opcode0xF5(c *CPU) {
	c.pushVal(c.getAF())
}

// OR d8
func opcode0xF6(c *CPU) {
	c.orA(c.fetch8())
}

// RST 30
func opcode0xF7(c *CPU) {
	c.rst(0x30)
}

// LD HL, SP+r8
func opcode0xF8(c *CPU) {
	c.setHL(c.addSPImm())
	c.runCycle()
}

// LD SP, HL
func opcode0xF9(c *CPU) {
	c.runCycle()
	c.sp = c.getHL()
}

// LD A, (a16)
func opcode0xFA(c *CPU) {
	c.a = c.read8(c.fetch16())
}

// EI takes effect after the next instruction
func opcode0xFB(c *CPU) {
	c.imeQueued = true
}

// CP d8
func opcode0xFE(c *CPU) {
	c.aluSub(c.fetch8(), false)
}

// RST 38
func opcode0xFF(c *CPU) {
	c.rst(0x38)
}
