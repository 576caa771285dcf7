package cpu

import "github.com/teodor/go-dotmatrix/dotmatrix/bit"

// opcode0xCB fetches and executes a CB-prefixed opcode. The register
// operand lives in bits 0-2 and the bit number (or rotate/shift selector)
// in bits 3-5, so the whole page decodes arithmetically.
func opcode0xCB(c *CPU) {
	op := c.fetch8()
	idx := op & 7
	n := (op >> 3) & 7

	switch {
	case op < 0x40:
		c.writeReg8(idx, c.rotateShift(n, c.readReg8(idx)))
	case op < 0x80:
		// BIT n, r8: Z from the tested bit, C untouched
		val := c.readReg8(idx)
		c.setFlag(zeroFlag, !bit.IsSet(n, val))
		c.setFlag(subFlag, false)
		c.setFlag(halfCarryFlag, true)
	case op < 0xC0:
		// RES n, r8
		c.writeReg8(idx, c.readReg8(idx)&^(1<<n))
	default:
		// SET n, r8
		c.writeReg8(idx, c.readReg8(idx)|1<<n)
	}
}

// rotateShift performs the CB rotate/shift/swap selected by bits 3-5.
// Unlike the RxCA forms, Z is computed from the result.
func (c *CPU) rotateShift(selector, val uint8) uint8 {
	var res uint8
	var carry bool

	switch selector {
	case 0: // RLC
		res = val<<1 | val>>7
		carry = res&1 != 0
	case 1: // RRC
		res = val>>1 | val<<7
		carry = res&0x80 != 0
	case 2: // RL
		res = val << 1
		if c.flag(carryFlag) {
			res |= 1
		}
		carry = val&0x80 != 0
	case 3: // RR
		res = val >> 1
		if c.flag(carryFlag) {
			res |= 0x80
		}
		carry = val&1 != 0
	case 4: // SLA
		res = val << 1
		carry = val&0x80 != 0
	case 5: // SRA
		res = uint8(int8(val) >> 1)
		carry = val&1 != 0
	case 6: // SWAP
		res = val>>4 | val<<4
	default: // SRL
		res = val >> 1
		carry = val&1 != 0
	}

	c.setFlags(res == 0, false, false, carry)
	return res
}
