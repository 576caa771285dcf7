package dotmatrix

// bootStub is an embedded, logo-free replacement for the DMG boot image.
// It establishes the post-boot register state (AF=0x01B0, BC=0x0013,
// DE=0x00D8, HL=0x014D, SP=0xFFFE, BGP=0xFC, LCDC=0x91), then jumps to the
// tail of the overlay where the final instruction writes 0x01 to 0xFF50 so
// the following fetch lands on the cartridge entry point at 0x0100.
// A real boot image can be substituted with WithBootROM.
var bootStub = buildBootStub()

func buildBootStub() [0x100]byte {
	var rom [0x100]byte
	program := []byte{
		0x31, 0xFE, 0xFF, // LD SP, 0xFFFE
		0x01, 0xB0, 0x01, // LD BC, 0x01B0
		0xC5,             // PUSH BC
		0xF1,             // POP AF        ; A=0x01 F=0xB0
		0x01, 0x13, 0x00, // LD BC, 0x0013
		0x11, 0xD8, 0x00, // LD DE, 0x00D8
		0x21, 0x4D, 0x01, // LD HL, 0x014D
		0x3E, 0xFC, // LD A, 0xFC
		0xE0, 0x47, // LDH (0x47), A ; BGP
		0x3E, 0x91, // LD A, 0x91
		0xE0, 0x40, // LDH (0x40), A ; LCD on
		0xC3, 0xFC, 0x00, // JP 0x00FC
	}
	copy(rom[:], program)

	// Overlay tail: disable the boot ROM and fall through to 0x0100.
	rom[0xFC] = 0x3E // LD A, 0x01
	rom[0xFD] = 0x01
	rom[0xFE] = 0xE0 // LDH (0x50), A
	rom[0xFF] = 0x50
	return rom
}
