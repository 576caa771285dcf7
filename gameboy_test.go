package dotmatrix

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teodor/go-dotmatrix/dotmatrix/addr"
)

// testROM builds a 32 KiB no-mapper image with code placed at the given
// offsets. Offset 0x100 is the entry point reached after the boot stub.
func testROM(code map[uint16][]byte) []byte {
	rom := make([]byte, 0x8000)
	for offset, chunk := range code {
		copy(rom[offset:], chunk)
	}
	return rom
}

// haltLoop parks the CPU: HALT followed by a jump back to it.
var haltLoop = []byte{0x76, 0x18, 0xFD}

func TestGameboy_rejectsBadROMs(t *testing.T) {
	_, err := New(make([]byte, 0x100))
	assert.Error(t, err)

	rom := make([]byte, 0x8000)
	rom[0x147] = 0x19 // MBC5
	_, err = New(rom)
	assert.ErrorContains(t, err, "unhandled mapper")
}

func TestGameboy_bootStubCompletes(t *testing.T) {
	rom := testROM(map[uint16][]byte{
		0x0000: {0x42}, // visible once the overlay is gone
		0x0100: haltLoop,
	})
	gb, err := New(rom)
	require.NoError(t, err)

	gb.Run(2000)

	assert.Equal(t, uint8(0x01), gb.Bus().ReadPassive(addr.BOOT))
	assert.Equal(t, uint8(0x42), gb.Bus().ReadPassive(0x0000))

	snap := gb.CPUSnapshot()
	assert.Equal(t, uint8(0x01), snap.A)
	assert.Equal(t, uint8(0xB0), snap.F)
	assert.Equal(t, uint16(0x0013), uint16(snap.B)<<8|uint16(snap.C))
	assert.Equal(t, uint16(0x00D8), uint16(snap.D)<<8|uint16(snap.E))
	assert.Equal(t, uint16(0x014D), uint16(snap.H)<<8|uint16(snap.L))
	assert.Equal(t, uint16(0xFFFE), snap.SP)
	assert.Equal(t, uint8(0x91), gb.Bus().ReadPassive(addr.LCDC))
	assert.Equal(t, uint8(0xFC), gb.Bus().ReadPassive(addr.BGP))
}

func TestGameboy_runReturnsAtLeastMinCycles(t *testing.T) {
	rom := testROM(map[uint16][]byte{0x0100: haltLoop})
	gb, err := New(rom)
	require.NoError(t, err)

	consumed := gb.Run(12345)
	assert.GreaterOrEqual(t, consumed, uint64(12345))

	// F's low nibble is architectural zero
	assert.Zero(t, gb.CPUSnapshot().F&0x0F)
}

func TestGameboy_serialOutput(t *testing.T) {
	// Print "Hi" over the link port, then park
	program := []byte{
		0x3E, 'H', // LD A, 'H'
		0xE0, 0x01, // LDH (SB), A
		0x3E, 0x81, // LD A, 0x81
		0xE0, 0x02, // LDH (SC), A
		0x3E, 'i', // LD A, 'i'
		0xE0, 0x01,
		0x3E, 0x81,
		0xE0, 0x02,
	}
	rom := testROM(map[uint16][]byte{
		0x0100: append(program, haltLoop...),
	})

	var out bytes.Buffer
	gb, err := New(rom, WithSerialWriter(&out))
	require.NoError(t, err)

	gb.Run(2000)
	assert.Equal(t, "Hi", out.String())
}

func TestGameboy_timerInterruptFires(t *testing.T) {
	// TIMA=0xFF with TAC=0x05 overflows within a few cycles; the handler
	// leaves a marker in HRAM.
	program := []byte{
		0x3E, 0xFF, // LD A, 0xFF
		0xE0, 0x05, // LDH (TIMA), A
		0x3E, 0x05, // LD A, 0x05
		0xE0, 0x07, // LDH (TAC), A
		0x3E, 0x04, // LD A, 0x04
		0xE0, 0xFF, // LDH (IE), A
		0xFB, // EI
	}
	handler := []byte{
		0x3E, 0x42, // LD A, 0x42
		0xE0, 0x80, // LDH (0x80), A
		0xD9, // RETI
	}
	rom := testROM(map[uint16][]byte{
		0x0050: handler,
		0x0100: append(program, haltLoop...),
	})
	gb, err := New(rom)
	require.NoError(t, err)

	gb.Run(2000)
	assert.Equal(t, uint8(0x42), gb.Bus().ReadPassive(0xFF80))
}

func TestGameboy_lycStatInterruptOncePerFrame(t *testing.T) {
	// STAT interrupt on LY=LYC=64; the handler counts into HRAM
	program := []byte{
		0x3E, 0x40, // LD A, 0x40
		0xE0, 0x45, // LDH (LYC), A
		0x3E, 0x40, // LD A, 0x40 (LY=LYC source)
		0xE0, 0x41, // LDH (STAT), A
		0x3E, 0x02, // LD A, 0x02
		0xE0, 0xFF, // LDH (IE), A
		0xAF,       // XOR A
		0xE0, 0x81, // LDH (0x81), A
		0xFB, // EI
	}
	handler := []byte{
		0x21, 0x81, 0xFF, // LD HL, 0xFF81
		0x34, // INC (HL)
		0xD9, // RETI
	}
	rom := testROM(map[uint16][]byte{
		0x0048: handler,
		0x0100: append(program, haltLoop...),
	})
	gb, err := New(rom)
	require.NoError(t, err)

	// Roughly four frames of simulated time
	const cyclesPerFrame = 154 * 114
	gb.Run(4 * cyclesPerFrame)

	count := gb.Bus().ReadPassive(0xFF81)
	assert.GreaterOrEqual(t, count, uint8(3))
	assert.LessOrEqual(t, count, uint8(5))
}

func TestGameboy_framebufferDimensions(t *testing.T) {
	rom := testROM(map[uint16][]byte{0x0100: haltLoop})
	gb, err := New(rom)
	require.NoError(t, err)

	gb.Run(2 * 154 * 114)
	assert.Len(t, gb.Framebuffer().ToSlice(), 160*144)
	assert.Len(t, gb.VRAMTileData(), 0x1800)
}

func TestGameboy_snapshotPublishedPerFrame(t *testing.T) {
	rom := testROM(map[uint16][]byte{0x0100: haltLoop})
	gb, err := New(rom)
	require.NoError(t, err)

	gb.Run(3 * 154 * 114)

	snap := gb.Snapshots().Latest()
	assert.NotZero(t, snap.Frame)
	assert.Zero(t, snap.CPU.F&0x0F)
}

func TestGameboy_joypadInterrupt(t *testing.T) {
	// Select the button group, enable the joypad interrupt and park; the
	// handler records the pressed state.
	program := []byte{
		0x3E, 0x10, // LD A, 0x10 (bit 5 low: buttons)
		0xE0, 0x00, // LDH (P1), A
		0x3E, 0x10, // LD A, 0x10
		0xE0, 0xFF, // LDH (IE), A
		0xFB, // EI
	}
	handler := []byte{
		0xF0, 0x00, // LDH A, (P1)
		0xE0, 0x82, // LDH (0x82), A
		0xD9, // RETI
	}
	rom := testROM(map[uint16][]byte{
		0x0060: handler,
		0x0100: append(program, haltLoop...),
	})
	gb, err := New(rom)
	require.NoError(t, err)

	gb.Run(1000)
	gb.SetJoypad(0x01) // press A
	gb.Run(1000)

	recorded := gb.Bus().ReadPassive(0xFF82)
	assert.NotZero(t, recorded)
	assert.Zero(t, recorded&0x01, "A reads low while pressed")
}
