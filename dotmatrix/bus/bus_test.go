package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teodor/go-dotmatrix/dotmatrix/addr"
	"github.com/teodor/go-dotmatrix/dotmatrix/cart"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	rom := make([]byte, 0x8000)
	rom[0x0000] = 0x42
	mapper, err := cart.FromBytes(rom)
	require.NoError(t, err)
	return New(mapper, nil)
}

func TestBus_ticksOncePerAccess(t *testing.T) {
	b := newTestBus(t)

	start := b.Cycle()
	b.Read(0xC000)
	assert.Equal(t, start+1, b.Cycle())
	b.Write(0xC000, 0x01)
	assert.Equal(t, start+2, b.Cycle())

	// Passive accesses do not advance time
	b.ReadPassive(0xC000)
	b.WritePassive(0xC000, 0x02)
	assert.Equal(t, start+2, b.Cycle())
}

func TestBus_wramAndEcho(t *testing.T) {
	b := newTestBus(t)

	b.Write(0xC123, 0x55)
	assert.Equal(t, uint8(0x55), b.Read(0xC123))
	assert.Equal(t, uint8(0x55), b.Read(0xE123), "echo RAM mirrors WRAM")

	b.Write(0xE234, 0x66)
	assert.Equal(t, uint8(0x66), b.Read(0xC234))
}

func TestBus_hram(t *testing.T) {
	b := newTestBus(t)

	b.Write(0xFF80, 0x11)
	b.Write(0xFFFE, 0x22)
	assert.Equal(t, uint8(0x11), b.Read(0xFF80))
	assert.Equal(t, uint8(0x22), b.Read(0xFFFE))
}

func TestBus_interruptRegisters(t *testing.T) {
	b := newTestBus(t)

	b.Write(addr.IE, 0x15)
	assert.Equal(t, uint8(0x15), b.Read(addr.IE))

	b.Write(addr.IF, 0xFF)
	assert.Equal(t, uint8(0xFF), b.Read(addr.IF), "IF upper bits read as 1")

	b.Write(addr.IF, 0x00)
	b.RequestInterrupt(addr.TimerInterrupt)
	assert.Equal(t, uint8(0xE4), b.Read(addr.IF))
	assert.Equal(t, uint8(0x04), b.Pending())

	b.ClearInterrupt(addr.TimerInterrupt)
	assert.Zero(t, b.Pending())
}

func TestBus_unmappedIO(t *testing.T) {
	b := newTestBus(t)

	assert.Equal(t, uint8(0xFF), b.Read(0xFF4D))
	// Writes to unmapped registers are discarded without effect
	b.Write(0xFF4D, 0x12)
	assert.Equal(t, uint8(0xFF), b.Read(0xFF4D))
}

func TestBus_bgpRoundTrip(t *testing.T) {
	b := newTestBus(t)

	b.Write(addr.BGP, 0xE4)
	assert.Equal(t, uint8(0xE4), b.Read(addr.BGP))
}

func TestBus_bootROMOverlay(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0000] = 0x42
	mapper, err := cart.FromBytes(rom)
	require.NoError(t, err)

	boot := make([]byte, 0x100)
	boot[0x00] = 0xAA
	b := New(mapper, boot)

	assert.Equal(t, uint8(0xAA), b.Read(0x0000))
	assert.Equal(t, uint8(0x00), b.Read(addr.BOOT))

	// A zero write does not disable the overlay
	b.Write(addr.BOOT, 0x00)
	assert.Equal(t, uint8(0xAA), b.Read(0x0000))

	b.Write(addr.BOOT, 0x01)
	assert.Equal(t, uint8(0x42), b.Read(0x0000))
	assert.Equal(t, uint8(0x01), b.Read(addr.BOOT))

	// Disabling is one-way
	b.Write(addr.BOOT, 0x00)
	assert.Equal(t, uint8(0x42), b.Read(0x0000))
}

func TestBus_oamDMA(t *testing.T) {
	b := newTestBus(t)

	for i := uint16(0); i < 0xA0; i++ {
		b.WritePassive(0xC100+i, uint8(i)+1)
	}

	b.Write(addr.DMA, 0xC1)
	require.True(t, b.PPU.DMAInProgress())

	// The CPU sees 0xFF outside the I/O strip and HRAM during the transfer
	assert.Equal(t, uint8(0xFF), b.Read(0xC100))
	b.Write(0xFF80, 0x77)
	assert.Equal(t, uint8(0x77), b.Read(0xFF80))

	ticksLeft := 0
	for b.PPU.DMAInProgress() {
		b.Tick()
		ticksLeft++
	}
	// 3 bytes already moved by the accesses above
	assert.Equal(t, 0xA0-3, ticksLeft)

	assert.Equal(t, uint8(0x01), b.ReadPassive(0xFE00))
	assert.Equal(t, uint8(0xA0), b.ReadPassive(0xFE9F))
}

func TestBus_serialForwarding(t *testing.T) {
	b := newTestBus(t)

	b.Write(addr.SB, 'H')
	b.Write(addr.SC, 0x81)

	assert.NotZero(t, b.Read(addr.IF)&addr.SerialInterrupt.Mask(), "serial interrupt flagged")
}

func TestBus_timerInterruptAggregation(t *testing.T) {
	b := newTestBus(t)

	b.Write(addr.TAC, 0x05)
	b.Write(addr.TIMA, 0xFF)
	for i := 0; i < 8; i++ {
		b.Tick()
	}
	assert.NotZero(t, b.Read(addr.IF)&addr.TimerInterrupt.Mask())
}

func TestBus_unusableRegion(t *testing.T) {
	b := newTestBus(t)

	// LCD off (the PPU has not been enabled), so the unusable region reads 0x00
	assert.Equal(t, uint8(0x00), b.Read(0xFEA0))
	b.Write(0xFEA5, 0x12)
	assert.Equal(t, uint8(0x00), b.Read(0xFEA5))
}
