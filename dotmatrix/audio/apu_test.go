package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teodor/go-dotmatrix/dotmatrix/addr"
)

func TestAPU_registerStorage(t *testing.T) {
	a := New()

	a.WriteRegister(addr.NR11, 0x80)
	a.WriteRegister(addr.NR50, 0x77)
	assert.Equal(t, uint8(0x80), a.ReadRegister(addr.NR11))
	assert.Equal(t, uint8(0x77), a.ReadRegister(addr.NR50))
}

func TestAPU_waveRAM(t *testing.T) {
	a := New()

	for i := uint16(0); i < waveRAMSize; i++ {
		a.WriteRegister(addr.WaveRAMStart+i, uint8(i)*0x11)
	}
	assert.Equal(t, uint8(0x00), a.ReadRegister(addr.WaveRAMStart))
	assert.Equal(t, uint8(0xFF), a.ReadRegister(addr.WaveRAMEnd))
}

func TestAPU_power(t *testing.T) {
	a := New()

	assert.Equal(t, uint8(0x70), a.ReadRegister(addr.NR52))
	a.WriteRegister(addr.NR52, 0x80)
	assert.Equal(t, uint8(0xF0), a.ReadRegister(addr.NR52))
	a.WriteRegister(addr.NR52, 0x00)
	assert.Equal(t, uint8(0x70), a.ReadRegister(addr.NR52))
}

func TestAPU_unmappedReads(t *testing.T) {
	a := New()
	// 0xFF15 and 0xFF1F are holes in the register map
	assert.Equal(t, uint8(0xFF), a.ReadRegister(0xFF15))
	assert.Equal(t, uint8(0xFF), a.ReadRegister(0xFF1F))
}
