package audio

import (
	"github.com/teodor/go-dotmatrix/dotmatrix/addr"
	"github.com/teodor/go-dotmatrix/dotmatrix/bit"
)

const waveRAMSize = 16

// APU holds the audio register file. This core revision does not synthesize
// sound: registers and wave RAM are storage so games can program the unit
// and read back what they wrote, and NR52 tracks the power bit.
type APU struct {
	enabled bool

	NR10, NR11, NR12, NR13, NR14 uint8 // Channel 1
	NR21, NR22, NR23, NR24       uint8 // Channel 2
	NR30, NR31, NR32, NR33, NR34 uint8 // Channel 3
	NR41, NR42, NR43, NR44       uint8 // Channel 4
	NR50, NR51                   uint8 // Global controls
	waveRAM                      [waveRAMSize]uint8
}

// New creates an APU with power off.
func New() *APU {
	return &APU{}
}

// Tick advances the APU by one M-cycle. With no synthesis there is no
// time-dependent state to update.
func (a *APU) Tick() {}

// ReadRegister reads an APU register or wave RAM byte.
func (a *APU) ReadRegister(address uint16) uint8 {
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		return a.waveRAM[address-addr.WaveRAMStart]
	}

	switch address {
	case addr.NR10:
		return a.NR10
	case addr.NR11:
		return a.NR11
	case addr.NR12:
		return a.NR12
	case addr.NR13:
		return a.NR13
	case addr.NR14:
		return a.NR14
	case addr.NR21:
		return a.NR21
	case addr.NR22:
		return a.NR22
	case addr.NR23:
		return a.NR23
	case addr.NR24:
		return a.NR24
	case addr.NR30:
		return a.NR30
	case addr.NR31:
		return a.NR31
	case addr.NR32:
		return a.NR32
	case addr.NR33:
		return a.NR33
	case addr.NR34:
		return a.NR34
	case addr.NR41:
		return a.NR41
	case addr.NR42:
		return a.NR42
	case addr.NR43:
		return a.NR43
	case addr.NR44:
		return a.NR44
	case addr.NR50:
		return a.NR50
	case addr.NR51:
		return a.NR51
	case addr.NR52:
		if a.enabled {
			return 0xF0
		}
		return 0x70
	default:
		return 0xFF
	}
}

// WriteRegister writes an APU register or wave RAM byte.
func (a *APU) WriteRegister(address uint16, value uint8) {
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		a.waveRAM[address-addr.WaveRAMStart] = value
		return
	}

	switch address {
	case addr.NR10:
		a.NR10 = value
	case addr.NR11:
		a.NR11 = value
	case addr.NR12:
		a.NR12 = value
	case addr.NR13:
		a.NR13 = value
	case addr.NR14:
		a.NR14 = value
	case addr.NR21:
		a.NR21 = value
	case addr.NR22:
		a.NR22 = value
	case addr.NR23:
		a.NR23 = value
	case addr.NR24:
		a.NR24 = value
	case addr.NR30:
		a.NR30 = value
	case addr.NR31:
		a.NR31 = value
	case addr.NR32:
		a.NR32 = value
	case addr.NR33:
		a.NR33 = value
	case addr.NR34:
		a.NR34 = value
	case addr.NR41:
		a.NR41 = value
	case addr.NR42:
		a.NR42 = value
	case addr.NR43:
		a.NR43 = value
	case addr.NR44:
		a.NR44 = value
	case addr.NR50:
		a.NR50 = value
	case addr.NR51:
		a.NR51 = value
	case addr.NR52:
		a.enabled = bit.IsSet(7, value)
	}
}
