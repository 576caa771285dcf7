package bus

import (
	"fmt"
	"log/slog"

	"github.com/teodor/go-dotmatrix/dotmatrix/addr"
	"github.com/teodor/go-dotmatrix/dotmatrix/audio"
	"github.com/teodor/go-dotmatrix/dotmatrix/cart"
	"github.com/teodor/go-dotmatrix/dotmatrix/serial"
	"github.com/teodor/go-dotmatrix/dotmatrix/video"
)

// Bus holds everything the CPU interacts with and is the single mutation
// surface of the core. Read and Write advance wall-clock time by exactly
// one M-cycle before touching memory; the passive variants are for the DMA
// engine and debug tooling and do not tick.
type Bus struct {
	cart cart.Mapper

	PPU    *video.PPU
	APU    *audio.APU
	Timer  Timer
	Serial *serial.Port
	Joypad *Joypad

	wram [0x2000]uint8
	hram [0x7F]uint8

	bootROM      [0x100]uint8
	bootEnabled  bool
	bootDisabled bool

	interruptFlag   uint8
	interruptEnable uint8

	cycle uint64
}

// New wires a bus around the given mapper. A 256-byte boot image overlays
// 0x0000-0x00FF until the first nonzero write to 0xFF50.
func New(mapper cart.Mapper, bootROM []byte) *Bus {
	b := &Bus{
		cart:   mapper,
		PPU:    video.New(),
		APU:    audio.New(),
		Joypad: NewJoypad(),
	}
	b.Serial = serial.New(func() { b.RequestInterrupt(addr.SerialInterrupt) })
	if len(bootROM) >= 0x100 {
		copy(b.bootROM[:], bootROM)
		b.bootEnabled = true
	} else {
		b.bootDisabled = true
	}
	return b
}

// Tick processes one M-cycle: timer, PPU and APU each advance exactly once,
// interrupt edges are folded into IF, and a running OAM DMA moves one byte.
func (b *Bus) Tick() {
	if b.Timer.Tick() {
		b.interruptFlag |= addr.TimerInterrupt.Mask()
	}
	vblank, stat := b.PPU.Tick()
	if vblank {
		b.interruptFlag |= addr.VBlankInterrupt.Mask()
	}
	if stat {
		b.interruptFlag |= addr.LCDSTATInterrupt.Mask()
	}
	b.APU.Tick()
	if b.Joypad.Tick() {
		b.interruptFlag |= addr.JoypadInterrupt.Mask()
	}

	// The bus reads DMA source bytes on the PPU's behalf.
	if b.PPU.DMAInProgress() {
		b.PPU.DMATransfer(b.ReadPassive(b.PPU.DMANextSource()))
	}

	b.cycle++
}

// Cycle returns the number of M-cycles simulated so far.
func (b *Bus) Cycle() uint64 {
	return b.cycle
}

// RequestInterrupt sets the given interrupt's bit in IF.
func (b *Bus) RequestInterrupt(interrupt addr.Interrupt) {
	b.interruptFlag |= interrupt.Mask()
}

// Pending returns the set of interrupts that are both enabled and flagged.
func (b *Bus) Pending() uint8 {
	return b.interruptEnable & b.interruptFlag & 0x1F
}

// ClearInterrupt clears one bit of IF; called by the CPU when servicing.
func (b *Bus) ClearInterrupt(interrupt addr.Interrupt) {
	b.interruptFlag &^= interrupt.Mask()
}

// dmaAccessible reports whether the CPU may touch an address while OAM DMA
// is running: only the I/O strip, HRAM and IE remain reachable.
func dmaAccessible(address uint16) bool {
	return address >= 0xFF00
}

// Read ticks one M-cycle and then reads a byte.
func (b *Bus) Read(address uint16) uint8 {
	b.Tick()
	if b.PPU.DMAInProgress() && !dmaAccessible(address) {
		return 0xFF
	}
	return b.ReadPassive(address)
}

// Write ticks one M-cycle and then writes a byte.
func (b *Bus) Write(address uint16, value uint8) {
	b.Tick()
	if b.PPU.DMAInProgress() && !dmaAccessible(address) {
		return
	}
	b.WritePassive(address, value)
}

// ReadPassive reads a byte without advancing time.
func (b *Bus) ReadPassive(address uint16) uint8 {
	switch {
	case address < 0x8000:
		if address < 0x100 && b.bootEnabled && !b.bootDisabled {
			return b.bootROM[address]
		}
		return b.cart.ReadROM(address)
	case address < 0xA000:
		return b.PPU.ReadVRAM(address)
	case address < 0xC000:
		return b.cart.ReadRAM(address)
	case address < 0xE000:
		return b.wram[address&0x1FFF]
	case address < 0xFE00:
		// Echo RAM mirrors 0xC000-0xDDFF
		return b.wram[address&0x1FFF]
	case address < 0xFEA0:
		return b.PPU.ReadOAM(address)
	case address < 0xFF00:
		// Unusable region: reads 0x00 during HBlank/VBlank or while the LCD
		// is off, else 0xFF
		if b.PPU.Mode() <= video.ModeVBlank || !b.PPU.LCDEnabled() {
			return 0x00
		}
		return 0xFF
	case address < 0xFF80:
		return b.readIO(address)
	case address < 0xFFFF:
		return b.hram[address-0xFF80]
	default:
		return b.interruptEnable
	}
}

// WritePassive writes a byte without advancing time.
func (b *Bus) WritePassive(address uint16, value uint8) {
	switch {
	case address < 0x8000:
		b.cart.WriteROM(address, value)
	case address < 0xA000:
		b.PPU.WriteVRAM(address, value)
	case address < 0xC000:
		b.cart.WriteRAM(address, value)
	case address < 0xE000:
		b.wram[address&0x1FFF] = value
	case address < 0xFE00:
		b.wram[address&0x1FFF] = value
	case address < 0xFEA0:
		b.PPU.WriteOAM(address, value)
	case address < 0xFF00:
		// Unusable region: writes are dropped
	case address < 0xFF80:
		b.writeIO(address, value)
	case address < 0xFFFF:
		b.hram[address-0xFF80] = value
	default:
		b.interruptEnable = value
	}
}

// readIO handles reads in the 0xFF00-0xFF7F strip.
func (b *Bus) readIO(address uint16) uint8 {
	switch {
	case address == addr.P1:
		return b.Joypad.ReadP1()
	case address == addr.SB:
		return b.Serial.ReadSB()
	case address == addr.SC:
		return b.Serial.ReadSC()
	case address == addr.DIV:
		return b.Timer.ReadDIV()
	case address == addr.TIMA:
		return b.Timer.ReadTIMA()
	case address == addr.TMA:
		return b.Timer.ReadTMA()
	case address == addr.TAC:
		return b.Timer.ReadTAC()
	case address == addr.IF:
		return 0xE0 | (b.interruptFlag & 0x1F)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return b.APU.ReadRegister(address)
	case address == addr.LCDC:
		return b.PPU.ReadLCDC()
	case address == addr.STAT:
		return b.PPU.ReadSTAT()
	case address == addr.SCY:
		return b.PPU.ReadSCY()
	case address == addr.SCX:
		return b.PPU.ReadSCX()
	case address == addr.LY:
		return b.PPU.ReadLY()
	case address == addr.LYC:
		return b.PPU.ReadLYC()
	case address == addr.DMA:
		return b.PPU.ReadDMA()
	case address == addr.BGP:
		return b.PPU.ReadBGP()
	case address == addr.OBP0:
		return b.PPU.ReadOBP0()
	case address == addr.OBP1:
		return b.PPU.ReadOBP1()
	case address == addr.WY:
		return b.PPU.ReadWY()
	case address == addr.WX:
		return b.PPU.ReadWX()
	case address == addr.BOOT:
		if b.bootDisabled {
			return 0x01
		}
		return 0x00
	default:
		slog.Warn("Unmapped I/O read", "addr", fmt.Sprintf("0x%04X", address))
		return 0xFF
	}
}

// writeIO handles writes in the 0xFF00-0xFF7F strip.
func (b *Bus) writeIO(address uint16, value uint8) {
	switch {
	case address == addr.P1:
		b.Joypad.WriteP1(value)
	case address == addr.SB:
		b.Serial.WriteSB(value)
	case address == addr.SC:
		b.Serial.WriteSC(value)
	case address == addr.DIV:
		b.Timer.WriteDIV(value)
	case address == addr.TIMA:
		b.Timer.WriteTIMA(value)
	case address == addr.TMA:
		b.Timer.WriteTMA(value)
	case address == addr.TAC:
		b.Timer.WriteTAC(value)
	case address == addr.IF:
		b.interruptFlag = value & 0x1F
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		b.APU.WriteRegister(address, value)
	case address == addr.LCDC:
		b.PPU.WriteLCDC(value)
	case address == addr.STAT:
		b.PPU.WriteSTAT(value)
	case address == addr.SCY:
		b.PPU.WriteSCY(value)
	case address == addr.SCX:
		b.PPU.WriteSCX(value)
	case address == addr.LY:
		// LY is read-only
	case address == addr.LYC:
		b.PPU.WriteLYC(value)
	case address == addr.DMA:
		b.PPU.WriteDMA(value)
	case address == addr.BGP:
		b.PPU.WriteBGP(value)
	case address == addr.OBP0:
		b.PPU.WriteOBP0(value)
	case address == addr.OBP1:
		b.PPU.WriteOBP1(value)
	case address == addr.WY:
		b.PPU.WriteWY(value)
	case address == addr.WX:
		b.PPU.WriteWX(value)
	case address == addr.BOOT:
		// Disabling the boot overlay is one-way
		if value != 0 {
			b.bootDisabled = true
		}
	case address == 0xFF7F:
		// Does absolutely nothing, but Tetris writes to it
	default:
		slog.Warn("Unmapped I/O write", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
	}
}
