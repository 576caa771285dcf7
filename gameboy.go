// Package dotmatrix implements the core of a cycle-accurate DMG Game Boy
// emulator: CPU interpreter, bus with per-M-cycle component ticking, and
// the FIFO-based PPU pixel pipeline. Frontends drive it through Run and the
// published snapshots; nothing in here touches a display or audio device.
package dotmatrix

import (
	"fmt"
	"io"

	"github.com/teodor/go-dotmatrix/dotmatrix/bus"
	"github.com/teodor/go-dotmatrix/dotmatrix/cart"
	"github.com/teodor/go-dotmatrix/dotmatrix/cpu"
	"github.com/teodor/go-dotmatrix/dotmatrix/debug"
	"github.com/teodor/go-dotmatrix/dotmatrix/video"
)

// Gameboy aggregates the CPU and the bus. All emulation state lives inside
// this struct; it is driven from a single goroutine.
type Gameboy struct {
	cpu *cpu.CPU
	bus *bus.Bus

	snapshots *debug.TripleBuffer
	lastFrame uint64
}

type config struct {
	bootROM      []byte
	serialWriter io.Writer
}

// Option configures the Gameboy at construction time.
type Option func(*config)

// WithBootROM substitutes a host-supplied 256-byte boot image for the
// embedded stub.
func WithBootROM(data []byte) Option {
	return func(c *config) { c.bootROM = data }
}

// WithSerialWriter attaches a sink receiving every byte sent out the link
// port.
func WithSerialWriter(w io.Writer) Option {
	return func(c *config) { c.serialWriter = w }
}

// New constructs a Gameboy from a cartridge image. The image must be at
// least 32 KiB and use a supported mapper.
func New(rom []byte, opts ...Option) (*Gameboy, error) {
	cfg := config{bootROM: bootStub[:]}
	for _, opt := range opts {
		opt(&cfg)
	}

	mapper, err := cart.FromBytes(rom)
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}

	b := bus.New(mapper, cfg.bootROM)
	if cfg.serialWriter != nil {
		b.Serial.SetWriter(cfg.serialWriter)
	}

	return &Gameboy{
		cpu:       cpu.New(b),
		bus:       b,
		snapshots: debug.NewTripleBuffer(),
	}, nil
}

// Run simulates at least minCycles M-cycles and returns the number actually
// consumed. It can over-run by a bounded amount because instructions are
// indivisible.
func (gb *Gameboy) Run(minCycles uint64) uint64 {
	start := gb.bus.Cycle()
	for gb.bus.Cycle()-start < minCycles {
		gb.cpu.Step()
		if fc := gb.bus.PPU.FrameCount(); fc != gb.lastFrame {
			gb.lastFrame = fc
			gb.publishSnapshot()
		}
	}
	return gb.bus.Cycle() - start
}

func (gb *Gameboy) publishSnapshot() {
	slot := gb.snapshots.WriteSlot()
	slot.CPU = gb.cpu.Snapshot()
	copy(slot.Framebuffer[:], gb.bus.PPU.Framebuffer().ToSlice())
	copy(slot.TileData[:], gb.bus.PPU.TileData())
	slot.Frame = gb.lastFrame
	gb.snapshots.Publish()
}

// SetJoypad replaces the joypad state. Bits 0-3 are A/B/Select/Start and
// bits 4-7 Right/Left/Up/Down; 1 means pressed. Safe to call from the host
// input thread.
func (gb *Gameboy) SetJoypad(bits uint8) {
	gb.bus.Joypad.SetInput(bits)
}

// SetSerialWriter attaches a link-port sink after construction.
func (gb *Gameboy) SetSerialWriter(w io.Writer) {
	gb.bus.Serial.SetWriter(w)
}

// Framebuffer returns the last committed frame of 2-bit shades.
func (gb *Gameboy) Framebuffer() *video.FrameBuffer {
	return gb.bus.PPU.Framebuffer()
}

// CPUSnapshot returns an observable copy of the register file.
func (gb *Gameboy) CPUSnapshot() cpu.Snapshot {
	return gb.cpu.Snapshot()
}

// VRAMTileData returns a copy of the tile data region of VRAM.
func (gb *Gameboy) VRAMTileData() []uint8 {
	return gb.bus.PPU.TileData()
}

// Snapshots returns the triple-buffered per-frame snapshot channel for a
// frontend running on another thread.
func (gb *Gameboy) Snapshots() *debug.TripleBuffer {
	return gb.snapshots
}

// Bus exposes the bus for tests and debug tooling.
func (gb *Gameboy) Bus() *bus.Bus {
	return gb.bus
}
