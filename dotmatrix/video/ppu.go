package video

import (
	"sort"

	"github.com/teodor/go-dotmatrix/dotmatrix/bit"
)

// Mode is the PPU mode as exposed in STAT bits 0-1.
type Mode uint8

const (
	// ModeHBlank is the horizontal blanking period after drawing a line.
	ModeHBlank Mode = 0
	// ModeVBlank covers scanlines 144-153.
	ModeVBlank Mode = 1
	// ModeOAMScan is the sprite-selection phase at the start of a scanline.
	ModeOAMScan Mode = 2
	// ModeDrawing is the pixel-emission phase.
	ModeDrawing Mode = 3
)

const (
	dotsPerScanline    = 456
	oamScanDots        = 80
	visibleScanlines   = 144
	lastScanline       = 153
	maxScanlineSprites = 10
)

// PPU implements the DMG pixel processing unit: VRAM/OAM storage, the mode
// state machine, the pixel fetcher with its two FIFOs, and OAM DMA state.
// It is ticked once per M-cycle (four dots) by the bus.
type PPU struct {
	vram [0x2000]uint8
	oam  [0xA0]uint8

	lcdControl uint8
	lcdStatus  uint8 // only the writable bits 3-6 are stored here
	scy, scx   uint8
	ly, lyc    uint8
	lcdX       uint8
	bgp        uint8
	obp0, obp1 uint8
	wy, wx     uint8

	mode        Mode
	scanlineDot uint16

	fetcher pixelFetcher

	scanlineSprites     [maxScanlineSprites]Sprite
	scanlineSpriteCount int

	windowTriggered bool
	windowLine      uint8

	dmaRunning bool
	dmaSrc     uint8
	dmaIdx     uint8

	frameCount uint64
	working    *FrameBuffer
	frame      *FrameBuffer
}

// New creates a PPU in the initial post-reset state.
func New() *PPU {
	return &PPU{
		bgp:       0xFC,
		obp0:      0xFF,
		obp1:      0xFF,
		mode:      ModeOAMScan,
		working:   NewFrameBuffer(),
		frame:     NewFrameBuffer(),
	}
}

// Tick advances the PPU by one M-cycle (four dots) and reports whether a
// VBlank or STAT interrupt edge occurred.
func (p *PPU) Tick() (vblank, stat bool) {
	if !bit.IsSet(7, p.lcdControl) {
		return false, false
	}
	for i := 0; i < 4; i++ {
		v, s := p.stepDot()
		vblank = vblank || v
		stat = stat || s
	}
	return vblank, stat
}

// stepDot advances one dot of the scanline state machine.
// http://pixelbits.16-b.it/GBEDG/ppu/#the-pixel-fifo
func (p *PPU) stepDot() (vblank, stat bool) {
	switch p.mode {
	case ModeOAMScan:
		// One OAM entry is inspected every two dots.
		if p.scanlineDot%2 == 0 {
			if p.scanlineDot == 0 {
				p.scanlineSpriteCount = 0
				if p.ly == p.wy {
					p.windowTriggered = true
				}
			}
			obj := p.sprite(int(p.scanlineDot) / 2)
			height := uint8(8)
			if bit.IsSet(2, p.lcdControl) {
				height = 16
			}
			if obj.x != 0 &&
				p.ly+16 >= obj.y &&
				p.ly+16 < obj.y+height &&
				p.scanlineSpriteCount != maxScanlineSprites {
				p.scanlineSprites[p.scanlineSpriteCount] = obj
				p.scanlineSpriteCount++
			}
		}
		if p.scanlineDot == oamScanDots-1 {
			// Stable sort: equal X keeps OAM order.
			sort.SliceStable(p.scanlineSprites[:p.scanlineSpriteCount], func(i, j int) bool {
				return p.scanlineSprites[i].x < p.scanlineSprites[j].x
			})
			p.fetcher = pixelFetcher{}
			p.fetcher.bgExcess = p.scx & 7
			p.lcdX = 0
			p.mode = ModeDrawing
		}
		p.scanlineDot++

	case ModeDrawing:
		p.scanlineDot++
		p.tickFetcher()
		if p.fetcher.bgFIFO.count != 0 {
			if p.fetcher.bgExcess == 0 {
				stat = p.emitPixel()
			} else {
				p.fetcher.bgFIFO.pop()
				p.fetcher.bgExcess--
			}
		}

	case ModeHBlank:
		p.scanlineDot++
		if p.scanlineDot == dotsPerScanline {
			p.ly++
			if p.fetcher.bgWindow {
				p.windowLine++
			}
			p.scanlineDot = 0
			if p.ly == p.lyc && bit.IsSet(6, p.lcdStatus) {
				stat = true
			}
			if p.ly == visibleScanlines {
				vblank = true
				if bit.IsSet(4, p.lcdStatus) {
					stat = true
				}
				p.windowTriggered = false
				p.frame.CopyFrom(p.working)
				p.frameCount++
				p.mode = ModeVBlank
			} else {
				if bit.IsSet(5, p.lcdStatus) {
					stat = true
				}
				p.mode = ModeOAMScan
			}
		}

	case ModeVBlank:
		p.scanlineDot++
		if p.scanlineDot == dotsPerScanline {
			p.scanlineDot = 0
			p.ly++
			if p.ly == p.lyc && bit.IsSet(6, p.lcdStatus) {
				stat = true
			}
			if p.ly > lastScanline {
				p.ly = 0
				p.windowLine = 0
				if bit.IsSet(5, p.lcdStatus) {
					stat = true
				}
				p.mode = ModeOAMScan
			}
		}
	}
	return vblank, stat
}

// emitPixel pops one BG pixel, resolves it against a queued sprite pixel and
// writes the resulting shade. Reports a STAT edge when the line completes.
func (p *PPU) emitPixel() (stat bool) {
	bg := p.fetcher.bgFIFO.pop()
	bgCol := WhiteShade
	if bg&pixelBGEnabled != 0 {
		bgCol = (p.bgp >> ((bg & pixelColorMask) * 2)) & 3
	}

	col := bgCol
	if p.fetcher.spriteFIFO.count != 0 {
		sp := p.fetcher.spriteFIFO.pop()
		if sp&pixelColorMask != 0 {
			if sp&pixelOBJPriority != 0 && bg&pixelColorMask != 0 {
				col = bgCol
			} else {
				pal := p.obp0
				if sp&pixelOBJPalette != 0 {
					pal = p.obp1
				}
				col = (pal >> ((sp & pixelColorMask) * 2)) & 3
			}
		}
	}

	p.working.SetPixel(int(p.lcdX), int(p.ly), col)
	p.lcdX++
	if p.lcdX == FramebufferWidth {
		p.mode = ModeHBlank
		if bit.IsSet(3, p.lcdStatus) {
			stat = true
		}
	}
	return stat
}

// ReadVRAM handles a CPU read from 0x8000-0x9FFF. The region is unreadable
// while the PPU is drawing.
func (p *PPU) ReadVRAM(addr uint16) uint8 {
	if p.mode == ModeDrawing && bit.IsSet(7, p.lcdControl) {
		return 0xFF
	}
	return p.vram[addr&0x1FFF]
}

// WriteVRAM handles a CPU write to 0x8000-0x9FFF.
func (p *PPU) WriteVRAM(addr uint16, value uint8) {
	if p.mode == ModeDrawing && bit.IsSet(7, p.lcdControl) {
		return
	}
	p.vram[addr&0x1FFF] = value
}

// ReadOAM handles a CPU read from 0xFE00-0xFE9F. The region is unreadable
// during OAM scan and drawing.
func (p *PPU) ReadOAM(addr uint16) uint8 {
	index := addr & 0xFF
	if index >= 0xA0 {
		return 0xFF
	}
	if p.mode >= ModeOAMScan && bit.IsSet(7, p.lcdControl) {
		return 0xFF
	}
	return p.oam[index]
}

// WriteOAM handles a CPU write to 0xFE00-0xFE9F.
func (p *PPU) WriteOAM(addr uint16, value uint8) {
	index := addr & 0xFF
	if index >= 0xA0 {
		return
	}
	if p.mode >= ModeOAMScan && bit.IsSet(7, p.lcdControl) {
		return
	}
	p.oam[index] = value
}

// Mode returns the current PPU mode.
func (p *PPU) Mode() Mode {
	return p.mode
}

// LCDEnabled reports whether LCDC bit 7 is set.
func (p *PPU) LCDEnabled() bool {
	return bit.IsSet(7, p.lcdControl)
}

// Register accessors; the bus routes I/O reads and writes here.

func (p *PPU) ReadLCDC() uint8 { return p.lcdControl }

// WriteLCDC updates LCD control. Turning the LCD off blanks the visible
// frame and resets the scanline state.
func (p *PPU) WriteLCDC(value uint8) {
	wasOn := bit.IsSet(7, p.lcdControl)
	p.lcdControl = value
	on := bit.IsSet(7, value)
	if wasOn && !on {
		p.ly = 0
		p.lcdX = 0
		p.scanlineDot = 0
		p.mode = ModeHBlank
		p.working.Clear()
		p.frame.Clear()
	}
	if !wasOn && on {
		p.scanlineDot = 0
		p.mode = ModeOAMScan
	}
}

// ReadSTAT composes the status register from the stored enable bits, the
// LY=LYC coincidence flag and the current mode. Bit 7 always reads as 1.
func (p *PPU) ReadSTAT() uint8 {
	coincidence := uint8(0)
	if p.ly == p.lyc {
		coincidence = 1 << 2
	}
	return 0x80 | p.lcdStatus | coincidence | uint8(p.mode)
}

// WriteSTAT stores the interrupt enable bits; only bits 3-6 are writable.
func (p *PPU) WriteSTAT(value uint8) {
	p.lcdStatus = value & 0x78
}

func (p *PPU) ReadSCY() uint8 { return p.scy }

func (p *PPU) WriteSCY(value uint8) { p.scy = value }

func (p *PPU) ReadSCX() uint8 { return p.scx }

func (p *PPU) WriteSCX(value uint8) { p.scx = value }

func (p *PPU) ReadLY() uint8 { return p.ly }

func (p *PPU) ReadLYC() uint8 { return p.lyc }

func (p *PPU) WriteLYC(value uint8) { p.lyc = value }

func (p *PPU) ReadBGP() uint8 { return p.bgp }

func (p *PPU) WriteBGP(value uint8) { p.bgp = value }

func (p *PPU) ReadOBP0() uint8 { return p.obp0 }

func (p *PPU) WriteOBP0(value uint8) { p.obp0 = value }

func (p *PPU) ReadOBP1() uint8 { return p.obp1 }

func (p *PPU) WriteOBP1(value uint8) { p.obp1 = value }

func (p *PPU) ReadWY() uint8 { return p.wy }

func (p *PPU) WriteWY(value uint8) { p.wy = value }

func (p *PPU) ReadWX() uint8 { return p.wx }

func (p *PPU) WriteWX(value uint8) { p.wx = value }

// ReadDMA returns the last written DMA source page.
func (p *PPU) ReadDMA() uint8 { return p.dmaSrc }

// WriteDMA starts a 160-byte OAM transfer from value<<8. The bus performs
// the per-cycle byte moves on the PPU's behalf.
func (p *PPU) WriteDMA(value uint8) {
	p.dmaRunning = true
	p.dmaIdx = 0
	p.dmaSrc = value
}

// DMAInProgress reports whether an OAM DMA transfer is running.
func (p *PPU) DMAInProgress() bool {
	return p.dmaRunning
}

// DMANextSource returns the source address of the next byte to transfer.
func (p *PPU) DMANextSource() uint16 {
	return uint16(p.dmaSrc)<<8 | uint16(p.dmaIdx)
}

// DMATransfer stores one transferred byte into OAM, bypassing the mode
// blocking, and retires the transfer after 160 bytes.
func (p *PPU) DMATransfer(value uint8) {
	p.oam[p.dmaIdx] = value
	p.dmaIdx++
	if p.dmaIdx == 0xA0 {
		p.dmaRunning = false
	}
}

// FrameCount returns the number of frames committed so far.
func (p *PPU) FrameCount() uint64 {
	return p.frameCount
}

// Framebuffer returns the last committed frame.
func (p *PPU) Framebuffer() *FrameBuffer {
	return p.frame
}

// TileData returns a copy of the tile data region of VRAM (0x8000-0x97FF).
func (p *PPU) TileData() []uint8 {
	data := make([]uint8, 0x1800)
	copy(data, p.vram[:0x1800])
	return data
}
