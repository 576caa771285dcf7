package video

import "github.com/teodor/go-dotmatrix/dotmatrix/bit"

type fetcherState uint8

const (
	fetchGetTile fetcherState = iota
	fetchGetTileDataLow
	fetchGetTileDataHigh
	fetchPush
)

// pixelFetcher holds the state of the background/window pipeline, the
// sprite pipeline that can preempt it, and both pixel FIFOs. It is reset at
// the start of every scanline's drawing phase.
type pixelFetcher struct {
	spriteState   fetcherState
	spriteTicks   int
	spriteFIFO    pixelFIFO
	spriteNextIdx int
	spriteObj     Sprite
	spriteTile    uint8
	spriteLow     uint8
	spriteHigh    uint8

	bgState  fetcherState
	bgTicks  int
	bgFIFO   pixelFIFO
	bgTile   uint8
	bgLow    uint8
	bgHigh   uint8
	bgExcess uint8 // SCX&7 pixels discarded at line start
	bgWindow bool  // fetching the window instead of the background

	x              uint8 // BG/window tile column
	fetchingSprite bool
}

// tickFetcher advances the fetcher by one dot, preferring a pending sprite
// fetch over background work.
func (p *PPU) tickFetcher() {
	if bit.IsSet(1, p.lcdControl) &&
		!p.fetcher.fetchingSprite &&
		p.fetcher.spriteNextIdx != p.scanlineSpriteCount &&
		int(p.scanlineSprites[p.fetcher.spriteNextIdx].x)-8 <= int(p.lcdX) {
		p.fetcher.fetchingSprite = true
		p.fetcher.spriteTicks = 0
		p.fetcher.spriteState = fetchGetTile
		p.fetcher.spriteObj = p.scanlineSprites[p.fetcher.spriteNextIdx]
		p.fetcher.spriteNextIdx++
	}

	if p.fetcher.fetchingSprite {
		p.tickFetcherSprite()
		return
	}

	if p.windowTriggered &&
		bit.IsSet(5, p.lcdControl) &&
		!p.fetcher.bgWindow &&
		int(p.lcdX) >= int(p.wx)-7 {
		p.fetcher.bgWindow = true
		p.fetcher.bgFIFO.clear()
		p.fetcher.x = 0
		p.fetcher.bgState = fetchGetTile
	}
	p.tickFetcherBG()
}

func (p *PPU) tickFetcherSprite() {
	// Each stage takes two dots.
	p.fetcher.spriteTicks++
	if p.fetcher.spriteTicks%2 == 1 {
		return
	}

	switch p.fetcher.spriteState {
	case fetchGetTile:
		p.fetcher.spriteTile = p.fetcher.spriteObj.tile
		p.fetcher.spriteState = fetchGetTileDataLow

	case fetchGetTileDataLow, fetchGetTileDataHigh:
		tileAddr := int(p.fetcher.spriteTile) * 16
		dy := int(p.ly) - (int(p.fetcher.spriteObj.y) - 16)
		var offset int
		if bit.IsSet(objFlagFlipY, p.fetcher.spriteObj.flags) {
			if bit.IsSet(2, p.lcdControl) {
				offset = 30 - dy*2
			} else {
				offset = 14 - dy*2
			}
		} else {
			offset = dy * 2
		}
		if p.fetcher.spriteState == fetchGetTileDataLow {
			p.fetcher.spriteLow = p.vram[(tileAddr+offset)&0x1FFF]
			p.fetcher.spriteState = fetchGetTileDataHigh
		} else {
			p.fetcher.spriteHigh = p.vram[(tileAddr+offset+1)&0x1FFF]
			p.fetcher.spriteState = fetchPush
		}

	case fetchPush:
		p.pushSpritePixels()
		p.fetcher.fetchingSprite = false
		p.fetcher.spriteState = fetchGetTile
	}
}

// pushSpritePixels merges the fetched row into the sprite FIFO. Slots
// already holding an opaque pixel keep it (earlier sprites win); transparent
// slots are overwritten and the queue is extended up to eight pixels.
func (p *PPU) pushSpritePixels() {
	flags := p.fetcher.spriteObj.flags
	flipX := bit.IsSet(objFlagFlipX, flags)

	for n := 0; n < 8; n++ {
		i := uint8(7 - n)
		if flipX {
			i = uint8(n)
		}
		px := bit.GetBitValue(i, p.fetcher.spriteLow) |
			bit.GetBitValue(i, p.fetcher.spriteHigh)<<1
		if bit.IsSet(objFlagPalette, flags) {
			px |= pixelOBJPalette
		}
		if bit.IsSet(objFlagPriority, flags) {
			px |= pixelOBJPriority
		}

		fifo := &p.fetcher.spriteFIFO
		if n < int(fifo.count) {
			idx := (fifo.readHead + uint8(n)) % uint8(len(fifo.inner))
			if fifo.inner[idx]&pixelColorMask == 0 {
				fifo.inner[idx] = px
			}
		} else {
			fifo.push(px)
		}
	}
}

func (p *PPU) tickFetcherBG() {
	// Each stage takes two dots.
	p.fetcher.bgTicks++
	if p.fetcher.bgTicks%2 == 1 {
		return
	}

	switch p.fetcher.bgState {
	case fetchGetTile:
		mapBit := uint8(3)
		if p.fetcher.bgWindow {
			mapBit = 6
		}
		mapAddr := 0x1800
		if bit.IsSet(mapBit, p.lcdControl) {
			mapAddr = 0x1C00
		}
		var x, y uint8
		if p.fetcher.bgWindow {
			x = p.fetcher.x
			y = p.windowLine / 8
		} else {
			x = (p.fetcher.x + p.scx/8) & 0x1F
			y = (p.ly + p.scy) / 8
		}
		p.fetcher.bgTile = p.vram[mapAddr+((int(y)*32+int(x))&0x3FF)]
		p.fetcher.bgState = fetchGetTileDataLow

	case fetchGetTileDataLow, fetchGetTileDataHigh:
		var tileAddr int
		if bit.IsSet(4, p.lcdControl) {
			tileAddr = int(p.fetcher.bgTile) * 16
		} else {
			tileAddr = 0x1000 + int(int8(p.fetcher.bgTile))*16
		}
		var offset int
		if p.fetcher.bgWindow {
			offset = int(p.windowLine&7) * 2
		} else {
			offset = int((p.ly+p.scy)&7) * 2
		}
		if p.fetcher.bgState == fetchGetTileDataLow {
			p.fetcher.bgLow = p.vram[(tileAddr+offset)&0x1FFF]
			p.fetcher.bgState = fetchGetTileDataHigh
		} else {
			p.fetcher.bgHigh = p.vram[(tileAddr+offset+1)&0x1FFF]
			p.fetcher.bgState = fetchPush
		}

	case fetchPush:
		if p.fetcher.bgFIFO.count == 0 {
			for i := 7; i >= 0; i-- {
				px := bit.GetBitValue(uint8(i), p.fetcher.bgLow) |
					bit.GetBitValue(uint8(i), p.fetcher.bgHigh)<<1
				if bit.IsSet(0, p.lcdControl) {
					px |= pixelBGEnabled
				}
				p.fetcher.bgFIFO.push(px)
			}
			p.fetcher.x++
			p.fetcher.bgState = fetchGetTile
		}
	}
}
