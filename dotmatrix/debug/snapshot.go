package debug

import (
	"sync/atomic"

	"github.com/teodor/go-dotmatrix/dotmatrix/cpu"
	"github.com/teodor/go-dotmatrix/dotmatrix/video"
)

// Snapshot is the complete observable state published once per frame:
// the committed framebuffer, the VRAM tile region and the register file.
type Snapshot struct {
	CPU         cpu.Snapshot
	Framebuffer [video.FramebufferSize]uint8
	TileData    [0x1800]uint8
	Frame       uint64
}

const freshBit = 0x4

// TripleBuffer hands full snapshots from the core thread to a single reader
// without blocking either side. The writer fills its private slot and
// atomically swaps it with the shared one; the reader swaps the shared slot
// in when it carries a fresh frame. The three indices always form a
// permutation, so neither side ever observes a slot the other is touching.
type TripleBuffer struct {
	slots [3]Snapshot

	// bits 0-1: shared slot index, bit 2: fresh flag
	shared   atomic.Uint32
	writeIdx uint32
	readIdx  uint32
}

// NewTripleBuffer creates an empty snapshot buffer.
func NewTripleBuffer() *TripleBuffer {
	t := &TripleBuffer{
		writeIdx: 0,
		readIdx:  1,
	}
	t.shared.Store(2)
	return t
}

// WriteSlot returns the slot the core may fill next. Core thread only.
func (t *TripleBuffer) WriteSlot() *Snapshot {
	return &t.slots[t.writeIdx]
}

// Publish swaps the filled slot into the shared position. Core thread only.
func (t *TripleBuffer) Publish() {
	prev := t.shared.Swap(t.writeIdx | freshBit)
	t.writeIdx = prev & 3
}

// Latest returns the most recent published snapshot, or the previously read
// one when nothing new arrived. Reader thread only.
func (t *TripleBuffer) Latest() *Snapshot {
	for {
		cur := t.shared.Load()
		if cur&freshBit == 0 {
			break
		}
		if t.shared.CompareAndSwap(cur, t.readIdx) {
			t.readIdx = cur & 3
			break
		}
	}
	return &t.slots[t.readIdx]
}
