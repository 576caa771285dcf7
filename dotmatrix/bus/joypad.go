package bus

import (
	"sync/atomic"

	"github.com/teodor/go-dotmatrix/dotmatrix/bit"
)

// Joypad latches the frontend's button state into the P1 register once per
// M-cycle. The input bitmap uses 1 = pressed with bits 0-3 = A/B/Select/
// Start and bits 4-7 = Right/Left/Up/Down; P1 is active-low as on hardware.
//
// The input byte is the only value crossing in from the host thread, so it
// is stored atomically; everything else is owned by the core.
type Joypad struct {
	input  atomic.Uint32
	p1     uint8
	lastP1 uint8
}

// NewJoypad creates a joypad with no buttons pressed and both groups
// selected (P1 = 0xCF, selection bits 4-5 low).
func NewJoypad() *Joypad {
	return &Joypad{
		p1:     0xCF,
		lastP1: 0xCF,
	}
}

// SetInput replaces the current button bitmap. Safe to call from the host
// thread while the core runs.
func (j *Joypad) SetInput(bits uint8) {
	j.input.Store(uint32(bits))
}

// Tick refreshes P1 from the selection bits and the current input, and
// reports whether any selected line transitioned high to low.
func (j *Joypad) Tick() bool {
	cur := uint8(j.input.Load())

	j.p1 &= 0x30

	// A, B, Select, Start
	if !bit.IsSet(5, j.p1) {
		j.p1 |= ^cur & 0x0F
	}

	// Right, Left, Up, Down
	if !bit.IsSet(4, j.p1) {
		j.p1 |= ^cur >> 4
	}

	// With neither group selected the lines float high.
	if j.p1&0x30 == 0x30 {
		j.p1 |= 0x0F
	}

	interrupt := j.lastP1 & ^j.p1 & 0x0F
	j.lastP1 = j.p1
	return interrupt != 0
}

// ReadP1 returns the joypad register; bits 6-7 always read as 1.
func (j *Joypad) ReadP1() uint8 {
	return j.p1 | 0xC0
}

// WriteP1 stores the group selection; only bits 4-5 are writable.
func (j *Joypad) WriteP1(value uint8) {
	j.p1 = value & 0x30
}
