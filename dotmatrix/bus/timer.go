package bus

import "github.com/teodor/go-dotmatrix/dotmatrix/bit"

// Timer implements DIV/TIMA/TMA/TAC. The internal counter increments once
// per M-cycle, so the visible DIV byte is bits 6-13 (the hardware's T-cycle
// counter shifted right by 8) and the TAC frequency selects test the
// M-cycle bits {7, 1, 3, 5}.
//
// TIMA increments on a falling edge of the gated test bit, which is what
// makes DIV writes and TAC changes able to tick TIMA spuriously.
// See https://gbdev.io/pandocs/Timer_Obscure_Behaviour.html
type Timer struct {
	clocks  uint16
	counter uint8 // TIMA
	modulo  uint8 // TMA
	control uint8 // TAC

	edgeDelay bool
}

// Tick advances the timer by one M-cycle and reports whether the timer
// interrupt should be raised.
func (t *Timer) Tick() bool {
	t.clocks++

	var sel uint8
	switch t.control & 3 {
	case 0:
		sel = 7
	case 1:
		sel = 1
	case 2:
		sel = 3
	default:
		sel = 5
	}
	testBit := bit.IsSet(2, t.control) && bit.IsSet16(sel, t.clocks)

	trigger := false
	if !testBit && t.edgeDelay {
		t.counter++
		if t.counter == 0 {
			t.counter = t.modulo
			trigger = true
		}
	}
	t.edgeDelay = testBit

	return trigger
}

// ReadDIV returns the visible divider byte.
func (t *Timer) ReadDIV() uint8 {
	return uint8(t.clocks >> 6)
}

// WriteDIV resets the whole internal counter regardless of the value.
func (t *Timer) WriteDIV(value uint8) {
	t.clocks = 0
}

// ReadTIMA returns the timer counter.
func (t *Timer) ReadTIMA() uint8 {
	return t.counter
}

// WriteTIMA sets the timer counter.
func (t *Timer) WriteTIMA(value uint8) {
	t.counter = value
}

// ReadTMA returns the timer modulo.
func (t *Timer) ReadTMA() uint8 {
	return t.modulo
}

// WriteTMA sets the timer modulo.
func (t *Timer) WriteTMA(value uint8) {
	t.modulo = value
}

// ReadTAC returns the timer control register. Bits 7-3 read as 1.
func (t *Timer) ReadTAC() uint8 {
	return t.control | 0xF8
}

// WriteTAC sets the timer control register.
func (t *Timer) WriteTAC(value uint8) {
	t.control = value
}
