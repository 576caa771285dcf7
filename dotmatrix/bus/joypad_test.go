package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoypad_nothingSelected(t *testing.T) {
	j := NewJoypad()
	j.WriteP1(0x30)
	j.SetInput(0xFF)
	j.Tick()

	// Lines float high when no group is selected
	assert.Equal(t, uint8(0xFF), j.ReadP1())
}

func TestJoypad_buttonGroup(t *testing.T) {
	j := NewJoypad()
	j.WriteP1(0x10) // bit 5 low: A/B/Select/Start

	j.SetInput(0x01) // A pressed
	j.Tick()
	assert.Equal(t, uint8(0xC0|0x10|0x0E), j.ReadP1())

	j.SetInput(0x00)
	j.Tick()
	assert.Equal(t, uint8(0xC0|0x10|0x0F), j.ReadP1())
}

func TestJoypad_dpadGroup(t *testing.T) {
	j := NewJoypad()
	j.WriteP1(0x20) // bit 4 low: Right/Left/Up/Down

	j.SetInput(0x80) // Down pressed
	j.Tick()
	assert.Equal(t, uint8(0xC0|0x20|0x07), j.ReadP1())
}

func TestJoypad_interruptOnPress(t *testing.T) {
	j := NewJoypad()
	j.WriteP1(0x10)
	j.Tick()

	j.SetInput(0x02) // B pressed
	assert.True(t, j.Tick(), "high-to-low transition raises the interrupt")
	assert.False(t, j.Tick(), "held button does not retrigger")

	j.SetInput(0x00) // release
	assert.False(t, j.Tick(), "low-to-high transition does not trigger")
}

func TestJoypad_unselectedGroupDoesNotInterrupt(t *testing.T) {
	j := NewJoypad()
	j.WriteP1(0x10) // buttons selected
	j.Tick()

	j.SetInput(0x10) // Right pressed (d-pad group)
	assert.False(t, j.Tick())
}
