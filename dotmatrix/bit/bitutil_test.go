package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	testCases := []struct {
		desc string
		high uint8
		low  uint8
		want uint16
	}{
		{desc: "combines high and low", high: 0x12, low: 0x34, want: 0x1234},
		{desc: "zero", high: 0, low: 0, want: 0},
		{desc: "all ones", high: 0xFF, low: 0xFF, want: 0xFFFF},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.want, Combine(tC.high, tC.low))
		})
	}
}

func TestIsSet(t *testing.T) {
	assert.True(t, IsSet(0, 0x01))
	assert.True(t, IsSet(7, 0x80))
	assert.False(t, IsSet(3, 0xF7))
}

func TestIsSet16(t *testing.T) {
	assert.True(t, IsSet16(9, 1<<9))
	assert.False(t, IsSet16(9, 1<<8))
	assert.True(t, IsSet16(15, 0x8000))
}

func TestSetResetSetTo(t *testing.T) {
	assert.Equal(t, uint8(0x81), Set(7, 0x01))
	assert.Equal(t, uint8(0x01), Reset(7, 0x81))
	assert.Equal(t, uint8(0x10), SetTo(4, 0x00, true))
	assert.Equal(t, uint8(0x00), SetTo(4, 0x10, false))
}

func TestHighLow(t *testing.T) {
	assert.Equal(t, uint8(0x12), High(0x1234))
	assert.Equal(t, uint8(0x34), Low(0x1234))
}

func TestGetBitValue(t *testing.T) {
	assert.Equal(t, uint8(1), GetBitValue(4, 0x10))
	assert.Equal(t, uint8(0), GetBitValue(5, 0x10))
}
