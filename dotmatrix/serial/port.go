package serial

import (
	"io"
	"log/slog"

	"github.com/teodor/go-dotmatrix/dotmatrix/bit"
)

// Port models the link port registers (SB/SC). There is no peer: a transfer
// started with the internal clock completes immediately, the outgoing byte
// is forwarded to an optional host sink, and the serial interrupt is
// requested. Incoming data is always 0xFF, as on a disconnected cable.
type Port struct {
	irqHandler func()
	sb, sc     byte

	sink   io.Writer
	logger *slog.Logger

	// line buffers outgoing text until a terminator for readable logs
	line []byte
}

// New creates a serial port. The passed function is called when a transfer
// completes and should be wired to request the serial interrupt.
func New(irq func()) *Port {
	return &Port{
		irqHandler: irq,
		logger:     slog.Default(),
	}
}

// SetWriter sets a sink that receives every byte sent out the link port.
func (p *Port) SetWriter(w io.Writer) {
	p.sink = w
}

// ReadSB returns the transfer data register.
func (p *Port) ReadSB() byte {
	return p.sb
}

// WriteSB sets the transfer data register.
func (p *Port) WriteSB(value byte) {
	p.sb = value
}

// ReadSC returns the control register. Unused bits read as 1.
func (p *Port) ReadSC() byte {
	return 0x7E | p.sc
}

// WriteSC sets the control register. Setting the start bit together with
// the internal clock bit performs the transfer.
func (p *Port) WriteSC(value byte) {
	p.sc = value & 0x81
	if bit.IsSet(7, p.sc) && bit.IsSet(0, p.sc) {
		p.transfer()
	}
}

func (p *Port) transfer() {
	b := p.sb
	if p.sink != nil {
		_, _ = p.sink.Write([]byte{b})
	}

	if b == 0 || b == '\n' || b == '\r' {
		if len(p.line) > 0 {
			p.logger.Info("serial", "line", string(p.line))
			p.line = p.line[:0]
		}
	} else {
		p.line = append(p.line, b)
	}

	// No peer: the shifted-in byte is all ones.
	p.sb = 0xFF
	p.sc = bit.Reset(7, p.sc)
	if p.irqHandler != nil {
		p.irqHandler()
	}
}
