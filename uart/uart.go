// Package uart is the serial side of the bridge: single decoded bytes go out,
// nothing comes back. Framing, flow control and reads are deliberately absent.
package uart

import (
	"fmt"

	"go.bug.st/serial"
)

// Writer accepts decoded bytes for transmission.
type Writer interface {
	WriteByte(b byte) error
	Close() error
}

// Config represents the serial port configuration. The port is opened once at
// startup; parameters are not runtime-reloadable.
type Config struct {
	Port string `help:"Serial device path (e.g. /dev/ttyUSB0, COM3); empty discards output" env:"KB2SERIAL_SERIAL_PORT"`
	Baud int    `help:"Serial baud rate" default:"115200" env:"KB2SERIAL_SERIAL_BAUD"`
}

// Port is a Writer backed by a real serial device, fixed at 8N1 with no
// hardware flow control.
type Port struct {
	p serial.Port
}

// Open opens the configured serial device.
func Open(cfg Config) (*Port, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("no serial port configured")
	}
	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Port, err)
	}
	return &Port{p: p}, nil
}

func (p *Port) WriteByte(b byte) error {
	_, err := p.p.Write([]byte{b})
	return err
}

func (p *Port) Close() error {
	return p.p.Close()
}

// Discard is a Writer that drops every byte. Used when no port is configured
// and by tests.
type Discard struct{}

func (Discard) WriteByte(byte) error { return nil }
func (Discard) Close() error         { return nil }
