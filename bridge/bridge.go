// Package bridge contains the key-state capture and repeat-timing engine: it
// takes raw HID keyboard reports in, holds the current key in a single atomic
// slot, and drives an OS-style key repeat loop that decodes and emits one
// ASCII byte per fire onto the serial writer.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/michaelliao/usb-keyboard-to-serial/internal/log"
	"github.com/michaelliao/usb-keyboard-to-serial/uart"
)

// Config represents the repeat timing configuration.
type Config struct {
	TickPeriod     time.Duration `help:"Repeat scheduler tick period" default:"10ms" env:"KB2SERIAL_TICK_PERIOD"`
	RepeatInterval time.Duration `help:"Delay between repeats of a held key" default:"500ms" env:"KB2SERIAL_REPEAT_INTERVAL"`
}

// Stats is a snapshot of the bridge counters.
type Stats struct {
	ReportsAccepted uint64
	ReportsRejected uint64
	BytesEmitted    uint64
	WriteFailures   uint64
}

// Bridge wires the key-state slot, the repeater and the serial writer
// together. Reports arrive on HandleReport from the HID host goroutine; Run
// drives the tick loop.
type Bridge struct {
	cfg   Config
	out   uart.Writer
	log   *slog.Logger
	raw   log.RawLogger
	slot  keySlot
	rep   repeater
	ready chan struct{}

	reportsAccepted atomic.Uint64
	reportsRejected atomic.Uint64
	bytesEmitted    atomic.Uint64
	writeFailures   atomic.Uint64
}

// New validates the timing configuration and returns a Bridge writing to out.
func New(cfg Config, out uart.Writer, logger *slog.Logger, rawLogger log.RawLogger) (*Bridge, error) {
	if cfg.TickPeriod <= 0 {
		return nil, fmt.Errorf("tick period must be positive, got %s", cfg.TickPeriod)
	}
	if cfg.RepeatInterval < cfg.TickPeriod {
		return nil, fmt.Errorf("repeat interval %s must be at least one tick period (%s)",
			cfg.RepeatInterval, cfg.TickPeriod)
	}
	return &Bridge{
		cfg:   cfg,
		out:   out,
		log:   logger,
		raw:   rawLogger,
		rep:   repeater{interval: uint32(cfg.RepeatInterval / cfg.TickPeriod)},
		ready: make(chan struct{}),
	}, nil
}

// Ready is closed once the tick loop is running.
func (b *Bridge) Ready() <-chan struct{} { return b.ready }

// Run drives the repeat scheduler until ctx is cancelled. Each tick performs a
// bounded amount of work: one slot read, the repeater step, and at most one
// serial write.
func (b *Bridge) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.cfg.TickPeriod)
	defer ticker.Stop()

	b.log.Info("repeat scheduler running",
		"tickPeriod", b.cfg.TickPeriod,
		"repeatInterval", b.cfg.RepeatInterval,
		"intervalTicks", b.rep.interval)
	close(b.ready)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			b.tickOnce()
		}
	}
}

// tickOnce executes one scheduler tick.
func (b *Bridge) tickOnce() {
	st := b.slot.Load()
	c, emit := b.rep.step(st)
	if !emit {
		return
	}

	if err := b.out.WriteByte(c); err != nil {
		// Dropped byte; the next repeat tick or key change produces the next one.
		b.writeFailures.Add(1)
		b.log.Warn("serial write failed", "byte", fmt.Sprintf("0x%02x", c), "error", err)
		return
	}
	b.bytesEmitted.Add(1)
	b.raw.Log(false, []byte{c})
	b.log.Log(context.Background(), log.LevelTrace, "emitted byte",
		"byte", fmt.Sprintf("0x%02x", c))
}

// Stats returns a snapshot of the bridge counters.
func (b *Bridge) Stats() Stats {
	return Stats{
		ReportsAccepted: b.reportsAccepted.Load(),
		ReportsRejected: b.reportsRejected.Load(),
		BytesEmitted:    b.bytesEmitted.Load(),
		WriteFailures:   b.writeFailures.Load(),
	}
}
