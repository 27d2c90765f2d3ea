package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelliao/usb-keyboard-to-serial/internal/log"
	"github.com/michaelliao/usb-keyboard-to-serial/keymap"
)

// recorder captures every byte the bridge emits.
type recorder struct {
	bytes []byte
	err   error
}

func (r *recorder) WriteByte(b byte) error {
	if r.err != nil {
		return r.err
	}
	r.bytes = append(r.bytes, b)
	return nil
}

func (r *recorder) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestBridge returns a bridge with interval_ticks = 5 (10ms tick, 50ms
// repeat) whose ticks are driven manually through tickOnce.
func newTestBridge(t *testing.T, out *recorder) *Bridge {
	t.Helper()
	cfg := Config{TickPeriod: 10 * time.Millisecond, RepeatInterval: 50 * time.Millisecond}
	b, err := New(cfg, out, testLogger(), log.NewRaw(nil))
	require.NoError(t, err)
	return b
}

func report(modifier, keycode byte) []byte {
	return []byte{modifier, 0x00, keycode, 0x00, 0x00, 0x00, 0x00, 0x00}
}

func TestNewValidation(t *testing.T) {
	logger, raw := testLogger(), log.NewRaw(nil)

	_, err := New(Config{TickPeriod: 0, RepeatInterval: time.Second}, &recorder{}, logger, raw)
	assert.Error(t, err)

	_, err = New(Config{TickPeriod: 10 * time.Millisecond, RepeatInterval: 5 * time.Millisecond}, &recorder{}, logger, raw)
	assert.Error(t, err)

	// repeat == tick collapses to interval_ticks 1: every tick fires.
	b, err := New(Config{TickPeriod: 10 * time.Millisecond, RepeatInterval: 10 * time.Millisecond}, &recorder{}, logger, raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), b.rep.interval)
}

func TestInitialFireThenRepeatWindow(t *testing.T) {
	out := &recorder{}
	b := newTestBridge(t, out)

	b.HandleReport(report(0x00, keymap.KeyA))

	b.tickOnce()
	assert.Equal(t, []byte("a"), out.bytes, "edge fire on the first tick after ingest")

	// Held: no further emission until interval_ticks more ticks have passed.
	for i := 0; i < 4; i++ {
		b.tickOnce()
	}
	assert.Equal(t, []byte("a"), out.bytes)

	b.tickOnce()
	assert.Equal(t, []byte("aa"), out.bytes)
}

func TestShiftAndCtrlReports(t *testing.T) {
	out := &recorder{}
	b := newTestBridge(t, out)

	b.HandleReport(report(keymap.ModLeftShift, keymap.KeyA))
	b.tickOnce()
	assert.Equal(t, []byte("A"), out.bytes)

	b.HandleReport(report(0x00, keymap.KeyNone))
	b.tickOnce()

	b.HandleReport(report(keymap.ModLeftCtrl, keymap.KeyA))
	b.tickOnce()
	assert.Equal(t, []byte{'A', 0x01}, out.bytes)
}

func TestHeldKeyEmissionCount(t *testing.T) {
	out := &recorder{}
	b := newTestBridge(t, out)

	b.HandleReport(report(0x00, keymap.KeyA))

	// 3 * interval_ticks ticks plus the initial one: emissions at ticks
	// 0, 5, 10 and 15.
	for i := 0; i <= 15; i++ {
		b.tickOnce()
	}
	assert.Equal(t, []byte("aaaa"), out.bytes)
}

func TestReleaseResetsWithoutEmitting(t *testing.T) {
	out := &recorder{}
	b := newTestBridge(t, out)

	b.HandleReport(report(0x00, keymap.KeyA))
	b.tickOnce()
	assert.Equal(t, []byte("a"), out.bytes)

	b.HandleReport(report(0x00, keymap.KeyNone))
	for i := 0; i < 10; i++ {
		b.tickOnce()
	}
	assert.Equal(t, []byte("a"), out.bytes, "release never emits")
	assert.Equal(t, byte(keymap.KeyNone), b.rep.prev)
	assert.Zero(t, b.rep.tick)
}

func TestKeyChangeFiresImmediately(t *testing.T) {
	out := &recorder{}
	b := newTestBridge(t, out)

	b.HandleReport(report(0x00, keymap.KeyA))
	b.tickOnce()
	b.HandleReport(report(0x00, keymap.KeyB))
	b.tickOnce()
	assert.Equal(t, []byte("ab"), out.bytes, "rollover to a new key edge-fires without waiting out the window")
}

func TestUndecodableKeyConsumesTimingSlot(t *testing.T) {
	out := &recorder{}
	b := newTestBridge(t, out)

	// CapsLock (0x39) is outside the decodable range.
	b.HandleReport(report(0x00, 0x39))
	for i := 0; i < 12; i++ {
		b.tickOnce()
	}
	assert.Empty(t, out.bytes)
	// The counter still progresses: 12 ticks mod 5.
	assert.Equal(t, uint32(2), b.rep.tick)
}

func TestShortReportIsIgnored(t *testing.T) {
	out := &recorder{}
	b := newTestBridge(t, out)

	b.HandleReport(report(0x00, keymap.KeyA))
	b.HandleReport([]byte{0x02, 0x00})
	b.HandleReport(nil)
	b.tickOnce()

	assert.Equal(t, []byte("a"), out.bytes, "short reports must not disturb the held key")
	st := b.Stats()
	assert.Equal(t, uint64(1), st.ReportsAccepted)
	assert.Equal(t, uint64(2), st.ReportsRejected)
}

func TestWriteFailureDropsByteKeepsCadence(t *testing.T) {
	out := &recorder{err: errors.New("port gone")}
	b := newTestBridge(t, out)

	b.HandleReport(report(0x00, keymap.KeyA))
	b.tickOnce()
	assert.Empty(t, out.bytes)
	assert.Equal(t, uint64(1), b.Stats().WriteFailures)

	// Port recovers; the next natural repeat tick emits again, no catch-up.
	out.err = nil
	for i := 0; i < 4; i++ {
		b.tickOnce()
	}
	assert.Empty(t, out.bytes)
	b.tickOnce()
	assert.Equal(t, []byte("a"), out.bytes)
	assert.Equal(t, uint64(1), b.Stats().BytesEmitted)
}

func TestRunLifecycle(t *testing.T) {
	out := &recorder{}
	cfg := Config{TickPeriod: time.Millisecond, RepeatInterval: 5 * time.Millisecond}
	b, err := New(cfg, out, testLogger(), log.NewRaw(nil))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	select {
	case <-b.Ready():
	case <-time.After(time.Second):
		t.Fatal("bridge never became ready")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bridge did not stop on cancellation")
	}
}
