package bridge

import (
	"context"

	"github.com/michaelliao/usb-keyboard-to-serial/internal/log"
	"github.com/michaelliao/usb-keyboard-to-serial/keymap"
)

// Standard HID keyboard input report layout:
//
//	byte 0: modifier bitmask
//	byte 1: reserved
//	byte 2-7: held keycodes, up to 6
//
// Only the modifier byte and the first keycode slot are consumed; a report
// needs at least 3 bytes to carry them.
const reportMinLen = 3

// HandleReport ingests one raw HID input report. Reports shorter than three
// bytes are dropped. A first-slot keycode of zero is a release and overwrites
// the held key like any other value. Safe to call from any goroutine
// concurrently with the tick loop.
func (b *Bridge) HandleReport(report []byte) {
	if len(report) < reportMinLen {
		b.reportsRejected.Add(1)
		b.log.Log(context.Background(), log.LevelTrace, "dropped short report", "len", len(report))
		return
	}

	st := KeyState{Modifier: report[0], Keycode: report[2]}
	b.slot.Store(st)
	b.reportsAccepted.Add(1)

	b.raw.Log(true, report)
	b.log.Log(context.Background(), log.LevelTrace, "key report",
		"key", keymap.Name(st.Keycode),
		"modifier", st.Modifier)
}
