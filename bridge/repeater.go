package bridge

import "github.com/michaelliao/usb-keyboard-to-serial/keymap"

// repeater is the tick-driven key repeat state machine. It alone owns the
// previous-keycode edge detection: a newly pressed key fires immediately, a
// held key re-fires every interval ticks, a release (keycode 0) resets the
// window without emitting.
//
// Owned exclusively by the bridge run loop; never accessed concurrently.
type repeater struct {
	prev     byte
	tick     uint32
	interval uint32 // ticks between emissions while held, >= 1
}

// step advances the repeater by one tick given the current key state and
// returns the byte to emit, if any. An undecodable key still consumes its
// timing slot, so holding it does not burst once released and re-pressed
// within the window.
func (r *repeater) step(st KeyState) (byte, bool) {
	if st.Keycode != r.prev {
		r.tick = 0
	}
	r.prev = st.Keycode

	if st.Keycode == keymap.KeyNone {
		r.tick = 0
		return 0, false
	}

	var out byte
	var emit bool
	if r.tick == 0 {
		out, emit = keymap.Decode(st.Keycode, st.Modifier)
	}
	r.tick = (r.tick + 1) % r.interval
	return out, emit
}
