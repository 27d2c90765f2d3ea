package bridge

import "sync/atomic"

// KeyState is the most recently reported held key: the modifier bitmask and
// the first keycode slot of the HID report. A zero Keycode means no key held.
type KeyState struct {
	Modifier byte
	Keycode  byte
}

// keySlot holds a KeyState packed into one atomic word. The HID read goroutine
// replaces the pair while the tick loop reads it; packing both bytes into a
// single word guarantees a reader never sees an old modifier with a new
// keycode or vice versa.
type keySlot struct {
	v atomic.Uint32
}

func (s *keySlot) Store(st KeyState) {
	s.v.Store(uint32(st.Modifier)<<8 | uint32(st.Keycode))
}

func (s *keySlot) Load() KeyState {
	v := s.v.Load()
	return KeyState{Modifier: byte(v >> 8), Keycode: byte(v)}
}
