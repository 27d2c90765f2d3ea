// Package keymap translates USB HID keyboard usage codes into ASCII bytes.
//
// Only the contiguous usage range 0x04 (KeyA) through 0x38 (KeySlash) is
// decodable; everything else, including function keys, arrows and the keypad,
// has no single-byte serial representation and is rejected.
package keymap

// Lookup tables indexed by keycode-KeyA. Layout follows the HID usage order:
// A-Z, 1-0, Enter, Escape, Backspace, Tab, Space, then the punctuation row
// 0x2D-0x38 (the 0x32 non-US hash slot is a filler space on ANSI layouts).
const (
	tablePlain = "abcdefghijklmnopqrstuvwxyz1234567890\n\x1b\b\t -=[]\\ ;'`,./"
	tableShift = "ABCDEFGHIJKLMNOPQRSTUVWXYZ!@#$%^&*()\n\x1b\b\t _+{}| :\"~<>?"
)

// letterCount is the number of leading letter entries (A-Z) in the tables.
const letterCount = 26

// Decode maps a held keycode plus the modifier bitmask to the ASCII byte to
// transmit. The second return value is false when the keycode has no mapping
// (zero, or outside [KeyA, KeySlash]).
//
// Ctrl combined with a letter produces the control character 0x01..0x1a
// (Ctrl+A..Ctrl+Z) and takes precedence over Shift. For every other key Shift
// selects the shifted variant of the table.
func Decode(keycode, modifier byte) (byte, bool) {
	if keycode < KeyA || keycode > KeySlash {
		return 0, false
	}
	idx := keycode - KeyA

	ctrl := modifier&(ModLeftCtrl|ModRightCtrl) != 0
	if ctrl && idx < letterCount {
		return idx + 1, true
	}

	if modifier&(ModLeftShift|ModRightShift) != 0 {
		return tableShift[idx], true
	}
	return tablePlain[idx], true
}
