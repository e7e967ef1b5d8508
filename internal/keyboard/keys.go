// Package keyboard turns a raw terminal into a control source. Terminals only
// report key presses and auto-repeat, so a key counts as held until no repeat
// has arrived for the configured hold time.
package keyboard

// Special identifies keys that do not produce a printable rune.
type Special int

const (
	KeyNone Special = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEsc
	KeyCtrlC
)

// Key is a decoded key press.
type Key struct {
	Rune    rune
	Special Special
}

func runeKey(r rune) Key { return Key{Rune: r} }

func specialKey(s Special) Key { return Key{Special: s} }

// Decode splits raw terminal input into keys. Arrow keys arrive as the
// escape sequences ESC [ A through ESC [ D.
func Decode(buf []byte) []Key {
	var keys []Key
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		switch {
		case b == 0x03:
			keys = append(keys, specialKey(KeyCtrlC))
		case b == 0x1b:
			if i+2 < len(buf) && (buf[i+1] == '[' || buf[i+1] == 'O') {
				if s, ok := arrow(buf[i+2]); ok {
					keys = append(keys, specialKey(s))
					i += 2
					continue
				}
			}
			keys = append(keys, specialKey(KeyEsc))
		case b >= 'A' && b <= 'Z':
			keys = append(keys, runeKey(rune(b-'A'+'a')))
		case b >= 0x20 && b < 0x7f:
			keys = append(keys, runeKey(rune(b)))
		}
	}
	return keys
}

func arrow(b byte) (Special, bool) {
	switch b {
	case 'A':
		return KeyUp, true
	case 'B':
		return KeyDown, true
	case 'C':
		return KeyRight, true
	case 'D':
		return KeyLeft, true
	}
	return KeyNone, false
}
