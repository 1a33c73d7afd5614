package host

import "unicode/utf8"

const (
	keyInterrupt = 0x03
	keyEscape    = 0x1b
)

var arrows = map[byte]string{
	'A': "ArrowUp",
	'B': "ArrowDown",
	'C': "ArrowRight",
	'D': "ArrowLeft",
}

// DecodeKeys turns raw terminal input into key names in the form browsers
// report them ("a", " ", "Enter", "ArrowUp"). It also reports whether the
// input held a Ctrl-C.
func DecodeKeys(buf []byte) ([]string, bool) {
	var keys []string
	interrupted := false

	for i := 0; i < len(buf); {
		b := buf[i]

		switch {
		case b == keyInterrupt:
			interrupted = true
			i++
		case b == keyEscape:
			if i+2 < len(buf) && (buf[i+1] == '[' || buf[i+1] == 'O') {
				if name, ok := arrows[buf[i+2]]; ok {
					keys = append(keys, name)
					i += 3
					continue
				}
			}
			if i+1 < len(buf) && buf[i+1] != keyEscape && buf[i+1] >= 0x20 && buf[i+1] < 0x7f && buf[i+1] != '[' {
				keys = append(keys, "Alt")
				i++
				continue
			}
			keys = append(keys, "Escape")
			i++
		case b == '\r' || b == '\n':
			keys = append(keys, "Enter")
			i++
		case b == '\t':
			keys = append(keys, "Tab")
			i++
		case b == 0x7f || b == 0x08:
			keys = append(keys, "Backspace")
			i++
		case b < 0x20:
			keys = append(keys, "Control")
			i++
		default:
			r, size := utf8.DecodeRune(buf[i:])
			if r != utf8.RuneError {
				keys = append(keys, string(r))
			}
			i += size
		}
	}

	return keys, interrupted
}
