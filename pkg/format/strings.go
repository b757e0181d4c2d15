package format

import "strings"

// ByteWidths configures how many bytes runes of each UTF-8 encoded size
// count for, matching display-width accounting on systems where wide
// characters occupy two cells.
type ByteWidths struct {
	TwoByte   int // runes encoded in 2 bytes (U+0080..U+07FF)
	ThreeByte int // runes encoded in 3 bytes (U+0800..U+FFFF)
	FourByte  int // runes above U+FFFF
}

// DefaultByteWidths counts multi-byte runes as two columns.
var DefaultByteWidths = ByteWidths{TwoByte: 2, ThreeByte: 2, FourByte: 2}

func runeWeight(r rune, w ByteWidths) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return w.TwoByte
	case r < 0x10000:
		return w.ThreeByte
	default:
		return w.FourByte
	}
}

// ByteLength returns the weighted length of s under the given widths.
func ByteLength(s string, w ByteWidths) int {
	n := 0
	for _, r := range s {
		n += runeWeight(r, w)
	}
	return n
}

// CutByteLength truncates s to at most limit weighted bytes, never
// splitting a rune.
func CutByteLength(s string, limit int, w ByteWidths) string {
	n := 0
	for i, r := range s {
		n += runeWeight(r, w)
		if n > limit {
			return s[:i]
		}
	}
	return s
}

// LPad left-pads s with pad until it reaches length runes.
func LPad(s, pad string, length int) string {
	if pad == "" {
		return s
	}
	for len([]rune(s)) < length {
		s = pad + s
	}
	runes := []rune(s)
	if len(runes) > length {
		runes = runes[len(runes)-length:]
	}
	return string(runes)
}

// RPad right-pads s with pad until it reaches length runes.
func RPad(s, pad string, length int) string {
	if pad == "" {
		return s
	}
	for len([]rune(s)) < length {
		s += pad
	}
	runes := []rune(s)
	if len(runes) > length {
		runes = runes[:length]
	}
	return string(runes)
}

// Reverse returns s with its runes in reverse order.
func Reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
