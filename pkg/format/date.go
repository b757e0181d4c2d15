package format

import (
	"fmt"
	"strings"
	"time"
)

// Compact date token grammar, longest token first so "yyyy" wins over "yy".
var dateTokens = []struct {
	token  string
	layout string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MM", "01"},
	{"dd", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"APM", "PM"},
}

// layoutFor translates a compact mask such as "yyyy-MM-dd HH:mm:ss" into a
// Go reference layout.
func layoutFor(mask string) string {
	var b strings.Builder
	for i := 0; i < len(mask); {
		matched := false
		for _, tok := range dateTokens {
			if strings.HasPrefix(mask[i:], tok.token) {
				b.WriteString(tok.layout)
				i += len(tok.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(mask[i])
			i++
		}
	}
	return b.String()
}

// Date renders t according to a compact mask ("yyyy-MM-dd", "yyyy/MM/dd
// hh:mm APM", ...).
func Date(t time.Time, mask string) string {
	return t.Format(layoutFor(mask))
}

// Masks tried by ParseDate, in order.
var parseMasks = []string{
	"yyyy-MM-dd HH:mm:ss",
	"yyyy-MM-dd HH:mm",
	"yyyy-MM-dd",
	"yyyy/MM/dd HH:mm:ss",
	"yyyy/MM/dd",
	"yyyyMMddHHmmss",
	"yyyyMMdd",
}

// ParseDate parses a date string against the known compact masks.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, mask := range parseMasks {
		if t, err := time.Parse(layoutFor(mask), s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseDateMask parses s against a single explicit mask.
func ParseDateMask(s, mask string) (time.Time, error) {
	t, err := time.Parse(layoutFor(mask), strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q does not match mask %q", s, mask)
	}
	return t, nil
}
