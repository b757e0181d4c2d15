// Package format provides the value formatting helpers used around the
// grid containers: number masks, compact date layouts, and byte-aware
// string utilities.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rounding selects how a number mask trims excess fraction digits.
type Rounding int

// Rounding modes.
const (
	RoundHalfUp Rounding = iota
	RoundCeil
	RoundFloor
	RoundTrunc
)

// Number renders v according to a mask such as "#,##0.##" or "0.00".
//
// Mask grammar (integer part): '0' pads with zeros, '#' prints only
// significant digits, a ',' anywhere enables thousands grouping. The
// fraction part after '.' works the same: '0' forces a digit, '#' prints
// one only when non-zero.
func Number(v float64, mask string) (string, error) {
	return NumberRound(v, mask, RoundHalfUp)
}

// NumberRound is Number with an explicit rounding mode.
func NumberRound(v float64, mask string, mode Rounding) (string, error) {
	if mask == "" {
		return "", fmt.Errorf("empty number mask")
	}
	intMask, fracMask, hasFrac := strings.Cut(mask, ".")
	group := strings.Contains(intMask, ",")
	intMask = strings.ReplaceAll(intMask, ",", "")

	for _, c := range intMask + fracMask {
		if c != '0' && c != '#' {
			return "", fmt.Errorf("invalid number mask %q", mask)
		}
	}

	neg := math.Signbit(v) && v != 0
	abs := math.Abs(v)

	fracDigits := len(fracMask)
	scaled := abs * math.Pow10(fracDigits)
	switch mode {
	case RoundCeil:
		if neg {
			scaled = math.Floor(scaled)
		} else {
			scaled = math.Ceil(scaled)
		}
	case RoundFloor:
		if neg {
			scaled = math.Ceil(scaled)
		} else {
			scaled = math.Floor(scaled)
		}
	case RoundTrunc:
		scaled = math.Trunc(scaled)
	default:
		scaled = math.Round(scaled)
	}
	abs = scaled / math.Pow10(fracDigits)

	text := strconv.FormatFloat(abs, 'f', fracDigits, 64)
	intPart, fracPart, _ := strings.Cut(text, ".")

	// Zero-pad the integer part up to the number of '0' positions.
	zeros := strings.Count(intMask, "0")
	for len(intPart) < zeros {
		intPart = "0" + intPart
	}
	if group {
		intPart = groupThousands(intPart)
	}

	if hasFrac {
		// Drop trailing digits in '#' positions when they are zero.
		keep := strings.Count(fracMask, "0")
		for len(fracPart) > keep && strings.HasSuffix(fracPart, "0") {
			fracPart = fracPart[:len(fracPart)-1]
		}
	} else {
		fracPart = ""
	}

	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg && strings.Trim(out, "0.,") != "" {
		out = "-" + out
	}
	return out, nil
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
