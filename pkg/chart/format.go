package chart

import (
	"fmt"
	"math"
	"strings"
)

// FormatNumber renders a number with space-separated thousands groups,
// rounded at the given precision, dropping a trailing all-zero fraction.
// 12345.0 with precision 0 renders as "12 345".
func FormatNumber(v float64, precision int) string {
	factor := math.Pow(10, float64(precision))
	v = math.Round(v*factor) / factor

	neg := v < 0
	if neg {
		v = -v
	}

	intPart := math.Trunc(v)
	frac := v - intPart

	digits := fmt.Sprintf("%.0f", intPart)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	out := strings.Join(groups, " ")

	if precision > 0 && frac > 0 {
		fracStr := fmt.Sprintf("%.*f", precision, frac)
		fracStr = strings.TrimRight(strings.TrimPrefix(fracStr, "0"), "0")
		if fracStr != "." {
			out += fracStr
		}
	}
	if neg {
		out = "-" + out
	}
	return out
}

// BreakLongLine inserts HTML line breaks so treemap labels wrap instead of
// overflowing their tile.
func BreakLongLine(line string, maxLineLength int) string {
	length := 0
	pieces := strings.Split(line, " ")
	for i, piece := range pieces {
		length += len(piece)
		if length > maxLineLength && i > 0 {
			pieces[i] = "<br>" + piece
			length = 0
		}
	}
	return strings.ReplaceAll(strings.Join(pieces, " "), " <br>", "<br>")
}
