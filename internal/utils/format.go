// Package utils provides shared utility functions
package utils

import (
	"fmt"
	"math"
	"strings"
)

var sizeUnits = []string{"kB", "MB", "GB"}

// HumanSize converts a byte count to the listing's size column format (e.g. "1.5 MB").
// Sizes are always expressed in at least kB and never display below 0.1.
func HumanSize(bytes int64) string {
	size := float64(bytes)
	unit := 0
	size /= 1024
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", math.Max(size, 0.1), sizeUnits[unit])
}

// PadRight fits s into a column of the given width. Values longer than
// width-3 characters are cut and suffixed with "...".
func PadRight(s string, width int) string {
	runes := []rune(s)
	keep := max(width-3, 0)
	if len(runes) > keep {
		runes = append(runes[:keep:keep], '.', '.', '.')
	}
	if pad := width - len(runes); pad > 0 {
		return string(runes) + strings.Repeat(" ", pad)
	}
	return string(runes)
}
