package world

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// KindColor derives a stable colour from a kind name: the string hash
// picks a hue, saturation and lightness are fixed at 70% and 50%.
//
// The hash accumulates in a float64; only the shifted term wraps at 32
// bits. Wrapping every step gives a different hue for longer names.
func KindColor(k Kind) string {
	var hash float64
	for _, r := range k {
		shifted := int32(int64(hash)) << 5
		hash = float64(r) + (float64(shifted) - hash)
	}
	hue := math.Mod(hash, 360)
	if hue < 0 {
		hue += 360
	}
	return colorful.Hsl(hue, 0.7, 0.5).Hex()
}

// ParseColor parses a #rrggbb style. Invalid input yields ok=false.
func ParseColor(s string) (colorful.Color, bool) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}
