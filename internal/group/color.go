package group

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an 8-bit RGBA color persisted as an alpha-leading hex string
// ("#AARRGGBB"). The alpha channel matters here: group backgrounds default
// to fully transparent so only the icons appear painted on the desktop.
type Color struct {
	A, R, G, B uint8
}

// DefaultBackground is fully transparent white.
var DefaultBackground = Color{A: 0x00, R: 0xFF, G: 0xFF, B: 0xFF}

// ParseColor parses "#AARRGGBB" or "#RRGGBB" (alpha assumed FF).
// The leading '#' is optional.
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 8:
		v, err := strconv.ParseUint(h, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	case 6:
		v, err := strconv.ParseUint(h, 16, 24)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return Color{A: 0xFF, R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	default:
		return Color{}, fmt.Errorf("invalid color %q: expected #AARRGGBB or #RRGGBB", s)
	}
}

// Hex formats the color as "#AARRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}

// WithAlpha returns a copy of the color with the given alpha.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}
