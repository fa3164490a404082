package watermark

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Spec describes one watermark. Opacity is in [0,1], FontSize in CSS pixels
// and Rotation in degrees, clockwise on screen.
type Spec struct {
	Text       string
	Opacity    float64
	FontSize   float64
	Color      string
	Rotation   float64
	Density    int
	FontFamily string
	Image      string // path, URL or data URI; empty for text marks
}

// DefaultFontFamily is used when a Spec names none.
const DefaultFontFamily = "sans-serif"

// Empty reports whether the spec has nothing to draw.
func (s Spec) Empty() bool {
	return strings.TrimSpace(s.Text) == "" && s.Image == ""
}

// ParseHexColor parses "#rgb" or "#rrggbb" into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// alpha converts an opacity in [0,1] to an 8-bit alpha, clamping out-of-range
// values.
func alpha(opacity float64) uint8 {
	return uint8(min(max(opacity, 0), 1)*255 + 0.5)
}
