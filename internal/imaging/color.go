package imaging

import (
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// ParseHexColor parses "#RRGGBB" or the short "#RGB" form into an opaque
// color. The leading '#' is optional.
func ParseHexColor(hex string) (color.RGBA, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return color.RGBA{}, errors.New("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return color.RGBA{}, errors.Errorf("invalid hex color length %q", hex)
	}

	c, err := colorful.Hex(strings.ToLower(hex))
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "invalid hex color %q", hex)
	}

	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// HexString formats c as "#RRGGBB", ignoring alpha.
func HexString(c color.RGBA) string {
	return strings.ToUpper(colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex())
}
