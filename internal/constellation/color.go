package constellation

import (
	"fmt"
	"image/color"
	"math"

	"github.com/talgya/starweave/internal/phi"
)

// Overlay colour components shared by every constellation; only the hue varies.
const (
	Saturation = 0.7
	Lightness  = 0.6
	Alpha      = 0.25
)

// Color is an HSLA colour. Hue is in degrees [0, 360); the rest are in [0, 1].
type Color struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Lightness  float64 `json:"lightness"`
	Alpha      float64 `json:"alpha"`
}

// ColorFor returns the colour of the n-th constellation. Successive hues are a
// golden angle apart.
func ColorFor(n int) Color {
	return Color{
		Hue:        phi.Hue(n),
		Saturation: Saturation,
		Lightness:  Lightness,
		Alpha:      Alpha,
	}
}

// RGBA converts c to 8-bit non-premultiplied RGBA.
func (c Color) RGBA() color.NRGBA {
	chroma := (1 - math.Abs(2*c.Lightness-1)) * c.Saturation
	h := math.Mod(c.Hue, 360) / 60
	x := chroma * (1 - math.Abs(math.Mod(h, 2)-1))

	var r, g, b float64
	switch {
	case h < 1:
		r, g = chroma, x
	case h < 2:
		r, g = x, chroma
	case h < 3:
		g, b = chroma, x
	case h < 4:
		g, b = x, chroma
	case h < 5:
		r, b = x, chroma
	default:
		r, b = chroma, x
	}
	m := c.Lightness - chroma/2
	return color.NRGBA{
		R: channel(r + m),
		G: channel(g + m),
		B: channel(b + m),
		A: channel(c.Alpha),
	}
}

// Hex returns the colour as #rrggbb, without alpha.
func (c Color) Hex() string {
	rgba := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

func (c Color) String() string {
	return fmt.Sprintf("hsla(%.1f, %.0f%%, %.0f%%, %.2f)",
		c.Hue, c.Saturation*100, c.Lightness*100, c.Alpha)
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
