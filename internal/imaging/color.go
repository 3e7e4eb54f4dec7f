package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a background colour given as "#RGB", "#RRGGBB" or the
// same without the leading '#'. The result is always opaque.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	digits := strings.TrimPrefix(s, "#")
	if (len(digits) != 3 && len(digits) != 6) || strings.Trim(digits, "0123456789abcdefABCDEF") != "" {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: want #RGB or #RRGGBB", s)
	}

	c, err := colorful.Hex("#" + digits)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Flatten composites img over an opaque background and returns an opaque
// result. It is used when the output format cannot store transparency.
func Flatten(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(canvas, img, image.Point{}, 1.0)
}

// AlphaAt returns the 8-bit alpha of the pixel at (x, y), or 0 when the point
// lies outside the image.
func AlphaAt(img image.Image, x, y int) uint8 {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return 0
	}
	_, _, _, a := img.At(x, y).RGBA()
	return uint8(a >> 8)
}
