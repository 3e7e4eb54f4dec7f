package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ellipseDistance returns the normalised distance of the centre of pixel
// (x, y) from the centre of the ellipse inscribed in a w x h box. Values
// below 1 are inside.
func ellipseDistance(x, y, w, h int) float64 {
	rx, ry := float64(w)/2, float64(h)/2
	dx := (float64(x) + 0.5 - rx) / rx
	dy := (float64(y) + 0.5 - ry) / ry
	return dx*dx + dy*dy
}

func TestEllipseMask_Square(t *testing.T) {
	const size = 100
	mask := EllipseMask(size, size, false)
	require.Equal(t, image.Rect(0, 0, size, size), mask.Bounds())

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			got := mask.AlphaAt(x, y).A
			if ellipseDistance(x, y, size, size) <= 1 {
				assert.Equal(t, uint8(255), got, "pixel (%d,%d) should be opaque", x, y)
			} else {
				assert.Equal(t, uint8(0), got, "pixel (%d,%d) should be transparent", x, y)
			}
		}
	}
}

func TestEllipseMask_NonSquareTouchesAllEdges(t *testing.T) {
	mask := EllipseMask(60, 20, false)

	assert.Equal(t, uint8(255), mask.AlphaAt(0, 10).A, "left edge")
	assert.Equal(t, uint8(255), mask.AlphaAt(59, 10).A, "right edge")
	assert.Equal(t, uint8(255), mask.AlphaAt(30, 0).A, "top edge")
	assert.Equal(t, uint8(255), mask.AlphaAt(30, 19).A, "bottom edge")

	for _, p := range []image.Point{{0, 0}, {59, 0}, {0, 19}, {59, 19}} {
		assert.Equal(t, uint8(0), mask.AlphaAt(p.X, p.Y).A, "corner %v", p)
	}
}

func TestEllipseMask_Empty(t *testing.T) {
	mask := EllipseMask(0, 10, true)
	assert.True(t, mask.Bounds().Empty())
}

func TestEllipseMask_Antialias(t *testing.T) {
	const size = 64
	mask := EllipseMask(size, size, true)

	partial := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			got := mask.AlphaAt(x, y).A
			d := ellipseDistance(x, y, size, size)
			switch {
			case d < 0.9:
				assert.Equal(t, uint8(255), got, "interior pixel (%d,%d)", x, y)
			case d > 1.1:
				assert.Equal(t, uint8(0), got, "exterior pixel (%d,%d)", x, y)
			}
			if got > 0 && got < 255 {
				partial++
			}
		}
	}
	assert.Positive(t, partial, "antialiased edge should have partial coverage")
}

func TestEllipseMask_AntialiasWholePixels(t *testing.T) {
	for _, size := range []image.Point{{64, 64}, {101, 101}, {90, 40}} {
		mask := EllipseMask(size.X, size.Y, true)
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				got := mask.AlphaAt(x, y).A
				if pixelInsideEllipse(x, y, size.X, size.Y) {
					assert.Equal(t, uint8(255), got, "%v: pixel (%d,%d) lies wholly inside", size, x, y)
				}
				if pixelOutsideEllipse(x, y, size.X, size.Y) {
					assert.Equal(t, uint8(0), got, "%v: pixel (%d,%d) lies wholly outside", size, x, y)
				}
			}
		}
	}

	// (21,2) sits just inside the edge of a 64px circle.
	assert.True(t, pixelInsideEllipse(21, 2, 64, 64))
	assert.Equal(t, uint8(255), EllipseMask(64, 64, true).AlphaAt(21, 2).A)
}

func TestFeatherMask(t *testing.T) {
	mask := EllipseMask(80, 80, false)

	assert.Same(t, mask, FeatherMask(mask, 0))

	soft := FeatherMask(mask, 4)
	require.Equal(t, mask.Bounds(), soft.Bounds())
	assert.GreaterOrEqual(t, soft.AlphaAt(40, 40).A, uint8(250), "centre stays opaque")
	assert.Equal(t, uint8(0), soft.AlphaAt(0, 0).A, "far corner stays transparent")

	// Around the diagonal boundary the hard step becomes a ramp: a pixel
	// just outside gains coverage and one just inside loses some.
	assert.Equal(t, uint8(0), mask.AlphaAt(10, 10).A)
	assert.Greater(t, soft.AlphaAt(10, 10).A, uint8(0))
	assert.Equal(t, uint8(255), mask.AlphaAt(12, 12).A)
	assert.Less(t, soft.AlphaAt(12, 12).A, uint8(255))
}

func TestFit(t *testing.T) {
	src := solidImage(100, 50, color.RGBA{10, 20, 30, 255})

	same := Fit(src, 100, 50, imaging.Lanczos)
	assert.Equal(t, image.Rect(0, 0, 100, 50), same.Bounds())
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, same.NRGBAAt(7, 7))

	fitted := Fit(src, 50, 50, imaging.Lanczos)
	assert.Equal(t, image.Rect(0, 0, 50, 50), fitted.Bounds())
}

func TestPutAlpha(t *testing.T) {
	src := solidImage(10, 10, color.RGBA{255, 0, 0, 255})
	mask := image.NewAlpha(image.Rect(0, 0, 10, 10))
	mask.SetAlpha(5, 5, color.Alpha{A: 200})

	out, err := PutAlpha(src, mask)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{255, 0, 0, 200}, out.NRGBAAt(5, 5))
	// Colour survives under zero alpha.
	assert.Equal(t, color.NRGBA{255, 0, 0, 0}, out.NRGBAAt(0, 0))
}

func TestPutAlpha_SizeMismatch(t *testing.T) {
	_, err := PutAlpha(solidImage(10, 10, color.White), image.NewAlpha(image.Rect(0, 0, 10, 9)))
	assert.ErrorIs(t, err, ErrMaskSize)
}
