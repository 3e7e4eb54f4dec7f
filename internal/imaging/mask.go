package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"
)

// ErrMaskSize is returned when a mask and the image it is applied to differ in
// size. Alpha compositing is undefined in that case.
var ErrMaskSize = errors.New("mask size does not match image size")

// kappa places cubic Bézier control points so four segments approximate a
// quarter ellipse each.
const kappa = 0.5522847498

// EllipseMask returns a single-channel mask of the given size with a filled
// ellipse inscribed in (0,0)-(width,height).
//
// Pixels inside the ellipse are 255 and pixels outside are 0. Without
// antialias a pixel is inside when its centre satisfies
//
//	((x+0.5-cx)/rx)² + ((y+0.5-cy)/ry)² <= 1
//
// With antialias the ellipse is rasterised as a path and boundary pixels get
// their fractional coverage. Pixels lying wholly inside the ellipse are
// always 255 and pixels wholly outside are always 0.
func EllipseMask(width, height int, antialias bool) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return mask
	}

	if antialias {
		rasterizeEllipse(mask)
		return mask
	}

	rx := float64(width) / 2
	ry := float64(height) / 2
	for y := 0; y < height; y++ {
		dy := (float64(y) + 0.5 - ry) / ry
		if dy*dy > 1 {
			continue
		}
		span := rx * math.Sqrt(1-dy*dy)
		row := mask.Pix[y*mask.Stride : y*mask.Stride+width]
		for x := range row {
			if math.Abs(float64(x)+0.5-rx) <= span {
				row[x] = 0xff
			}
		}
	}
	return mask
}

func rasterizeEllipse(mask *image.Alpha) {
	b := mask.Bounds()
	rx := float32(b.Dx()) / 2
	ry := float32(b.Dy()) / 2
	cx, cy := rx, ry
	kx, ky := rx*kappa, ry*kappa

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(cx+rx, cy)
	z.CubeTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	z.CubeTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	z.CubeTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	z.CubeTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	z.ClosePath()
	z.Draw(mask, b, image.Opaque, image.Point{})

	// The rasterizer flattens curves into chords, which shaves a little
	// coverage off pixels just inside the edge. Classify those exactly.
	for y := 0; y < b.Dy(); y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()]
		for x := range row {
			switch {
			case pixelInsideEllipse(x, y, b.Dx(), b.Dy()):
				row[x] = 0xff
			case pixelOutsideEllipse(x, y, b.Dx(), b.Dy()):
				row[x] = 0
			}
		}
	}
}

// pixelInsideEllipse reports whether all of pixel (x, y) lies inside the
// ellipse inscribed in a w x h box. The ellipse is convex, so checking the
// four corners is enough.
func pixelInsideEllipse(x, y, w, h int) bool {
	rx, ry := float64(w)/2, float64(h)/2
	for _, cy := range [2]int{y, y + 1} {
		for _, cx := range [2]int{x, x + 1} {
			dx := (float64(cx) - rx) / rx
			dy := (float64(cy) - ry) / ry
			if dx*dx+dy*dy > 1 {
				return false
			}
		}
	}
	return true
}

// pixelOutsideEllipse reports whether no part of pixel (x, y) lies inside
// the ellipse inscribed in a w x h box.
func pixelOutsideEllipse(x, y, w, h int) bool {
	rx, ry := float64(w)/2, float64(h)/2
	// Nearest point of the pixel to the centre, in normalised coordinates.
	nx := (math.Max(float64(x), math.Min(rx, float64(x+1))) - rx) / rx
	ny := (math.Max(float64(y), math.Min(ry, float64(y+1))) - ry) / ry
	return nx*nx+ny*ny >= 1
}

// FeatherMask softens the mask edge with a Gaussian blur of the given radius.
// A radius <= 0 returns mask unchanged.
func FeatherMask(mask *image.Alpha, radius float64) *image.Alpha {
	if radius <= 0 {
		return mask
	}

	blurred := blur.Gaussian(mask, radius)
	out := image.NewAlpha(mask.Bounds())
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// An alpha-only source converts to premultiplied grey, so A
			// carries the blurred coverage.
			out.Pix[y*out.Stride+x] = blurred.Pix[y*blurred.Stride+x*4+3]
		}
	}
	return out
}

// Fit scales and crops img to exactly width x height, keeping the crop
// centred on both axes. When img already has that size the result is a
// plain NRGBA copy.
func Fit(img image.Image, width, height int, filter imaging.ResampleFilter) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img)
	}
	return imaging.Fill(img, width, height, imaging.Center, filter)
}

// PutAlpha returns a copy of img whose alpha channel is replaced by mask.
// Colour channels are kept as non-premultiplied values, so fully transparent
// pixels still hold their original colour.
func PutAlpha(img image.Image, mask *image.Alpha) (*image.NRGBA, error) {
	ib, mb := img.Bounds(), mask.Bounds()
	if ib.Dx() != mb.Dx() || ib.Dy() != mb.Dy() {
		return nil, fmt.Errorf("%w: image %dx%d, mask %dx%d",
			ErrMaskSize, ib.Dx(), ib.Dy(), mb.Dx(), mb.Dy())
	}

	out := imaging.Clone(img)
	w, h := ib.Dx(), ib.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x*4+3] = mask.Pix[y*mask.Stride+x]
		}
	}
	return out, nil
}
