package imaging

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	// ErrNoAlpha is returned when the output format cannot hold an alpha
	// channel and no background colour was given to flatten onto.
	ErrNoAlpha = errors.New("output format has no alpha channel; set a background color")

	// ErrEmptyImage is returned for sources with zero width or height.
	ErrEmptyImage = errors.New("image has no pixels")
)

// CircleOptions tunes MakeCircle. The zero value reproduces the plain
// behaviour: hard mask edge, ellipse inscribed in the full image, Lanczos
// resampling for the fit step, no background.
type CircleOptions struct {
	// Antialias gives boundary pixels fractional coverage.
	Antialias bool `json:"antialias" yaml:"antialias"`

	// Square centre-crops the source to min(width, height) first so the mask
	// is a true circle.
	Square bool `json:"square" yaml:"square"`

	// Feather is the Gaussian blur radius applied to the mask edge in pixels.
	Feather float64 `json:"feather" yaml:"feather"`

	// Background is a hex colour. When set the result is flattened onto it,
	// which is required for formats without alpha such as JPEG.
	Background string `json:"background,omitempty" yaml:"background"`

	// Filter names the resampling filter used when the fit step has to scale:
	// "lanczos" (default), "catmullrom", "linear", "box" or "nearest".
	Filter string `json:"filter,omitempty" yaml:"filter"`
}

// CircleResult describes one written circle image.
type CircleResult struct {
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Format     string `json:"format"`
}

var filters = map[string]imaging.ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"linear":     imaging.Linear,
	"box":        imaging.Box,
	"nearest":    imaging.NearestNeighbor,
}

// ResampleFilter resolves a filter name. The empty name selects Lanczos.
func ResampleFilter(name string) (imaging.ResampleFilter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return imaging.Lanczos, nil
	}
	f, ok := filters[name]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter: %s", name)
	}
	return f, nil
}

// MakeCircle returns img with everything outside the inscribed ellipse made
// fully transparent.
func MakeCircle(img image.Image, opts CircleOptions) (*image.NRGBA, error) {
	filter, err := ResampleFilter(opts.Filter)
	if err != nil {
		return nil, err
	}

	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyImage
	}
	if opts.Square && w != h {
		side := min(w, h)
		src = imaging.CropCenter(src, side, side)
		w, h = side, side
	}

	mask := EllipseMask(w, h, opts.Antialias)
	mask = FeatherMask(mask, opts.Feather)

	fitted := Fit(src, mask.Bounds().Dx(), mask.Bounds().Dy(), filter)
	out, err := PutAlpha(fitted, mask)
	if err != nil {
		return nil, err
	}

	if opts.Background != "" {
		bg, err := ParseColor(opts.Background)
		if err != nil {
			return nil, err
		}
		out = Flatten(out, bg)
	}
	return out, nil
}

// MakeCircleFile reads input, applies MakeCircle and writes the result to
// output, overwriting any existing file. The output format follows the
// output extension. cache may be nil.
//
// The output format is validated before the input is read, so a bad
// extension fails without touching the source.
func MakeCircleFile(cache *ImageCache, input, output string, opts CircleOptions) (*CircleResult, error) {
	format, err := OutputFormat(output)
	if err != nil {
		return nil, err
	}
	if !formatHasAlpha(format) && opts.Background == "" {
		return nil, fmt.Errorf("%w (%s)", ErrNoAlpha, strings.ToLower(format.String()))
	}

	img, err := cache.Load(input)
	if err != nil {
		return nil, err
	}

	out, err := MakeCircle(img, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}

	if err := Save(out, output); err != nil {
		return nil, err
	}
	cache.Evict(output)

	return &CircleResult{
		InputPath:  input,
		OutputPath: output,
		Width:      out.Bounds().Dx(),
		Height:     out.Bounds().Dy(),
		Format:     strings.ToLower(format.String()),
	}, nil
}
