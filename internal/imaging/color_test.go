package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ffffff", color.NRGBA{255, 255, 255, 255}, false},
		{"#FF8000", color.NRGBA{255, 128, 0, 255}, false},
		{"00ff00", color.NRGBA{0, 255, 0, 255}, false},
		{"#000", color.NRGBA{0, 0, 0, 255}, false},
		{" #0000ff ", color.NRGBA{0, 0, 255, 255}, false},
		{"", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
		{"#1234567", color.NRGBA{}, true},
		{"#ggg", color.NRGBA{}, true},
		{"##fff", color.NRGBA{}, true},
		{"red", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlatten(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(1, 1, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(2, 2, color.NRGBA{255, 0, 0, 0})

	out := Flatten(img, color.NRGBA{0, 0, 255, 255})
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, out.NRGBAAt(1, 1))
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, out.NRGBAAt(2, 2))
}

func TestAlphaAt(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{1, 2, 3, 128})

	assert.Equal(t, uint8(128), AlphaAt(img, 0, 0))
	assert.Equal(t, uint8(0), AlphaAt(img, 1, 1))
	assert.Equal(t, uint8(0), AlphaAt(img, 5, 5))
}
