package convert

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	amber = color.NRGBA{R: 0xf5, G: 0x9e, B: 0x0b, A: 255}
	blue  = color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 255}
	text  = color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 255}
)

func TestClassifyPixel(t *testing.T) {
	cases := []struct {
		name string
		c    color.NRGBA
		want inkColor
	}{
		{"white", white, inkWhite},
		{"amber pickup", amber, inkRed},
		{"blue default", blue, inkBlack},
		{"text", text, inkBlack},
		{"grid line", color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 255}, inkWhite},
		{"timeline accent", color.NRGBA{R: 0x88, G: 0x84, B: 0xd8, A: 255}, inkBlack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, classifyPixel(tc.c, DefaultPanel().BlackLuma))
		})
	}
}

func TestPackNRGBA(t *testing.T) {
	p := Panel{Width: 16, Height: 2}
	img := solid(16, 4, white)
	// Rows 1..2 survive the center crop.
	img.SetNRGBA(0, 1, amber)
	img.SetNRGBA(9, 2, text)
	img.SetNRGBA(3, 0, text)

	black, red, err := PackNRGBA(img, p)
	require.NoError(t, err)
	require.Len(t, black, 4)
	require.Len(t, red, 4)

	require.Equal(t, []byte{0x7F, 0xFF, 0xFF, 0xFF}, red)
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xBF}, black)
}

func TestPackNRGBATransparentIsWhite(t *testing.T) {
	img := solid(8, 1, color.NRGBA{A: 0})
	black, red, err := PackNRGBA(img, Panel{Width: 8, Height: 1})
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF}, black)
	require.Equal(t, []byte{0xFF}, red)
}

func TestPackNRGBAGeometryErrors(t *testing.T) {
	_, _, err := PackNRGBA(solid(16, 2, white), Panel{Width: 8, Height: 2})
	require.Error(t, err)
	_, _, err = PackNRGBA(solid(16, 1, white), Panel{Width: 16, Height: 2})
	require.Error(t, err)
	_, _, err = PackNRGBA(solid(12, 2, white), Panel{Width: 12, Height: 2})
	require.Error(t, err)
}

func TestDecodePNGAndWritePlanes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")

	src := image.NewRGBA(image.Rect(0, 0, 8, 2))
	src.Set(1, 1, amber)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	img, err := DecodePNG(path)
	require.NoError(t, err)
	require.Equal(t, 8, img.Bounds().Dx())
	require.Equal(t, amber, img.NRGBAAt(1, 1))

	black, red, err := PackNRGBA(img, Panel{Width: 8, Height: 2})
	require.NoError(t, err)
	require.Equal(t, byte(0xBF), red[1])

	require.NoError(t, WritePlanes(dir, "calendar", black, red))
	got, err := os.ReadFile(filepath.Join(dir, "calendar.red.bin"))
	require.NoError(t, err)
	require.Equal(t, red, got)

	_, err = DecodePNG(filepath.Join(dir, "missing.png"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
