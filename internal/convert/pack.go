package convert

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
)

// Panel is the geometry of a tri-color (black/red/white) e-paper panel.
type Panel struct {
	Width  int
	Height int
	// BlackLuma is the luma below which a non-red pixel is inked black.
	BlackLuma float64
}

// DefaultPanel is the 12.48" B panel in landscape.
func DefaultPanel() Panel {
	return Panel{Width: 1304, Height: 984, BlackLuma: 170}
}

// Stride is the number of bytes per packed row.
func (p Panel) Stride() int { return p.Width / 8 }

// PlaneSize is the byte length of one packed plane.
func (p Panel) PlaneSize() int { return p.Stride() * p.Height }

// PackNRGBA converts a screenshot into packed 1bpp black and red planes.
//
// The image must be exactly p.Width wide and at least p.Height tall; taller
// images are center-cropped. Planes are y-major, MSB first:
//
//	byteIndex = y*Stride + x>>3
//	mask      = 0x80 >> (x & 7)
//
// A set bit is white; ink clears it.
func PackNRGBA(img *image.NRGBA, p Panel) (black, red []byte, err error) {
	if p.Width <= 0 || p.Height <= 0 || p.Width%8 != 0 {
		return nil, nil, fmt.Errorf("convert: invalid panel %dx%d", p.Width, p.Height)
	}
	if p.BlackLuma <= 0 {
		p.BlackLuma = DefaultPanel().BlackLuma
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w != p.Width {
		return nil, nil, fmt.Errorf("convert: expected width %d, got %d", p.Width, w)
	}
	if h < p.Height {
		return nil, nil, fmt.Errorf("convert: expected height >= %d, got %d", p.Height, h)
	}

	cropY := (h - p.Height) / 2
	stride := p.Stride()

	black = make([]byte, p.PlaneSize())
	red = make([]byte, p.PlaneSize())
	for i := range black {
		black[i] = 0xFF
		red[i] = 0xFF
	}

	for py := 0; py < p.Height; py++ {
		rowOff := (cropY + py) * img.Stride
		for px := 0; px < p.Width; px++ {
			i := rowOff + px*4
			c := color.NRGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2], A: img.Pix[i+3]}
			if c.A < 128 {
				continue
			}

			idx := py*stride + px>>3
			mask := byte(0x80 >> (px & 7))
			switch classifyPixel(c, p.BlackLuma) {
			case inkBlack:
				black[idx] &^= mask
			case inkRed:
				red[idx] &^= mask
			}
		}
	}
	return black, red, nil
}

type inkColor int

const (
	inkWhite inkColor = iota
	inkBlack
	inkRed
)

// classifyPixel maps a pixel to one ink. Red-dominant warm colors (the
// amber pickup accent included) go to the red plane; everything else darker
// than blackLuma goes to black.
func classifyPixel(c color.NRGBA, blackLuma float64) inkColor {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	redness := r - max(g, b)
	if r > 128 && redness > 32 {
		return inkRed
	}
	if 0.299*r+0.587*g+0.114*b < blackLuma {
		return inkBlack
	}
	return inkWhite
}

// DecodePNG reads a PNG file into an NRGBA image.
func DecodePNG(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	defer f.Close()

	src, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("convert: decode %s: %w", path, err)
	}
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n, nil
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}

// WritePlanes writes black and red planes as <base>.black.bin and
// <base>.red.bin in dir.
func WritePlanes(dir, base string, black, red []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, plane := range map[string][]byte{"black": black, "red": red} {
		path := filepath.Join(dir, base+"."+name+".bin")
		if err := os.WriteFile(path, plane, 0o644); err != nil {
			return fmt.Errorf("convert: write %s: %w", path, err)
		}
	}
	return nil
}
