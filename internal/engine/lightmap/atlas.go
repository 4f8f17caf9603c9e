package lightmap

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// Atlas is a square RGB lightmap, 3 bytes per luxel, rows top to bottom.
// It implements image.Image.
type Atlas struct {
	Size int
	Pix  []uint8
}

// NewAtlas returns a black atlas.
func NewAtlas(size int) *Atlas {
	return &Atlas{Size: size, Pix: make([]uint8, size*size*3)}
}

func (a *Atlas) offset(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= a.Size || y >= a.Size {
		return 0, false
	}
	return (y*a.Size + x) * 3, true
}

// RGB returns the luxel at (x, y). Luxels outside the atlas are black.
func (a *Atlas) RGB(x, y int) (r, g, b uint8) {
	i, ok := a.offset(x, y)
	if !ok {
		return 0, 0, 0
	}
	return a.Pix[i], a.Pix[i+1], a.Pix[i+2]
}

// SetRGB writes the luxel at (x, y). Writes outside the atlas are dropped
// and reported as false.
func (a *Atlas) SetRGB(x, y int, r, g, b uint8) bool {
	i, ok := a.offset(x, y)
	if !ok {
		return false
	}
	a.Pix[i], a.Pix[i+1], a.Pix[i+2] = r, g, b
	return true
}

// copyRect copies the luxels of r, clipped to both atlases, from src.
func (a *Atlas) copyRect(src *Atlas, r Rect) {
	for y := max(r.Y, 0); y < min(r.Y+r.H, a.Size, src.Size); y++ {
		x0, x1 := max(r.X, 0), min(r.X+r.W, a.Size, src.Size)
		if x0 >= x1 {
			return
		}
		copy(a.Pix[(y*a.Size+x0)*3:(y*a.Size+x1)*3], src.Pix[(y*src.Size+x0)*3:(y*src.Size+x1)*3])
	}
}

// ColorModel implements image.Image.
func (a *Atlas) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (a *Atlas) Bounds() image.Rectangle {
	return image.Rect(0, 0, a.Size, a.Size)
}

// At implements image.Image.
func (a *Atlas) At(x, y int) color.Color {
	r, g, b := a.RGB(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// RGBA converts the atlas to an opaque RGBA image.
func (a *Atlas) RGBA() *image.RGBA {
	img := image.NewRGBA(a.Bounds())
	for i, j := 0, 0; i < len(a.Pix); i, j = i+3, j+4 {
		img.Pix[j] = a.Pix[i]
		img.Pix[j+1] = a.Pix[i+1]
		img.Pix[j+2] = a.Pix[i+2]
		img.Pix[j+3] = 255
	}
	return img
}

// WritePNG encodes the atlas as PNG.
func (a *Atlas) WritePNG(w io.Writer) error {
	if err := png.Encode(w, a.RGBA()); err != nil {
		return fmt.Errorf("encode atlas: %w", err)
	}
	return nil
}
