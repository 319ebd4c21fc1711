// Package render implements the scanline rasterization pipeline: camera and
// projection, triangle scan conversion, a depth-buffered output buffer and
// its terminal and image sinks.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"

	"github.com/taigrr/scanline/pkg/math3d"
)

// OutputBuffer is an RGBA8 color buffer paired with a float32 depth buffer.
// Color holds Width*Height*4 bytes, row-major from the top-left pixel.
// Depth starts at -Inf and only increases within a frame: larger values are
// nearer.
type OutputBuffer struct {
	Width  int
	Height int
	Color  []byte
	Depth  []float32
}

// NewOutputBuffer creates a cleared buffer.
func NewOutputBuffer(width, height int) *OutputBuffer {
	b := &OutputBuffer{
		Width:  width,
		Height: height,
		Color:  make([]byte, width*height*4),
		Depth:  make([]float32, width*height),
	}
	b.ClearDepth()
	return b
}

// ClearDepth resets every depth entry to -Inf.
func (b *OutputBuffer) ClearDepth() {
	inf := math32.Inf(-1)
	for i := range b.Depth {
		b.Depth[i] = inf
	}
}

// Clear fills the color buffer with c and resets depth.
func (b *OutputBuffer) Clear(c color.RGBA) {
	for i := 0; i < len(b.Color); i += 4 {
		b.Color[i] = c.R
		b.Color[i+1] = c.G
		b.Color[i+2] = c.B
		b.Color[i+3] = c.A
	}
	b.ClearDepth()
}

// PutPixel writes c at (x, y). Coordinates must be inside the buffer.
func (b *OutputBuffer) PutPixel(x, y int, c color.RGBA) {
	i := (y*b.Width + x) * 4
	b.Color[i] = c.R
	b.Color[i+1] = c.G
	b.Color[i+2] = c.B
	b.Color[i+3] = c.A
}

// Pixel returns the color at (x, y). Coordinates must be inside the buffer.
func (b *OutputBuffer) Pixel(x, y int) color.RGBA {
	i := (y*b.Width + x) * 4
	return color.RGBA{b.Color[i], b.Color[i+1], b.Color[i+2], b.Color[i+3]}
}

// DepthAt returns the stored depth at (x, y).
func (b *OutputBuffer) DepthAt(x, y int) float32 {
	return b.Depth[y*b.Width+x]
}

// SetDepth stores d at (x, y).
func (b *OutputBuffer) SetDepth(x, y int, d float32) {
	b.Depth[y*b.Width+x] = d
}

// PosToPixel maps normalized device x, y in [-1, 1] to continuous pixel
// coordinates. +Y in device space is up; pixel rows grow downward.
func (b *OutputBuffer) PosToPixel(x, y float32) (px, py float32) {
	hw := float32(b.Width) / 2
	hh := float32(b.Height) / 2
	return hw * (x + 1), hh * (1 - y)
}

// PixelToPos is the inverse of PosToPixel.
func (b *OutputBuffer) PixelToPos(px, py float32) (x, y float32) {
	hw := float32(b.Width) / 2
	hh := float32(b.Height) / 2
	return px/hw - 1, 1 - py/hh
}

// PosToPixelPos maps a device-space point to pixel space, dropping z.
func (b *OutputBuffer) PosToPixelPos(p math3d.Point3) math3d.Point3 {
	px, py := b.PosToPixel(p.X, p.Y)
	return math3d.P3(px, py, 0)
}

// PosToPixelPosWithZ maps a device-space point to pixel space, keeping z.
func (b *OutputBuffer) PosToPixelPosWithZ(p math3d.Point3) math3d.Point3 {
	px, py := b.PosToPixel(p.X, p.Y)
	return math3d.P3(px, py, p.Z)
}

// ViewportMatrix returns the transform equivalent to PosToPixelPosWithZ.
func (b *OutputBuffer) ViewportMatrix() math3d.HomoTransform {
	hw := float32(b.Width) / 2
	hh := float32(b.Height) / 2
	return math3d.TransformFromRows([16]float32{
		hw, 0, 0, 0,
		0, -hh, 0, 0,
		0, 0, 1, 0,
		hw, hh, 0, 1,
	})
}

// ToImage wraps the color buffer as an image without copying.
func (b *OutputBuffer) ToImage() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Color,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// WritePNG encodes the color buffer as PNG, enlarged by an integer factor
// with nearest-neighbor scaling.
func (b *OutputBuffer) WritePNG(w io.Writer, scale int) error {
	var img image.Image = b.ToImage()
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, b.Width*scale, b.Height*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes the color buffer to path as PNG.
func (b *OutputBuffer) SavePNG(path string, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := b.WritePNG(f, scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
