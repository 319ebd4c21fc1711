package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"

	"github.com/aquilax/go-perlin"
	"github.com/chewxy/math32"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// Texture holds a 2D image sampled with nearest-neighbor lookup.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // Row-major pixel data
	WrapU  WrapMode
	WrapV  WrapMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture loads a texture from a PNG, JPEG, BMP, TIFF or WebP file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit values, scale to 8-bit
			tex.Pixels[y*tex.Width+x] = Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			}
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// NewNoiseTexture creates a grayscale Perlin noise texture. The same seed
// always yields the same texture.
func NewNoiseTexture(width, height int, scale float64, seed int64) *Texture {
	p := perlin.NewPerlin(2, 2, 3, seed)
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			n := p.Noise2D(float64(x)/scale, float64(y)/scale) // roughly [-1, 1]
			v := int((n + 1) / 2 * 255)
			v = max(0, min(255, v))
			tex.SetPixel(x, y, RGB(uint8(v), uint8(v), uint8(v)))
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the texel nearest to (u, v). V runs bottom to top.
func (t *Texture) Sample(u, v float32) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	u = wrapCoord(u, t.WrapU)
	v = wrapCoord(v, t.WrapV)

	// image Y=0 is at the top, V=0 at the bottom
	v = 1 - v

	x := int(u * float32(t.Width))
	y := int(v * float32(t.Height))
	x = min(x, t.Width-1)
	y = min(y, t.Height-1)
	return t.GetPixel(x, y)
}

func wrapCoord(coord float32, mode WrapMode) float32 {
	if math32.IsNaN(coord) || math32.IsInf(coord, 0) {
		return 0
	}
	switch mode {
	case WrapRepeat:
		coord -= math32.Floor(coord)
	case WrapClamp:
		coord = max(0, min(1, coord))
	}
	return coord
}
