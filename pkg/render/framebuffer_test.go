package render

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
)

func TestNewOutputBuffer(t *testing.T) {
	b := NewOutputBuffer(3, 2)
	if len(b.Color) != 3*2*4 || len(b.Depth) != 3*2 {
		t.Fatalf("sizes color=%d depth=%d", len(b.Color), len(b.Depth))
	}
	for i, c := range b.Color {
		if c != 0 {
			t.Fatalf("Color[%d] = %d, want 0", i, c)
		}
	}
	for i, d := range b.Depth {
		if !math.IsInf(float64(d), -1) {
			t.Fatalf("Depth[%d] = %v, want -Inf", i, d)
		}
	}
}

func TestPutPixelLayout(t *testing.T) {
	b := NewOutputBuffer(4, 3)
	b.PutPixel(2, 1, color.RGBA{10, 20, 30, 40})

	off := (1*4 + 2) * 4
	if got := b.Color[off : off+4]; !bytes.Equal(got, []byte{10, 20, 30, 40}) {
		t.Errorf("bytes at %d = %v", off, got)
	}
	if got := b.Pixel(2, 1); got != (color.RGBA{10, 20, 30, 40}) {
		t.Errorf("Pixel = %v", got)
	}
	if got := b.ToImage().RGBAAt(2, 1); got != (color.RGBA{10, 20, 30, 40}) {
		t.Errorf("image pixel = %v", got)
	}
}

func TestDepthAccess(t *testing.T) {
	b := NewOutputBuffer(2, 2)
	b.SetDepth(1, 1, 0.25)
	if b.DepthAt(1, 1) != 0.25 || b.Depth[3] != 0.25 {
		t.Errorf("DepthAt = %v", b.DepthAt(1, 1))
	}
	b.Clear(ColorBlack)
	if !math.IsInf(float64(b.DepthAt(1, 1)), -1) {
		t.Error("Clear did not reset depth")
	}
	if b.Pixel(0, 0) != ColorBlack {
		t.Errorf("Clear color = %v", b.Pixel(0, 0))
	}
}

func TestPosToPixel(t *testing.T) {
	b := NewOutputBuffer(8, 6)
	tests := []struct {
		name   string
		x, y   float32
		px, py float32
	}{
		{"top left", -1, 1, 0, 0},
		{"bottom right", 1, -1, 8, 6},
		{"center", 0, 0, 4, 3},
		{"quarter", -0.5, 0.5, 2, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py := b.PosToPixel(tt.x, tt.y)
			if !near(px, tt.px) || !near(py, tt.py) {
				t.Errorf("PosToPixel = (%v,%v), want (%v,%v)", px, py, tt.px, tt.py)
			}
			x, y := b.PixelToPos(px, py)
			if !near(x, tt.x) || !near(y, tt.y) {
				t.Errorf("round trip = (%v,%v), want (%v,%v)", x, y, tt.x, tt.y)
			}
		})
	}
}

func TestViewportMatrixMatchesPosToPixel(t *testing.T) {
	b := NewOutputBuffer(640, 480)
	vp := b.ViewportMatrix()
	for _, p := range []math3d.Point3{
		math3d.P3(0.3, -0.7, 0.5),
		math3d.P3(-1, 1, -1),
		math3d.P3(0.99, 0.01, 0),
	} {
		want := b.PosToPixelPosWithZ(p)
		got := vp.Apply(p)
		if !near(got.X, want.X) || !near(got.Y, want.Y) || !near(got.Z, want.Z) {
			t.Errorf("viewport(%v) = %v, want %v", p, got, want)
		}
		if flat := b.PosToPixelPos(p); flat.Z != 0 || flat.X != want.X {
			t.Errorf("PosToPixelPos(%v) = %v", p, flat)
		}
	}
}

func TestWritePNGScaled(t *testing.T) {
	b := NewOutputBuffer(2, 2)
	b.PutPixel(1, 0, ColorWhite)

	var buf bytes.Buffer
	if err := b.WritePNG(&buf, 3); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 6 {
		t.Fatalf("bounds = %v, want 6x6", img.Bounds())
	}
	r, g, bl, a := img.At(4, 1).RGBA()
	if r>>8 != 255 || g>>8 != 255 || bl>>8 != 255 || a>>8 != 255 {
		t.Errorf("scaled pixel = %v %v %v %v", r>>8, g>>8, bl>>8, a>>8)
	}
	if _, _, _, a := img.At(1, 1).RGBA(); a != 0 {
		t.Errorf("transparent pixel alpha = %v", a)
	}
}

func TestSavePNG(t *testing.T) {
	b := NewOutputBuffer(4, 4)
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := b.SavePNG(path, 1); err != nil {
		t.Fatal(err)
	}
	if err := b.SavePNG(filepath.Join(t.TempDir(), "missing", "frame.png"), 1); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestGlyphsSkipTransparent(t *testing.T) {
	b := NewOutputBuffer(3, 2)
	b.PutPixel(0, 0, RGB(1, 2, 3))
	b.PutPixel(2, 1, RGBA(9, 9, 9, 1))
	b.PutPixel(1, 1, RGBA(5, 5, 5, 0))

	cells := b.Glyphs()
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2: %v", len(cells), cells)
	}
	if cells[0] != (GlyphCell{X: 0, Y: 0, Color: RGB(1, 2, 3)}) {
		t.Errorf("cells[0] = %v", cells[0])
	}
	if cells[1].X != 2 || cells[1].Y != 1 {
		t.Errorf("cells[1] = %v", cells[1])
	}
}

func TestRgbaToColor(t *testing.T) {
	if rgbaToColor(RGBA(1, 2, 3, 0)) != nil {
		t.Error("transparent should map to nil")
	}
	if rgbaToColor(ColorWhite) == nil {
		t.Error("opaque should not map to nil")
	}
}
