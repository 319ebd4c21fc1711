package models

import (
	"image/color"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
)

func TestMaterialRGBA(t *testing.T) {
	for _, tt := range []struct {
		name string
		base [4]float32
		want color.RGBA
	}{
		{"red", [4]float32{1, 0, 0, 1}, color.RGBA{255, 0, 0, 255}},
		{"fractional", [4]float32{0.5, 0.25, 1, 1}, color.RGBA{128, 64, 255, 255}},
		{"clamped", [4]float32{2, -1, 0.5, 0}, color.RGBA{255, 0, 128, 0}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Material{BaseColor: tt.base}).RGBA(); got != tt.want {
				t.Errorf("RGBA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeshFaceColor(t *testing.T) {
	mesh := NewMesh("test")
	mesh.Materials = []Material{
		{Name: "red", BaseColor: [4]float32{1, 0, 0, 1}},
		{Name: "green", BaseColor: [4]float32{0, 1, 0, 1}},
	}
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{0, 1, 2}, Material: 1},
		{V: [3]int{0, 1, 2}, Material: -1},
		{V: [3]int{0, 1, 2}, Material: 7},
	}

	for i, want := range []struct {
		c  color.RGBA
		ok bool
	}{
		{color.RGBA{255, 0, 0, 255}, true},
		{color.RGBA{0, 255, 0, 255}, true},
		{color.RGBA{}, false},
		{color.RGBA{}, false},
	} {
		c, ok := mesh.FaceColor(i)
		if c != want.c || ok != want.ok {
			t.Errorf("FaceColor(%d) = %v, %v; want %v, %v", i, c, ok, want.c, want.ok)
		}
	}
}

func TestMeshClonePreservesMaterials(t *testing.T) {
	mesh := NewMesh("source")
	mesh.Materials = []Material{{Name: "mat1", BaseColor: [4]float32{1, 0, 0, 1}}}
	mesh.Faces = []Face{{V: [3]int{0, 1, 2}, Material: 0}}

	clone := mesh.Clone()
	clone.Materials[0].BaseColor = [4]float32{0, 0, 1, 1}

	if c, _ := mesh.FaceColor(0); c != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("source color changed to %v", c)
	}
	if c, _ := clone.FaceColor(0); c != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("clone color = %v", c)
	}
}

// paintedQuad is a 2x2 quad at the origin painted with one material.
func paintedQuad(base [4]float32) *Mesh {
	m := NewMesh("quad")
	m.Materials = []Material{{Name: "paint", BaseColor: base}}
	a := m.AddVertex(math3d.P3(-1, -1, 0), math3d.V2(0, 0))
	b := m.AddVertex(math3d.P3(1, -1, 0), math3d.V2(1, 0))
	c := m.AddVertex(math3d.P3(1, 1, 0), math3d.V2(1, 1))
	d := m.AddVertex(math3d.P3(-1, 1, 0), math3d.V2(0, 1))
	m.Faces = []Face{
		{V: [3]int{a, b, c}, Material: 0},
		{V: [3]int{a, c, d}, Material: 0},
	}
	m.CalculateBounds()
	return m
}

func TestMaterialColorRendering(t *testing.T) {
	white := render.NewTexture(1, 1)
	white.SetPixel(0, 0, render.RGB(255, 255, 255))

	for _, tt := range []struct {
		name string
		tex  *render.Texture
		want color.RGBA
	}{
		// the base color replaces the fallback
		{"untextured", nil, color.RGBA{128, 64, 255, 255}},
		// and tints texture samples
		{"textured", white, color.RGBA{128, 64, 255, 255}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			mesh := paintedQuad([4]float32{0.5, 0.25, 1, 1})
			faces := render.FacesFromMesh(mesh)
			if !faces[0].Tinted || faces[0].Tint != (color.RGBA{128, 64, 255, 255}) {
				t.Fatalf("face tint = %v (tinted %v)", faces[0].Tint, faces[0].Tinted)
			}

			cam := render.NewCamera(render.DefaultCameraConfig())
			buf := render.NewOutputBuffer(32, 32)
			cam.UpdateProjection(buf.Width, buf.Height)
			r := render.NewRenderer(cam, render.Config{Shading: render.ShadingTextured, Fallback: render.ColorMagenta})

			stats, err := r.Render(buf, render.Scene{Faces: faces, Texture: tt.tex})
			if err != nil {
				t.Fatal(err)
			}
			if stats.Pixels == 0 {
				t.Fatalf("stats = %+v", stats)
			}
			if got := buf.Pixel(15, 15); got != tt.want {
				t.Errorf("center = %v, want %v", got, tt.want)
			}
		})
	}
}
