package render

import (
	"errors"
	"image/color"

	"github.com/chewxy/math32"

	"github.com/taigrr/scanline/pkg/math3d"
)

// ErrEmptyBuffer is returned when rendering into a nil or zero-sized buffer.
var ErrEmptyBuffer = errors.New("empty output buffer")

// Vertex is a model-space position with a texture coordinate.
type Vertex struct {
	Position math3d.Point3
	UV       math3d.Vec2
}

// Face is one triangle of a scene. When Tinted is set, Tint is the face's
// material color: textured shading multiplies samples by it and uses it in
// place of Config.Fallback when the scene has no texture.
type Face struct {
	V      [3]Vertex
	Tint   color.RGBA
	Tinted bool
}

// Triangle returns the face's positions as a Triangle.
func (f Face) Triangle() Triangle {
	return NewTriangle(f.V[0].Position, f.V[1].Position, f.V[2].Position)
}

// UVAt interpolates the vertex UVs with barycentric weights w.
func (f Face) UVAt(w [3]float32) math3d.Vec2 {
	return f.V[0].UV.Scale(w[0]).
		Add(f.V[1].UV.Scale(w[1])).
		Add(f.V[2].UV.Scale(w[2]))
}

// Scene is the input to one Render call. Texture is only used with
// textured shading.
type Scene struct {
	Faces   []Face
	Texture *Texture
}

// MeshSource is implemented by models.Mesh. It lets the render package
// build faces without importing the models package.
type MeshSource interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos math3d.Point3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// FaceColorSource is implemented by meshes that carry per-face material
// colors.
type FaceColorSource interface {
	FaceColor(i int) (color.RGBA, bool)
}

// FacesFromMesh expands an indexed mesh into faces. Material colors are
// copied when m implements FaceColorSource.
func FacesFromMesh(m MeshSource) []Face {
	colors, _ := m.(FaceColorSource)
	faces := make([]Face, 0, m.TriangleCount())
	for i := range m.TriangleCount() {
		idx := m.GetFace(i)
		var f Face
		for k, vi := range idx {
			pos, uv := m.GetVertex(vi)
			f.V[k] = Vertex{Position: pos, UV: uv}
		}
		if colors != nil {
			f.Tint, f.Tinted = colors.FaceColor(i)
		}
		faces = append(faces, f)
	}
	return faces
}

// FrameStats counts what happened during one Render call.
type FrameStats struct {
	Triangles  int // faces submitted
	Culled     int // faces with a vertex outside the view bounds, or back-facing
	Degenerate int // faces seen edge-on, with no solvable depth plane
	Pixels     int // pixels that passed the depth test
}

// Add accumulates o into s.
func (s *FrameStats) Add(o FrameStats) {
	s.Triangles += o.Triangles
	s.Culled += o.Culled
	s.Degenerate += o.Degenerate
	s.Pixels += o.Pixels
}

// Renderer scan-converts scenes through a Projector into an OutputBuffer.
// Rendering is synchronous and single-threaded; the projector must not be
// mutated while Render runs.
type Renderer struct {
	proj Projector
	cfg  Config
}

// NewRenderer creates a renderer for proj with the given settings.
func NewRenderer(proj Projector, cfg Config) *Renderer {
	return &Renderer{proj: proj, cfg: cfg}
}

// Config returns the renderer settings.
func (r *Renderer) Config() Config {
	return r.cfg
}

// SetShading switches the shading policy for subsequent frames.
func (r *Renderer) SetShading(s Shading) {
	r.cfg.Shading = s
}

// Clear prepares buf for a new frame.
func (r *Renderer) Clear(buf *OutputBuffer) {
	buf.Clear(r.cfg.Clear)
}

// depthSign converts projected z into a depth key where larger is nearer.
// The right-handed projection maps near to +1 and far to -1; the
// left-handed one mirrors that.
func depthSign(h Handedness) float32 {
	if h == LeftHanded {
		return -1
	}
	return 1
}

// shadeFunc returns the color for the pixel centered at (px, py) with
// projected depth z and depth key.
type shadeFunc func(px, py, z, key float32) color.RGBA

// Render draws scene into buf. Each face is transformed by
// Model · View · Projection; a face with any vertex outside [-1, 1] in x or
// y is dropped whole. Covered pixels are written only when their depth key
// is strictly greater than the stored one, so the result does not depend
// on face order.
func (r *Renderer) Render(buf *OutputBuffer, scene Scene) (FrameStats, error) {
	var stats FrameStats
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		return stats, ErrEmptyBuffer
	}

	mvp := r.proj.Model().Mul(r.proj.ViewProjection())
	sign := depthSign(r.proj.Handedness())

	textured := r.cfg.Shading == ShadingTextured && scene.Texture != nil
	var unproject math3d.HomoTransform
	canUnproject := false
	if textured {
		// one inversion per frame; each face adds its own rotation
		unproject, canUnproject = mvp.Mul(buf.ViewportMatrix()).Inverse()
		if !canUnproject {
			Logger().Warn("singular model-view-projection, using screen-space barycentrics")
		}
	}

	for _, face := range scene.Faces {
		stats.Triangles++

		var ndc [3]math3d.Point3
		visible := true
		for i, v := range face.V {
			p := mvp.Apply(v.Position)
			if !(p.X >= -1 && p.X <= 1 && p.Y >= -1 && p.Y <= 1) {
				visible = false
				break
			}
			ndc[i] = p
		}
		if !visible {
			stats.Culled++
			continue
		}
		if r.cfg.CullBackfaces && NewTriangle(ndc[0], ndc[1], ndc[2]).Winding() != CounterClockwise {
			stats.Culled++
			continue
		}

		tilt := NewTriangle(
			buf.PosToPixelPosWithZ(ndc[0]),
			buf.PosToPixelPosWithZ(ndc[1]),
			buf.PosToPixelPosWithZ(ndc[2]),
		)
		flat := tilt.Flatten()

		vec, err := tilt.DepthInterpolationVector()
		if err != nil {
			stats.Degenerate++
			continue
		}

		var shade shadeFunc
		if textured {
			shade = texturedShader(face, flat, scene.Texture, unproject, canUnproject)
		} else if r.cfg.Shading == ShadingTextured {
			fill := r.cfg.Fallback
			if face.Tinted {
				fill = opaque(face.Tint)
			}
			shade = func(_, _, _, _ float32) color.RGBA { return fill }
		} else {
			shade = flatShade
		}

		stats.Pixels += scan(buf, flat, vec, sign, shade)
	}

	Logger().Debug("frame rendered",
		"triangles", stats.Triangles,
		"culled", stats.Culled,
		"degenerate", stats.Degenerate,
		"pixels", stats.Pixels)
	return stats, nil
}

// scan walks the rows of flat's bounding box, writing every covered pixel
// that wins the depth test. Spans are searched over the full bounding box
// and clipped to the buffer afterwards: an edge lying on the right border
// crosses each row at x = Width. It returns the number of pixels written.
func scan(buf *OutputBuffer, flat Triangle, vec math3d.Matrix, sign float32, shade shadeFunc) int {
	minX, maxX, sy, ey := flat.BoundingBox()
	sy = max(sy, 0)
	ey = min(ey, buf.Height)
	if maxX < 0 || minX >= buf.Width {
		return 0
	}

	written := 0
	for j := sy; j < ey; j++ {
		y := float32(j) + 0.5
		l, r, ok := flat.HorizontalSpan(y, minX, maxX)
		if !ok {
			continue
		}
		l = max(l, 0)
		r = min(r, buf.Width-1)
		for i := l; i <= r; i++ {
			x := float32(i) + 0.5
			z := DepthAt(vec, x, y)
			if math32.IsNaN(z) || math32.IsInf(z, 0) {
				continue
			}
			key := sign * z
			if key <= buf.DepthAt(i, j) {
				continue
			}
			buf.SetDepth(i, j, key)
			buf.PutPixel(i, j, shade(x, y, z, key))
			written++
		}
	}
	return written
}

// flatShade maps the depth key from [-1, 1] to a gray level.
func flatShade(_, _, _, key float32) color.RGBA {
	v := math32.Floor(255 * (key + 1) / 2)
	v = max(0, min(255, v))
	g := uint8(v)
	return color.RGBA{g, g, g, 255}
}

// texturedShader returns a shader that recovers each pixel's barycentric
// weights on the untransformed face and samples tex at the interpolated UV.
//
// The pixel (x, y, z) is pushed back through the inverse of
// Model·View·Projection·Viewport into model space and rotated so the face
// lies flat in z; 2D barycentrics there are exact for the true triangle.
func texturedShader(face Face, flat Triangle, tex *Texture, unproject math3d.HomoTransform, canUnproject bool) shadeFunc {
	sample := func(uv math3d.Vec2) color.RGBA {
		c := tex.Sample(uv.X, uv.Y)
		if face.Tinted {
			c = modulate(c, face.Tint)
		}
		return c
	}

	if !canUnproject {
		return func(x, y, _, _ float32) color.RGBA {
			w, ok := flat.Barycentric2D(x, y)
			if !ok {
				w = [3]float32{1, 0, 0}
			}
			return sample(face.UVAt(w))
		}
	}

	model := face.Triangle()
	rot := model.RotateToAxis()
	fix := unproject.Mul(rot)
	aligned := model.Transform(rot)

	return func(x, y, z, _ float32) color.RGBA {
		p := fix.Apply(math3d.P3(x, y, z))
		w, ok := aligned.Barycentric2D(p.X, p.Y)
		if !ok {
			w, ok = flat.Barycentric2D(x, y)
			if !ok {
				w = [3]float32{1, 0, 0}
			}
		}
		return sample(face.UVAt(w))
	}
}

// modulate multiplies the color channels of c by tint. Alpha is kept.
func modulate(c, tint color.RGBA) color.RGBA {
	mul := func(a, b uint8) uint8 { return uint8(uint16(a) * uint16(b) / 255) }
	return color.RGBA{mul(c.R, tint.R), mul(c.G, tint.G), mul(c.B, tint.B), c.A}
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 255
	return c
}
