package viewer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/models"
	"github.com/taigrr/scanline/pkg/render"
)

// Cube returns a unit cube centered on the origin with one full 0..1 UV
// square per side, wound counter-clockwise seen from outside.
func Cube() *models.Mesh {
	m := models.NewMesh("cube")
	sides := []struct{ normal, u, v math3d.Vec3 }{
		{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	}
	corners := [4]math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1)}

	for _, s := range sides {
		center := math3d.Point3{}.Add(s.normal.Scale(0.5))
		var idx [4]int
		for i, c := range corners {
			offset := s.u.Scale(c.X - 0.5).Add(s.v.Scale(c.Y - 0.5))
			idx[i] = m.AddVertex(center.Add(offset), c)
			m.Vertices[idx[i]].Normal = s.normal
		}
		m.AddFace(idx[0], idx[1], idx[2])
		m.AddFace(idx[0], idx[2], idx[3])
	}
	m.CalculateBounds()
	return m
}

// LoadMesh loads a .obj, .glb or .gltf file. An empty path yields Cube.
// The second result is the first embedded material texture, if any.
func LoadMesh(path string) (*models.Mesh, *render.Texture, error) {
	if path == "" {
		return Cube(), nil, nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".glb", ".gltf":
		mesh, img, err := models.LoadGLBWithTexture(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load model: %w", err)
		}
		var tex *render.Texture
		if img != nil {
			tex = render.TextureFromImage(img)
		}
		return mesh, tex, nil
	case ".obj":
		mesh, err := models.LoadOBJ(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load model: %w", err)
		}
		return mesh, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported format: %s (use .obj, .glb or .gltf)", ext)
	}
}

// Pattern names a generated texture used when no image is available.
type Pattern string

const (
	PatternChecker Pattern = "checker"
	PatternNoise   Pattern = "noise"
)

// ParsePattern parses "checker" or "noise".
func ParsePattern(s string) (Pattern, error) {
	switch strings.ToLower(s) {
	case "checker", "":
		return PatternChecker, nil
	case "noise", "perlin":
		return PatternNoise, nil
	}
	return "", fmt.Errorf("unknown pattern %q", s)
}

// Generate builds the pattern at 64x64. The zero Pattern is the checker.
func (p Pattern) Generate() *render.Texture {
	if p == PatternNoise {
		return render.NewNoiseTexture(64, 64, 16, 1)
	}
	return render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
}

// ResolveTexture picks the texture for a scene: an explicit file wins over
// the embedded one, and the generated pattern fills in when there is
// neither. A texture file that fails to load is logged and skipped.
func ResolveTexture(path string, embedded *render.Texture, fallback Pattern) *render.Texture {
	if path != "" {
		tex, err := render.LoadTexture(path)
		if err == nil {
			return tex
		}
		render.Logger().Warn("could not load texture", "path", path, "err", err)
	}
	if embedded != nil {
		return embedded
	}
	return fallback.Generate()
}
