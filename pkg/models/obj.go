package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/scanline/pkg/math3d"
)

// objKey identifies a unique position/texcoord pair. Zero means absent.
type objKey struct {
	v, vt int
}

type objParser struct {
	mesh      *Mesh
	positions []math3d.Point3
	texcoords []math3d.Vec2
	normals   []math3d.Vec3
	seen      map[objKey]int
	material  int
}

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()
	return ParseOBJ(f, filepath.Base(path))
}

// ParseOBJ reads the geometry statements of an OBJ stream (v, vt, vn, f,
// usemtl). Polygons are fan-triangulated and vertices sharing a position
// and texture coordinate are merged.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	p := &objParser{
		mesh:     NewMesh(name),
		seen:     make(map[objKey]int),
		material: -1,
	}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := p.statement(fields); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	if !p.mesh.HasNormals() {
		p.mesh.CalculateSmoothNormals()
	}
	p.mesh.CalculateBounds()
	return p.mesh, nil
}

func (p *objParser) statement(fields []string) error {
	switch fields[0] {
	case "v":
		f, err := parseFloats(fields[1:], 3)
		if err != nil {
			return fmt.Errorf("vertex: %w", err)
		}
		p.positions = append(p.positions, math3d.P3(f[0], f[1], f[2]))
	case "vt":
		f, err := parseFloats(fields[1:], 1)
		if err != nil {
			return fmt.Errorf("texcoord: %w", err)
		}
		p.texcoords = append(p.texcoords, math3d.V2(f[0], f[1]))
	case "vn":
		f, err := parseFloats(fields[1:], 3)
		if err != nil {
			return fmt.Errorf("normal: %w", err)
		}
		p.normals = append(p.normals, math3d.V3(f[0], f[1], f[2]))
	case "f":
		return p.face(fields[1:])
	case "usemtl":
		if len(fields) > 1 {
			p.useMaterial(fields[1])
		}
	}
	// o, g, s, mtllib and unknown statements carry nothing we render
	return nil
}

func (p *objParser) useMaterial(name string) {
	for i, m := range p.mesh.Materials {
		if m.Name == name {
			p.material = i
			return
		}
	}
	p.mesh.Materials = append(p.mesh.Materials, Material{Name: name, BaseColor: [4]float32{1, 1, 1, 1}})
	p.material = len(p.mesh.Materials) - 1
}

func (p *objParser) face(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("face needs at least 3 vertices, got %d", len(refs))
	}
	idx := make([]int, len(refs))
	for i, ref := range refs {
		vi, err := p.vertex(ref)
		if err != nil {
			return err
		}
		idx[i] = vi
	}
	for i := 1; i+1 < len(idx); i++ {
		p.mesh.Faces = append(p.mesh.Faces, Face{V: [3]int{idx[0], idx[i], idx[i+1]}, Material: p.material})
	}
	return nil
}

// vertex resolves a v, v/vt, v//vn or v/vt/vn reference to a mesh vertex.
func (p *objParser) vertex(ref string) (int, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return 0, fmt.Errorf("bad vertex reference %q", ref)
	}

	v, err := resolveIndex(parts[0], len(p.positions))
	if err != nil {
		return 0, fmt.Errorf("position in %q: %w", ref, err)
	}
	var vt, vn int
	if len(parts) > 1 && parts[1] != "" {
		if vt, err = resolveIndex(parts[1], len(p.texcoords)); err != nil {
			return 0, fmt.Errorf("texcoord in %q: %w", ref, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if vn, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return 0, fmt.Errorf("normal in %q: %w", ref, err)
		}
	}

	key := objKey{v: v, vt: vt}
	if i, ok := p.seen[key]; ok {
		return i, nil
	}

	var uv math3d.Vec2
	if vt > 0 {
		uv = p.texcoords[vt-1]
	}
	i := p.mesh.AddVertex(p.positions[v-1], uv)
	if vn > 0 {
		p.mesh.Vertices[i].Normal = p.normals[vn-1]
	}
	p.seen[key] = i
	return i, nil
}

// resolveIndex turns a 1-based or negative (relative) OBJ index into a
// 1-based absolute one.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n = count + n + 1
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("index %s out of range (%d defined)", s, count)
	}
	return n, nil
}

// parseFloats parses at least need values, filling up to three.
func parseFloats(fields []string, need int) ([3]float32, error) {
	var out [3]float32
	if len(fields) < need {
		return out, fmt.Errorf("want %d values, got %d", need, len(fields))
	}
	for i := 0; i < len(fields) && i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return out, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
