// Package models loads indexed triangle meshes from glTF and Wavefront OBJ
// files and prepares them for the rasterizer.
package models

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/taigrr/scanline/pkg/math3d"
)

// Mesh represents a 3D mesh with vertices, faces, and materials.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Point3
	BoundsMax math3d.Point3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Point3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face represents a triangle face with vertex indices and material reference.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material is the subset of a glTF PBR material the renderer reads. The
// base color tints textured faces.
type Material struct {
	Name       string
	BaseColor  [4]float32  // RGBA in 0-1 range
	BaseMap    image.Image // Optional base color texture
	HasTexture bool
}

// RGBA converts the base color to 8-bit channels, clamped to 0-255.
func (m Material) RGBA() color.RGBA {
	var c [4]uint8
	for i, f := range m.BaseColor {
		c[i] = uint8(math32.Round(255 * max(0, min(1, f))))
	}
	return color.RGBA{c[0], c[1], c[2], c[3]}
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(pos math3d.Point3, uv math3d.Vec2) int {
	m.Vertices = append(m.Vertices, MeshVertex{Position: pos, UV: uv})
	return len(m.Vertices) - 1
}

// AddFace appends a triangle without a material.
func (m *Mesh) AddFace(a, b, c int) {
	m.Faces = append(m.Faces, Face{V: [3]int{a, b, c}, Material: -1})
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Point3{}, math3d.Point3{}
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		p := v.Position
		m.BoundsMin = math3d.P3(min(m.BoundsMin.X, p.X), min(m.BoundsMin.Y, p.Y), min(m.BoundsMin.Z, p.Z))
		m.BoundsMax = math3d.P3(max(m.BoundsMax.X, p.X), max(m.BoundsMax.Y, p.Y), max(m.BoundsMax.Z, p.Z))
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Point3 {
	return m.BoundsMin.Add(m.BoundsMax.Sub(m.BoundsMin).Scale(0.5))
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// FitTransform returns the transform that centers the mesh on the origin
// and scales its largest dimension to extent. An empty or flat-to-a-point
// mesh gets a pure translation.
func (m *Mesh) FitTransform(extent float32) math3d.HomoTransform {
	center := m.Center().Vec().Negate()
	t := math3d.Translation(center)

	size := m.Size()
	largest := max(size.X, size.Y, size.Z)
	if largest <= 0 || math32.IsInf(largest, 0) {
		return t
	}
	s := extent / largest
	return t.Then(math3d.ScaleTransform(s, s, s))
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateNormals assigns each face's normal to its three vertices.
func (m *Mesh) CalculateNormals() {
	for i := range m.Faces {
		f := &m.Faces[i]
		normal := m.faceNormal(*f).Normalize()

		m.Vertices[f.V[0]].Normal = normal
		m.Vertices[f.V[1]].Normal = normal
		m.Vertices[f.V[2]].Normal = normal
	}
}

// CalculateSmoothNormals computes area-weighted averaged normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vec3{}
	}

	for _, f := range m.Faces {
		// unnormalized, so larger faces weigh more
		normal := m.faceNormal(f)
		for _, vi := range f.V {
			m.Vertices[vi].Normal = m.Vertices[vi].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// HasNormals reports whether any vertex carries a non-zero normal.
func (m *Mesh) HasNormals() bool {
	for _, v := range m.Vertices {
		if v.Normal.LenSq() > 1e-6 {
			return true
		}
	}
	return false
}

// Transform applies t to every vertex position and direction to every
// normal, then recomputes the bounds.
func (m *Mesh) Transform(t math3d.HomoTransform) {
	for i := range m.Vertices {
		m.Vertices[i].Position = t.Apply(m.Vertices[i].Position)
		// rotation part only; non-uniform scale skews normals slightly
		m.Vertices[i].Normal = t.ApplyVec(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	copy(clone.Materials, m.Materials)
	return clone
}

// GetVertex returns the position and UV for vertex i.
// Implements render.MeshSource.
func (m *Mesh) GetVertex(i int) (math3d.Point3, math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.UV
}

// GetFace returns the vertex indices for face i.
// Implements render.MeshSource.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetFaceMaterial returns the material index for face i.
// Returns -1 if no material assigned.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i.
// Returns nil if index is out of bounds or -1.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// FaceColor returns the base color of face i's material. It reports false
// for faces without one. Implements render.FaceColorSource.
func (m *Mesh) FaceColor(i int) (color.RGBA, bool) {
	mat := m.GetMaterial(m.GetFaceMaterial(i))
	if mat == nil {
		return color.RGBA{}, false
	}
	return mat.RGBA(), true
}

// BaseTexture returns the first material texture, or nil.
func (m *Mesh) BaseTexture() image.Image {
	for _, mat := range m.Materials {
		if mat.HasTexture && mat.BaseMap != nil {
			return mat.BaseMap
		}
	}
	return nil
}
