package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const quadOBJ = `# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl paper
f 1/1 2/2 3/3 4/4
`

func TestParseOBJQuad(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ), "quad")
	if err != nil {
		t.Fatal(err)
	}
	if mesh.VertexCount() != 4 || mesh.TriangleCount() != 2 {
		t.Fatalf("got %d vertices, %d faces", mesh.VertexCount(), mesh.TriangleCount())
	}
	if mesh.GetFace(0) != [3]int{0, 1, 2} || mesh.GetFace(1) != [3]int{0, 2, 3} {
		t.Errorf("fan triangulation = %v, %v", mesh.GetFace(0), mesh.GetFace(1))
	}
	if _, uv := mesh.GetVertex(2); uv.X != 1 || uv.Y != 1 {
		t.Errorf("uv 2 = %v", uv)
	}
	if mat := mesh.GetMaterial(mesh.GetFaceMaterial(1)); mat == nil || mat.Name != "paper" {
		t.Errorf("face material = %v", mat)
	}
	if n := mesh.Vertices[0].Normal; n.Z != 1 {
		t.Errorf("generated normal = %v, want +Z", n)
	}
}

func TestParseOBJReferenceForms(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		vertices int
		faces    int
	}{
		{"positions only", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n", 3, 1},
		{"with normals", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\n", 3, 1},
		{"full", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvn 0 0 1\nf 1/1/1 2/1/1 3/1/1\n", 3, 1},
		{"negative indices", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n", 3, 1},
		{"shared vertices merge", "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nf 1 2 3\nf 2 4 3\n", 4, 2},
		{"distinct uvs split", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 1\nf 1/1 2/1 3/1\nf 1/2 2/1 3/1\n", 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := ParseOBJ(strings.NewReader(tt.src), tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if mesh.VertexCount() != tt.vertices || mesh.TriangleCount() != tt.faces {
				t.Errorf("got %d vertices, %d faces; want %d, %d",
					mesh.VertexCount(), mesh.TriangleCount(), tt.vertices, tt.faces)
			}
		})
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"short vertex", "v 0 0\n"},
		{"bad number", "v 0 zero 0\n"},
		{"two vertex face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"missing texcoord", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOBJ(strings.NewReader(tt.src), "bad.obj"); err == nil {
				t.Error("expected error")
			} else if !strings.HasPrefix(err.Error(), "bad.obj:") {
				t.Errorf("error %q lacks location", err)
			}
		})
	}
}

func TestLoadOBJ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := os.WriteFile(path, []byte(quadOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	mesh, err := LoadOBJ(path)
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Name != "quad.obj" || mesh.TriangleCount() != 2 {
		t.Errorf("mesh %q with %d faces", mesh.Name, mesh.TriangleCount())
	}

	if _, err := LoadOBJ(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("expected error for missing file")
	}
}
