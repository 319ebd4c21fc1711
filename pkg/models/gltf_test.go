package models

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
)

func ptr(i int) *int { return &i }

// triangleDoc builds a one-triangle document: positions, uvs and uint16
// indices packed into a single buffer.
func triangleDoc(t *testing.T) *gltf.Document {
	t.Helper()

	var buf bytes.Buffer
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 2, 0} {
		binary.Write(&buf, binary.LittleEndian, math.Float32bits(f))
	}
	for _, f := range []float32{0, 0, 1, 0, 0, 1} {
		binary.Write(&buf, binary.LittleEndian, math.Float32bits(f))
	}
	for _, i := range []uint16{0, 1, 2} {
		binary.Write(&buf, binary.LittleEndian, i)
	}
	data := buf.Bytes()

	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 24},
			{Buffer: 0, ByteOffset: 60, ByteLength: 6},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: ptr(0), Count: 3, Type: gltf.AccessorVec3, ComponentType: gltf.ComponentFloat},
			{BufferView: ptr(1), Count: 3, Type: gltf.AccessorVec2, ComponentType: gltf.ComponentFloat},
			{BufferView: ptr(2), Count: 3, Type: gltf.AccessorScalar, ComponentType: gltf.ComponentUshort},
		},
		Meshes: []*gltf.Mesh{{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0, gltf.TEXCOORD_0: 1},
				Indices:    ptr(2),
			}},
		}},
	}
}

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.CalculateNormals || !loader.SmoothNormals || !loader.LoadTextures {
		t.Errorf("unexpected defaults: %+v", loader)
	}
}

func TestFromDocument(t *testing.T) {
	mesh, err := NewGLTFLoader().FromDocument(triangleDoc(t), "tri.glb", "")
	if err != nil {
		t.Fatal(err)
	}
	if mesh.VertexCount() != 3 || mesh.TriangleCount() != 1 {
		t.Fatalf("got %d vertices, %d faces", mesh.VertexCount(), mesh.TriangleCount())
	}
	if got := mesh.GetFace(0); got != [3]int{0, 1, 2} {
		t.Errorf("face = %v, want source winding", got)
	}
	if mesh.GetFaceMaterial(0) != -1 {
		t.Errorf("material = %d, want -1", mesh.GetFaceMaterial(0))
	}

	pos, uv := mesh.GetVertex(2)
	if pos.Y != 2 {
		t.Errorf("vertex 2 = %v", pos)
	}
	// V is flipped to a bottom-up origin
	if uv.X != 0 || uv.Y != 0 {
		t.Errorf("uv 2 = %v, want (0,0)", uv)
	}
	if _, uv := mesh.GetVertex(0); uv.Y != 1 {
		t.Errorf("uv 0 = %v, want v=1", uv)
	}

	if !mesh.HasNormals() {
		t.Error("normals should be generated")
	}
	if n := mesh.Vertices[0].Normal; n.Z != 1 {
		t.Errorf("normal = %v, want +Z", n)
	}
	if mesh.BoundsMax.X != 1 || mesh.BoundsMax.Y != 2 {
		t.Errorf("bounds max = %v", mesh.BoundsMax)
	}
}

func TestFromDocumentNoIndices(t *testing.T) {
	doc := triangleDoc(t)
	doc.Meshes[0].Primitives[0].Indices = nil
	mesh, err := NewGLTFLoader().FromDocument(doc, "tri", "")
	if err != nil {
		t.Fatal(err)
	}
	if mesh.TriangleCount() != 1 || mesh.GetFace(0) != [3]int{0, 1, 2} {
		t.Errorf("faces = %v", mesh.Faces)
	}
}

func TestFromDocumentRejectsBadAccessor(t *testing.T) {
	doc := triangleDoc(t)
	doc.Accessors[0].Type = gltf.AccessorVec2
	if _, err := NewGLTFLoader().FromDocument(doc, "tri", ""); err == nil {
		t.Error("expected error for VEC2 positions")
	}

	doc = triangleDoc(t)
	doc.Accessors[0].Count = 100
	if _, err := NewGLTFLoader().FromDocument(doc, "tri", ""); err == nil {
		t.Error("expected error for accessor past buffer end")
	}
}

func TestFromDocumentMaterialTexture(t *testing.T) {
	doc := triangleDoc(t)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(1, 1, color.RGBA{200, 10, 10, 255})
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatal(err)
	}

	buf := doc.Buffers[0]
	offset := len(buf.Data)
	buf.Data = append(buf.Data, pngBuf.Bytes()...)
	buf.ByteLength = len(buf.Data)
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
		Buffer: 0, ByteOffset: offset, ByteLength: pngBuf.Len(),
	})
	doc.Images = []*gltf.Image{{MimeType: "image/png", BufferView: ptr(3)}}
	doc.Textures = []*gltf.Texture{{Source: ptr(0)}}
	doc.Materials = []*gltf.Material{{
		Name: "painted",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  &[4]float64{0.5, 0.25, 1, 1},
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	}}
	doc.Meshes[0].Primitives[0].Material = ptr(0)

	mesh, err := NewGLTFLoader().FromDocument(doc, "tri", "")
	if err != nil {
		t.Fatal(err)
	}
	tex := mesh.BaseTexture()
	if mesh.GetFaceMaterial(0) != 0 {
		t.Errorf("face material = %d, want 0", mesh.GetFaceMaterial(0))
	}
	mat := mesh.GetMaterial(0)
	if mat == nil || mat.Name != "painted" || mat.BaseColor != [4]float32{0.5, 0.25, 1, 1} {
		t.Fatalf("material = %+v", mat)
	}
	if tex == nil || !mat.HasTexture {
		t.Fatal("texture not decoded")
	}
	if r, _, _, _ := tex.At(1, 1).RGBA(); r>>8 != 200 {
		t.Errorf("texel red = %d, want 200", r>>8)
	}

	loader := NewGLTFLoader()
	loader.LoadTextures = false
	plain, err := loader.FromDocument(doc, "tri", "")
	if err != nil {
		t.Fatal(err)
	}
	if plain.BaseTexture() != nil {
		t.Error("LoadTextures=false still decoded an image")
	}
}
