package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/scanline/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	CalculateNormals bool
	SmoothNormals    bool
	// LoadTextures decodes material base color images.
	LoadTextures bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
		LoadTextures:     true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// LoadGLBWithTexture loads a GLB file and returns the mesh plus the first
// material texture. The image is nil when the file embeds none.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	mesh, err := NewGLTFLoader().Load(path)
	if err != nil {
		return nil, nil, err
	}
	return mesh, mesh.BaseTexture(), nil
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(doc, filepath.Base(path), filepath.Dir(path))
}

// FromDocument converts an already decoded document. dir resolves
// external image URIs.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name, dir string) (*Mesh, error) {
	mesh := NewMesh(name)
	mesh.Materials = l.readMaterials(doc, dir)

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	if l.CalculateNormals && !mesh.HasNormals() {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		baseVertex := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: math3d.P3(p.X, p.Y, p.Z)}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				// GLTF puts V=0 at the top of the image; textures here sample bottom-up
				v.UV = math3d.V2(uvs[i][0], 1-uvs[i][1])
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{Material: material}
			for k := range 3 {
				idx := indices[i+k]
				if idx < 0 || idx >= len(positions) {
					return fmt.Errorf("index %d out of range (%d vertices)", idx, len(positions))
				}
				f.V[k] = baseVertex + idx
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}

// readMaterials converts glTF materials, decoding base color images when
// enabled. Undecodable images leave the material untextured.
func (l *GLTFLoader) readMaterials(doc *gltf.Document, dir string) []Material {
	mats := make([]Material, 0, len(doc.Materials))
	for _, gm := range doc.Materials {
		mat := Material{Name: gm.Name, BaseColor: [4]float32{1, 1, 1, 1}}
		pbr := gm.PBRMetallicRoughness
		if pbr != nil {
			if pbr.BaseColorFactor != nil {
				for i, c := range pbr.BaseColorFactor {
					mat.BaseColor[i] = float32(c)
				}
			}
			if l.LoadTextures && pbr.BaseColorTexture != nil {
				if img := decodeTextureImage(doc, pbr.BaseColorTexture.Index, dir); img != nil {
					mat.BaseMap = img
					mat.HasTexture = true
				}
			}
		}
		mats = append(mats, mat)
	}
	return mats
}

func decodeTextureImage(doc *gltf.Document, texIdx int, dir string) image.Image {
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return nil
	}
	src := doc.Textures[texIdx].Source
	if src == nil || *src < 0 || *src >= len(doc.Images) {
		return nil
	}
	data := imageBytes(doc, doc.Images[*src], dir)
	if len(data) == 0 {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return img
}

// imageBytes returns the encoded image from a buffer view or a file next
// to the document.
func imageBytes(doc *gltf.Document, img *gltf.Image, dir string) []byte {
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		end := bv.ByteOffset + bv.ByteLength
		if buf.Data == nil || end > len(buf.Data) {
			return nil
		}
		return buf.Data[bv.ByteOffset:end]
	}
	if img.URI == "" {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(dir, img.URI))
	if err != nil {
		return nil
	}
	return data
}

// readVec3Accessor reads float VEC3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(f[0], f[1], f[2])
	}
	return result, nil
}

// readVec2Accessor reads float VEC2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([][2]float32, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	result := make([][2]float32, len(floats))
	for i, f := range floats {
		result[i] = [2]float32{f[0], f[1]}
	}
	return result, nil
}

func readFloats(doc *gltf.Document, accessorIdx int, typ gltf.AccessorType, n int) ([][3]float32, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != typ {
		return nil, fmt.Errorf("expected %v, got %v", typ, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorView(doc, accessor, n*4)
	if err != nil {
		return nil, err
	}

	result := make([][3]float32, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+n*4 > len(data) {
			return nil, fmt.Errorf("accessor reads past buffer end")
		}
		for j := range n {
			result[i][j] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset+j*4:]))
		}
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorView(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		if offset+size > len(data) {
			return nil, fmt.Errorf("accessor reads past buffer end")
		}
		switch size {
		case 1:
			result[i] = int(data[offset])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[offset:]))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(data[offset:]))
		}
	}
	return result, nil
}

// accessorView resolves the buffer bytes, first element offset, and
// element stride for an accessor.
func accessorView(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	// gltf.Open resolves both embedded GLB chunks and external .bin files
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	return buffer.Data, bufferView.ByteOffset + accessor.ByteOffset, stride, nil
}
