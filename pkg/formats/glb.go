package formats

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// BuildGLTF converts the mesh into a glTF document with a single primitive.
// Lightmap coordinates go to TEXCOORD_1, normalised by the lightmap size.
// When lightmap is not nil it is embedded as PNG and used as the base colour
// texture through TEXCOORD_1.
func BuildGLTF(mesh *Mesh, lightmap image.Image) (*gltf.Document, error) {
	size := [2]float32{1, 1}
	if lightmap != nil {
		b := lightmap.Bounds()
		size = [2]float32{float32(b.Dx()), float32(b.Dy())}
	}

	n := mesh.VertexCount()
	positions := make([][3]float32, 0, n)
	normals := make([][3]float32, 0, n)
	uvs := make([][2]float32, 0, n)
	var indices []uint32

	for i, f := range mesh.Faces {
		if len(f.Vertices) < 3 {
			return nil, fmt.Errorf("%w: face %d has %d vertices", ErrInvalidMesh, i, len(f.Vertices))
		}
		normal := faceNormal(f)
		base := uint32(len(positions))
		for _, v := range f.Vertices {
			positions = append(positions, v.Position)
			normals = append(normals, normal)
			// Sample luxel centres.
			uvs = append(uvs, [2]float32{(float32(v.U) + 0.5) / size[0], (float32(v.V) + 0.5) / size[1]})
		}
		for _, idx := range f.Indices {
			if idx < 0 || int(idx) >= len(f.Vertices) {
				return nil, fmt.Errorf("%w: face %d index %d out of range", ErrInvalidMesh, i, idx)
			}
			indices = append(indices, base+uint32(idx))
		}
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrInvalidMesh)
	}

	doc := gltf.NewDocument()
	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION:   modeler.WritePosition(doc, positions),
			gltf.NORMAL:     modeler.WriteNormal(doc, normals),
			gltf.TEXCOORD_1: modeler.WriteTextureCoord(doc, uvs),
		},
		Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
	}

	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float64{1, 1, 1, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	if lightmap != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, lightmap); err != nil {
			return nil, fmt.Errorf("encoding lightmap: %w", err)
		}
		img, err := modeler.WriteImage(doc, "lightmap", "image/png", &buf)
		if err != nil {
			return nil, fmt.Errorf("embedding lightmap: %w", err)
		}
		doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(img)})
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: len(doc.Textures) - 1, TexCoord: 1}
	}
	doc.Materials = []*gltf.Material{{Name: "lightmap", PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}}
	prim.Material = gltf.Index(0)

	doc.Meshes = []*gltf.Mesh{{Name: "map", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "map", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

// WriteGLB writes the mesh as binary glTF.
func WriteGLB(w io.Writer, mesh *Mesh, lightmap image.Image) error {
	doc, err := BuildGLTF(mesh, lightmap)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding glb: %w", err)
	}
	return nil
}

// WriteGLBFile writes the mesh as binary glTF to path.
func WriteGLBFile(path string, mesh *Mesh, lightmap image.Image) error {
	doc, err := BuildGLTF(mesh, lightmap)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("saving glb: %w", err)
	}
	return nil
}

// faceNormal returns the unit normal of the first three vertices.
func faceNormal(f MeshFace) [3]float32 {
	a := mgl32.Vec3(f.Vertices[0].Position)
	b := mgl32.Vec3(f.Vertices[1].Position)
	c := mgl32.Vec3(f.Vertices[2].Position)
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() == 0 {
		return [3]float32{0, 0, 1}
	}
	return n.Normalize()
}
