package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/brushlight/pkg/mapobject"
)

// Mesh stream errors.
var (
	ErrTruncatedMesh = errors.New("truncated mesh data")
	ErrInvalidMesh   = errors.New("invalid mesh data")
)

// maxMeshCount bounds the vertex and index counts of a single face.
const maxMeshCount = 1 << 16

// MeshVertex is a face vertex with its lightmap coordinate.
type MeshVertex struct {
	Position [3]float32
	U, V     int16
}

// MeshFace is one fan-triangulated face.
type MeshFace struct {
	Vertices []MeshVertex
	Indices  []int16
}

// Mesh is the baked geometry of a map, one entry per face.
//
// The stream layout of every face, little-endian:
//
//	int32   vertex count
//	vertex  count times: float32 x, y, z; int16 u, v
//	int32   index count
//	int16   index count times
type Mesh struct {
	Faces []MeshFace
}

// VertexCount returns the number of vertices of all faces.
func (m *Mesh) VertexCount() int {
	n := 0
	for _, f := range m.Faces {
		n += len(f.Vertices)
	}
	return n
}

// MeshFromFaces converts faces into a mesh. Faces without lightmap UVs get
// zero coordinates.
func MeshFromFaces(faces []*mapobject.Face) *Mesh {
	mesh := &Mesh{Faces: make([]MeshFace, 0, len(faces))}
	for _, f := range faces {
		verts := f.Vertices()
		mf := MeshFace{Vertices: make([]MeshVertex, len(verts))}
		for i, p := range verts {
			mv := MeshVertex{Position: [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}}
			if i < len(f.LightmapUV) {
				mv.U, mv.V = f.LightmapUV[i].U, f.LightmapUV[i].V
			}
			mf.Vertices[i] = mv
		}
		for _, idx := range f.TriangleIndices() {
			mf.Indices = append(mf.Indices, int16(idx))
		}
		mesh.Faces = append(mesh.Faces, mf)
	}
	return mesh
}

// WriteMeshStream writes the mesh in stream layout.
func WriteMeshStream(w io.Writer, mesh *Mesh) error {
	bw := bufio.NewWriter(w)
	for i, f := range mesh.Faces {
		if len(f.Vertices) > maxMeshCount || len(f.Indices) > maxMeshCount {
			return fmt.Errorf("%w: face %d has %d vertices and %d indices", ErrInvalidMesh, i, len(f.Vertices), len(f.Indices))
		}
		if err := binary.Write(bw, binary.LittleEndian, int32(len(f.Vertices))); err != nil {
			return fmt.Errorf("writing face %d: %w", i, err)
		}
		for _, v := range f.Vertices {
			if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
				return fmt.Errorf("writing face %d: %w", i, err)
			}
		}
		if err := binary.Write(bw, binary.LittleEndian, int32(len(f.Indices))); err != nil {
			return fmt.Errorf("writing face %d: %w", i, err)
		}
		if err := binary.Write(bw, binary.LittleEndian, f.Indices); err != nil {
			return fmt.Errorf("writing face %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// ReadMeshStream reads faces until the end of r. The stream must end on a
// face boundary.
func ReadMeshStream(r io.Reader) (*Mesh, error) {
	br := bufio.NewReader(r)
	mesh := &Mesh{}
	for i := 0; ; i++ {
		var count int32
		if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
			if errors.Is(err, io.EOF) {
				return mesh, nil
			}
			return nil, fmt.Errorf("%w: face %d vertex count", ErrTruncatedMesh, i)
		}
		if count < 0 || count > maxMeshCount {
			return nil, fmt.Errorf("%w: face %d vertex count %d", ErrInvalidMesh, i, count)
		}
		f := MeshFace{Vertices: make([]MeshVertex, count)}
		if err := binary.Read(br, binary.LittleEndian, f.Vertices); err != nil {
			return nil, fmt.Errorf("%w: face %d vertices", ErrTruncatedMesh, i)
		}

		if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("%w: face %d index count", ErrTruncatedMesh, i)
		}
		if count < 0 || count > maxMeshCount {
			return nil, fmt.Errorf("%w: face %d index count %d", ErrInvalidMesh, i, count)
		}
		f.Indices = make([]int16, count)
		if err := binary.Read(br, binary.LittleEndian, f.Indices); err != nil {
			return nil, fmt.Errorf("%w: face %d indices", ErrTruncatedMesh, i)
		}
		for _, idx := range f.Indices {
			if idx < 0 || int(idx) >= len(f.Vertices) {
				return nil, fmt.Errorf("%w: face %d index %d out of range", ErrInvalidMesh, i, idx)
			}
		}
		mesh.Faces = append(mesh.Faces, f)
	}
}

// ParseMesh parses a mesh stream from raw bytes.
func ParseMesh(data []byte) (*Mesh, error) {
	return ReadMeshStream(bytes.NewReader(data))
}

// ParseMeshFile parses a mesh stream from disk.
func ParseMeshFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh file: %w", err)
	}
	return ParseMesh(data)
}

// WriteMeshFile writes the mesh stream to path.
func WriteMeshFile(path string, mesh *Mesh) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating mesh file: %w", err)
	}
	if err := WriteMeshStream(file, mesh); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
