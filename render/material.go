package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/voxelvolution/ecs"
)

// FillMode selects how polygons of a material are rasterized.
type FillMode int

const (
	Fill FillMode = iota
	Line
)

func (m FillMode) String() string {
	if m == Line {
		return "line"
	}
	return "fill"
}

// Material names a shader and its raster state. Materials are shared through the registry's
// Multiton[string, *Material].
type Material struct {
	Name     string
	Shader   string
	fillMode FillMode
}

// NewMaterial creates a filled material.
func NewMaterial(name, shader string) *Material {
	return &Material{Name: name, Shader: shader, fillMode: Fill}
}

// FillMode returns the material's fill mode.
func (m *Material) FillMode() FillMode {
	return m.fillMode
}

// SetFillMode sets the fill mode. Unknown modes fall back to Fill.
func (m *Material) SetFillMode(mode FillMode) {
	switch mode {
	case Fill, Line:
		m.fillMode = mode
	default:
		m.fillMode = Fill
	}
}

// Materials returns the registry's material multiton.
func Materials(r *ecs.Registry) *ecs.Multiton[string, *Material] {
	return ecs.MultitonOf[string, *Material](r)
}

// Vertex is one corner of a mesh.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// VertexBuffer is mesh data ready to be uploaded by a Drawer. Buffers are shared through the
// registry's Multiton[string, *VertexBuffer].
type VertexBuffer struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// IndexCount returns the number of indices to draw.
func (vb *VertexBuffer) IndexCount() int {
	return len(vb.Indices)
}

// VertexBuffers returns the registry's vertex buffer multiton.
func VertexBuffers(r *ecs.Registry) *ecs.Multiton[string, *VertexBuffer] {
	return ecs.MultitonOf[string, *VertexBuffer](r)
}
