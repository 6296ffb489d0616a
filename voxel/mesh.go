package voxel

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/voxelvolution/render"
)

// Position returns the world space centre of the voxel at a coordinate. Columns run along +X,
// rows along +Y and slices along -Z, away from a camera looking down its forward axis.
func Position(row, column, slice int16) mgl32.Vec3 {
	return mgl32.Vec3{float32(column), float32(row), -float32(slice)}
}

// Normal returns the outward unit normal of f in world space.
func (f Face) Normal() mgl32.Vec3 {
	row, column, slice := f.Offset()
	return Position(row, column, slice)
}

// Mesh builds a vertex buffer with one quad, four vertices and six indices, per exposed face.
// UV holds the voxel color's red and green channels for drawers without a color attribute.
func (v *VoxelVolume) Mesh(name string) *render.VertexBuffer {
	faces := v.ExposedFaces()
	buffer := &render.VertexBuffer{
		Name:     name,
		Vertices: make([]render.Vertex, 0, 4*len(faces)),
		Indices:  make([]uint32, 0, 6*len(faces)),
	}

	for _, f := range faces {
		normal := f.Face.Normal()
		center := Position(f.Row, f.Column, f.Slice).Add(normal.Mul(0.5))
		u, w := tangents(normal)

		color := v.Get(f.Row, f.Column, f.Slice).Color
		uv := mgl32.Vec2{color[0], color[1]}

		base := uint32(len(buffer.Vertices))
		for _, corner := range [4][2]float32{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}} {
			buffer.Vertices = append(buffer.Vertices, render.Vertex{
				Position: center.Add(u.Mul(corner[0])).Add(w.Mul(corner[1])),
				Normal:   normal,
				UV:       uv,
			})
		}
		buffer.Indices = append(buffer.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return buffer
}

// tangents returns two unit axes spanning the plane orthogonal to normal, ordered so that
// u x w points along normal.
func tangents(normal mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	axis := mgl32.Vec3{1, 0, 0}
	if normal.X() != 0 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	u := axis.Cross(normal).Normalize()
	w := normal.Cross(u)
	return u, w
}
