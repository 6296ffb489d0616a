package transform

import "github.com/go-gl/mathgl/mgl32"

// Position is the replicated location of an entity.
type Position struct {
	X, Y, Z float32
}

// Vec3 returns p as a vector.
func (p Position) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{p.X, p.Y, p.Z}
}

// Orientation is the replicated rotation of an entity.
type Orientation struct {
	W, X, Y, Z float32
}

// OrientationOf copies the rotation of t.
func OrientationOf(t Transform) Orientation {
	return Orientation{W: t.Orientation.W, X: t.Orientation.V[0], Y: t.Orientation.V[1], Z: t.Orientation.V[2]}
}

// Quat returns o as a quaternion.
func (o Orientation) Quat() mgl32.Quat {
	return mgl32.Quat{W: o.W, V: mgl32.Vec3{o.X, o.Y, o.Z}}
}
