// Package transform holds the spatial components of an entity.
package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/voxelvolution/ecs"
)

var (
	Right   = mgl32.Vec3{1, 0, 0}
	Up      = mgl32.Vec3{0, 1, 0}
	Forward = mgl32.Vec3{0, 0, -1}
)

// Transform places an entity in the world. Rotation keeps the accumulated euler angles in
// radians; Orientation is the authoritative rotation.
//
// Mutators return a new Transform. Submit the result through the Transform update system to
// make it visible; subscribers of TransformChangedEvent are notified when it is committed.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Vec3
	Orientation mgl32.Quat
	Scale       mgl32.Vec3
}

// TransformChangedEvent is emitted when a Transform commit replaces or removes a transform.
type TransformChangedEvent = ecs.ComponentChanged[Transform]

// New returns the identity transform.
func New() Transform {
	return Transform{
		Orientation: mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

// At returns the identity transform moved to translation.
func At(translation mgl32.Vec3) Transform {
	t := New()
	t.Translation = translation
	return t
}

func (t Transform) Translate(amount mgl32.Vec3) Transform {
	t.Translation = t.Translation.Add(amount)
	return t
}

// Rotate adds euler angles, in radians, and applies them in world space.
func (t Transform) Rotate(amount mgl32.Vec3) Transform {
	t.Rotation = t.Rotation.Add(amount)
	change := eulerToQuat(t.Rotation)
	t.Orientation = change.Mul(t.Orientation).Normalize()
	return t
}

// OrientedTranslate moves along the transform's own axes.
func (t Transform) OrientedTranslate(amount mgl32.Vec3) Transform {
	t.Translation = t.Translation.Add(t.Orientation.Rotate(amount))
	return t
}

// OrientedRotate rotates around the transform's own right and up axes and the world z axis.
func (t Transform) OrientedRotate(amount mgl32.Vec3) Transform {
	t.Rotation = t.Rotation.Add(amount)

	qX := mgl32.QuatRotate(amount.X(), t.Orientation.Rotate(Right))
	qY := mgl32.QuatRotate(amount.Y(), t.Orientation.Rotate(Up))
	qZ := mgl32.QuatRotate(amount.Z(), t.Orientation.Rotate(mgl32.Vec3{0, 0, 1}))
	change := qX.Mul(qY).Mul(qZ)

	t.Orientation = change.Mul(t.Orientation).Normalize()
	return t
}

// ScaleBy multiplies the scale component wise.
func (t Transform) ScaleBy(amount mgl32.Vec3) Transform {
	t.Scale = mgl32.Vec3{t.Scale[0] * amount[0], t.Scale[1] * amount[1], t.Scale[2] * amount[2]}
	return t
}

func (t Transform) SetTranslation(translation mgl32.Vec3) Transform {
	t.Translation = translation
	return t
}

// SetRotation replaces the orientation with the given euler angles.
func (t Transform) SetRotation(rotation mgl32.Vec3) Transform {
	return t.SetOrientation(eulerToQuat(rotation).Normalize())
}

// SetOrientation replaces the orientation and recomputes the euler angles from it.
func (t Transform) SetOrientation(orientation mgl32.Quat) Transform {
	t.Orientation = orientation
	t.Rotation = quatToEuler(orientation)
	return t
}

func (t Transform) SetScale(scale mgl32.Vec3) Transform {
	t.Scale = scale
	return t
}

// ModelMatrix returns translate * rotate * scale.
func (t Transform) ModelMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.Orientation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// RigidMatrix returns translate * rotate, ignoring scale.
func (t Transform) RigidMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.Orientation.Mat4())
}

// Position returns the translation as a Position component.
func (t Transform) Position() Position {
	return Position{X: t.Translation.X(), Y: t.Translation.Y(), Z: t.Translation.Z()}
}

// eulerToQuat converts pitch, yaw, roll (x, y, z) to a quaternion, rotating about x first.
func eulerToQuat(euler mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(euler.Z(), euler.Y(), euler.X(), mgl32.ZYX)
}

func quatToEuler(q mgl32.Quat) mgl32.Vec3 {
	w, x, y, z := float64(q.W), float64(q.V[0]), float64(q.V[1]), float64(q.V[2])
	pitch := math.Atan2(2*(y*z+w*x), w*w-x*x-y*y+z*z)
	yaw := math.Asin(clamp(-2*(x*z-w*y), -1, 1))
	roll := math.Atan2(2*(x*y+w*z), w*w+x*x-y*y-z*z)
	return mgl32.Vec3{float32(pitch), float32(yaw), float32(roll)}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
