package lightlab

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent is the world-space pose of an entity.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// LocalTransformComponent is the pose relative to Parent.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

type Parent struct {
	Entity EntityId
}

func NewTransform(position mgl32.Vec3) TransformComponent {
	return TransformComponent{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Compose places local in the space of t: scale, then rotate, then translate.
func (t TransformComponent) Compose(local LocalTransformComponent) TransformComponent {
	scaled := mgl32.Vec3{
		local.Position.X() * t.Scale.X(),
		local.Position.Y() * t.Scale.Y(),
		local.Position.Z() * t.Scale.Z(),
	}
	return TransformComponent{
		Position: t.Position.Add(t.Rotation.Rotate(scaled)),
		Rotation: t.Rotation.Mul(local.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			t.Scale.X() * local.Scale.X(),
			t.Scale.Y() * local.Scale.Y(),
			t.Scale.Z() * local.Scale.Z(),
		},
	}
}

func (t TransformComponent) ObjectToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

// NormalMatrix is the inverse-transpose of the upper 3x3, padded to a Mat4 for std140 layouts.
func (t TransformComponent) NormalMatrix() mgl32.Mat4 {
	m := t.ObjectToWorld().Mat3().Inv().Transpose()
	return m.Mat4()
}
