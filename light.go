package lightlab

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SpotLightComponent carries the photometric parameters of a spot light.
// Angle is the half-angle of the cone in radians; Penumbra is the fraction of
// the cone that fades out; a Distance of zero means unlimited range.
type SpotLightComponent struct {
	Color      mgl32.Vec3
	Intensity  float32
	Distance   float32
	Angle      float32
	Penumbra   float32
	Decay      float32
	Target     mgl32.Vec3
	CastShadow bool
}

// AmbientLightComponent is a flat fill term added to every surface.
type AmbientLightComponent struct {
	Color     mgl32.Vec3
	Intensity float32
}

// Direction is the unit vector from the light towards its target.
func (l SpotLightComponent) Direction(position mgl32.Vec3) mgl32.Vec3 {
	d := l.Target.Sub(position)
	if d.Len() < 1e-6 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

// ConeCos returns cos of the outer and inner cone edges used by the shader.
func (l SpotLightComponent) ConeCos() (outer, inner float32) {
	outer = cos32(l.Angle)
	inner = cos32(l.Angle * (1 - l.Penumbra))
	return outer, inner
}
