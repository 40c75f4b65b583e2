package lightlab

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// GizmoLine is one wireframe segment in world space.
type GizmoLine struct {
	From  mgl32.Vec3
	To    mgl32.Vec3
	Color [4]float32
}

var (
	spotHelperColor    = [4]float32{1, 1, 0.6, 1}
	frustumHelperColor = [4]float32{1, 0.5, 0.2, 1}
)

const (
	helperConeSegments = 32
	helperConeRays     = 8
	helperMaxLength    = 1000
)

// RigHelperComponent holds the debug visuals of a light rig.
// Lines are rebuilt from the light every frame.
type RigHelperComponent struct {
	ShowLight   bool
	ShowFrustum bool
	Cone        []GizmoLine
	Frustum     []GizmoLine
}

// Refresh rebuilds both helpers from the current light state.
func (h *RigHelperComponent) Refresh(position mgl32.Vec3, light SpotLightComponent, shadow *ShadowComponent) {
	h.Cone = SpotConeLines(h.Cone[:0], position, light, spotHelperColor)
	h.Frustum = h.Frustum[:0]
	if shadow != nil {
		view, proj := ShadowCamera(position, light, *shadow)
		h.Frustum = FrustumLines(h.Frustum, proj.Mul4(view), frustumHelperColor)
	}
}

// Visible returns the helper lines that should be drawn.
func (h *RigHelperComponent) Visible() []GizmoLine {
	var out []GizmoLine
	if h.ShowLight {
		out = append(out, h.Cone...)
	}
	if h.ShowFrustum {
		out = append(out, h.Frustum...)
	}
	return out
}

// SpotConeLines draws the light cone: a rim circle at the light's reach plus rays from the apex.
func SpotConeLines(dst []GizmoLine, apex mgl32.Vec3, light SpotLightComponent, color [4]float32) []GizmoLine {
	length := light.Distance
	if length <= 0 {
		length = helperMaxLength
	}
	radius := length * math32.Tan(light.Angle)

	dir := light.Direction(apex)
	up := mgl32.Vec3{0, 1, 0}
	if abs32(dir.Dot(up)) > 0.999 {
		up = mgl32.Vec3{1, 0, 0}
	}
	right := dir.Cross(up).Normalize()
	up = right.Cross(dir).Normalize()
	center := apex.Add(dir.Mul(length))

	rim := func(i int) mgl32.Vec3 {
		a := twoPi * float32(i) / helperConeSegments
		return center.Add(right.Mul(radius * math32.Cos(a))).Add(up.Mul(radius * math32.Sin(a)))
	}

	for i := 0; i < helperConeSegments; i++ {
		dst = append(dst, GizmoLine{From: rim(i), To: rim(i + 1), Color: color})
	}
	for i := 0; i < helperConeRays; i++ {
		dst = append(dst, GizmoLine{From: apex, To: rim(i * helperConeSegments / helperConeRays), Color: color})
	}
	return dst
}

// FrustumLines draws the 12 edges of the frustum described by viewProj.
func FrustumLines(dst []GizmoLine, viewProj mgl32.Mat4, color [4]float32) []GizmoLine {
	inv := viewProj.Inv()
	var corners [8]mgl32.Vec3
	i := 0
	for _, z := range []float32{-1, 1} {
		for _, y := range []float32{-1, 1} {
			for _, x := range []float32{-1, 1} {
				p := inv.Mul4x1(mgl32.Vec4{x, y, z, 1})
				corners[i] = p.Vec3().Mul(1 / p.W())
				i++
			}
		}
	}

	edges := [12][2]int{
		{0, 1}, {2, 3}, {0, 2}, {1, 3}, // near
		{4, 5}, {6, 7}, {4, 6}, {5, 7}, // far
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // sides
	}
	for _, e := range edges {
		dst = append(dst, GizmoLine{From: corners[e[0]], To: corners[e[1]], Color: color})
	}
	return dst
}
