package lightlab

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowMapSizes are the resolutions offered by the panel.
var ShadowMapSizes = []int{256, 512, 1024, 2048, 4096}

const (
	DefaultShadowMapSize    = 1024
	DefaultShadowCameraNear = float32(1)
	DefaultShadowCameraFar  = float32(60)
)

// ShadowMap is a renderer-owned depth target. Dispose releases the GPU memory.
type ShadowMap interface {
	Size() int
	Dispose()
}

// ShadowComponent configures the shadow cast by the light on the same entity.
// Map is allocated lazily by the renderer whenever it is nil.
type ShadowComponent struct {
	MapSize    int
	CameraNear float32
	CameraFar  float32
	Focus      float32
	Bias       float32
	Map        ShadowMap
}

func NewShadowComponent() ShadowComponent {
	return ShadowComponent{
		MapSize:    DefaultShadowMapSize,
		CameraNear: DefaultShadowCameraNear,
		CameraFar:  DefaultShadowCameraFar,
		Focus:      1,
		Bias:       0.0005,
	}
}

// SetMapSize drops the stale map before recording the new resolution.
func (s *ShadowComponent) SetMapSize(size int) {
	if s.Map != nil {
		s.Map.Dispose()
		s.Map = nil
	}
	s.MapSize = size
}

// ReleaseMap disposes the current map without changing the size.
func (s *ShadowComponent) ReleaseMap() {
	if s.Map != nil {
		s.Map.Dispose()
		s.Map = nil
	}
}

// ShadowCamera returns the view and projection used to render the light's depth map.
// The frustum fov follows the cone angle scaled by Focus; the far plane is the
// light distance when it is set.
func ShadowCamera(position mgl32.Vec3, light SpotLightComponent, shadow ShadowComponent) (view, proj mgl32.Mat4) {
	fov := 2 * light.Angle * shadow.Focus
	if fov < 0.01 {
		fov = 0.01
	}
	far := shadow.CameraFar
	if light.Distance > 0 {
		far = light.Distance
	}
	near := shadow.CameraNear
	if near >= far {
		near = far * 0.5
	}

	up := mgl32.Vec3{0, 1, 0}
	dir := light.Direction(position)
	if abs32(dir.Dot(up)) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view = mgl32.LookAtV(position, position.Add(dir), up)
	proj = mgl32.Perspective(fov, 1, near, far)
	return view, proj
}
