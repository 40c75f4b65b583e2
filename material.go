package lightlab

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"
)

// MaterialKind selects the shading model.
type MaterialKind int

const (
	MaterialStandard MaterialKind = iota
	MaterialSubsurface
)

func (k MaterialKind) String() string {
	if k == MaterialSubsurface {
		return "subsurface"
	}
	return "standard"
}

// Material is shared by pointer; its identity is what the effect toggle restores.
type Material struct {
	Name         string
	Kind         MaterialKind
	Color        mgl32.Vec3 // linear RGB
	Roughness    float32
	Metalness    float32
	Reflectivity float32
	Map          AssetId
	Subsurface   *SubsurfaceUniforms

	// Version increases whenever the material needs to be re-uploaded.
	Version  uint64
	disposed bool
}

func NewStandardMaterial(hex uint32, roughness, metalness float32) *Material {
	return &Material{
		Kind:         MaterialStandard,
		Color:        HexToLinear(hex),
		Roughness:    roughness,
		Metalness:    metalness,
		Reflectivity: 0.5,
	}
}

// MarkNeedsUpdate flags the material for re-upload on the next frame.
func (m *Material) MarkNeedsUpdate() {
	m.Version++
}

// Dispose releases the material. Disposed materials are skipped by the renderer.
func (m *Material) Dispose() {
	m.disposed = true
}

func (m *Material) Disposed() bool { return m.disposed }

// MeshComponent makes an entity drawable.
type MeshComponent struct {
	Mesh          AssetId
	Material      *Material
	CastShadow    bool
	ReceiveShadow bool
}

// SubsurfaceUniforms are the parameters of the translucency shading model.
type SubsurfaceUniforms struct {
	Diffuse        mgl32.Vec3
	Shininess      float32
	ThicknessColor mgl32.Vec3
	Distortion     float32
	Ambient        float32
	Attenuation    float32
	Power          float32
	Scale          float32
	Map            AssetId
	ThicknessMap   AssetId
}

// DefaultSubsurfaceUniforms returns a fresh copy of the stock parameters.
func DefaultSubsurfaceUniforms() SubsurfaceUniforms {
	return SubsurfaceUniforms{
		Diffuse:        mgl32.Vec3{1.0, 0.2, 0.2},
		Shininess:      500,
		ThicknessColor: mgl32.Vec3{0.5, 0.3, 0.0},
		Distortion:     0.1,
		Ambient:        0.4,
		Attenuation:    0.8,
		Power:          2.0,
		Scale:          16.0,
	}
}

// CloneSubsurfaceUniforms deep-copies src so callers never share defaults.
func CloneSubsurfaceUniforms(src SubsurfaceUniforms) (*SubsurfaceUniforms, error) {
	dst := &SubsurfaceUniforms{}
	if err := copier.CopyWithOption(dst, &src, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return dst, nil
}

// SetUniform writes a uniform by its shader name. Unknown names and mismatched
// value types are ignored; the result reports whether anything was written.
func (u *SubsurfaceUniforms) SetUniform(name string, value any) bool {
	switch name {
	case "diffuse":
		return setVec3(&u.Diffuse, value)
	case "thicknessColor":
		return setVec3(&u.ThicknessColor, value)
	case "shininess":
		return setScalar(&u.Shininess, value)
	case "thicknessDistortion", "distortion":
		return setScalar(&u.Distortion, value)
	case "thicknessAmbient", "ambient":
		return setScalar(&u.Ambient, value)
	case "thicknessAttenuation", "attenuation":
		return setScalar(&u.Attenuation, value)
	case "thicknessPower", "power":
		return setScalar(&u.Power, value)
	case "thicknessScale", "scale":
		return setScalar(&u.Scale, value)
	case "map":
		return setAsset(&u.Map, value)
	case "thicknessMap":
		return setAsset(&u.ThicknessMap, value)
	}
	return false
}

func setScalar(dst *float32, v any) bool {
	f, ok := toFloat(v)
	if ok {
		*dst = f
	}
	return ok
}

func setVec3(dst *mgl32.Vec3, v any) bool {
	switch c := v.(type) {
	case mgl32.Vec3:
		*dst = c
		return true
	case uint32:
		*dst = HexToLinear(c)
		return true
	}
	return false
}

func setAsset(dst *AssetId, v any) bool {
	id, ok := v.(AssetId)
	if ok {
		*dst = id
	}
	return ok
}
