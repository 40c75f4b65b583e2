package lightlab

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubsurfaceSetUniform(t *testing.T) {
	u := DefaultSubsurfaceUniforms()

	assert.True(t, u.SetUniform("thicknessPower", 3.0))
	assert.True(t, u.SetUniform("scale", float32(8)))
	assert.True(t, u.SetUniform("diffuse", uint32(0x00ff00)))
	assert.True(t, u.SetUniform("thicknessColor", mgl32.Vec3{0.1, 0.2, 0.3}))
	assert.True(t, u.SetUniform("map", AssetId("tex")))
	assert.Equal(t, float32(3), u.Power)
	assert.Equal(t, float32(8), u.Scale)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, u.Diffuse)
	assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, u.ThicknessColor)
	assert.Equal(t, AssetId("tex"), u.Map)

	assert.False(t, u.SetUniform("glow", 1.0))
	assert.False(t, u.SetUniform("shininess", "bright"))
	assert.False(t, u.SetUniform("thicknessMap", "not an id"))
	assert.Equal(t, float32(500), u.Shininess)
}

func TestCloneSubsurfaceUniformsIsIndependent(t *testing.T) {
	defaults := DefaultSubsurfaceUniforms()
	a, err := CloneSubsurfaceUniforms(defaults)
	require.NoError(t, err)
	b, err := CloneSubsurfaceUniforms(defaults)
	require.NoError(t, err)

	a.SetUniform("power", 9.0)
	assert.Equal(t, float32(2), b.Power)
	assert.Equal(t, float32(2), DefaultSubsurfaceUniforms().Power)
	assert.Equal(t, defaults, *b)
}

func TestSubsurfaceControllerSetUniform(t *testing.T) {
	ctl, err := NewSubsurfaceController(DefaultSubsurfaceUniforms())
	require.NoError(t, err)
	assert.Equal(t, MaterialSubsurface, ctl.Material.Kind)
	assert.Same(t, ctl.Uniforms, ctl.Material.Subsurface)

	version := ctl.Material.Version
	assert.True(t, ctl.SetUniform("diffuse", uint32(0xffffff)))
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, ctl.Material.Color)
	assert.Greater(t, ctl.Material.Version, version)

	version = ctl.Material.Version
	assert.False(t, ctl.SetUniform("unknown", 1.0))
	assert.Equal(t, version, ctl.Material.Version)
}

func TestMaterialDispose(t *testing.T) {
	m := NewStandardMaterial(0xffffff, 0.5, 0.1)
	assert.Equal(t, "standard", m.Kind.String())
	assert.False(t, m.Disposed())
	m.Dispose()
	assert.True(t, m.Disposed())
}

func TestMarkAllMaterialsNeedUpdate(t *testing.T) {
	app := newTestApp()
	cmd := app.Commands()
	shared := NewStandardMaterial(0xffffff, 0.5, 0)
	cmd.AddEntity(&MeshComponent{Material: shared})
	cmd.AddEntity(&MeshComponent{Material: shared})
	cmd.AddEntity(&MeshComponent{})
	app.FlushCommands()

	MarkAllMaterialsNeedUpdate(cmd)
	assert.Equal(t, uint64(1), shared.Version)
}
