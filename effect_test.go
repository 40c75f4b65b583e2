package lightlab

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type effectFixture struct {
	app    *App
	cmd    *Commands
	root   EntityId
	meshes []EntityId
	mats   []*Material
}

func newEffectFixture(t *testing.T) effectFixture {
	t.Helper()
	app := newTestApp()
	cmd := app.Commands()

	f := effectFixture{app: app, cmd: cmd}
	f.root = cmd.AddEntity(&ModelRootComponent{Name: "model"}, &TransformComponent{Scale: mgl32.Vec3{1, 1, 1}})
	group := cmd.AddEntity(&Parent{Entity: f.root}, identityLocal(mgl32.Vec3{}), &TransformComponent{})
	for i, parent := range []EntityId{f.root, group} {
		mat := NewStandardMaterial(0x808080, 0.5, 0)
		mat.Name = []string{"skin", "eyes"}[i]
		eid := cmd.AddEntity(&Parent{Entity: parent}, identityLocal(mgl32.Vec3{}), &TransformComponent{}, &MeshComponent{Material: mat})
		f.meshes = append(f.meshes, eid)
		f.mats = append(f.mats, mat)
	}
	app.FlushCommands()
	require.Len(t, Descendants(cmd, f.root), 4)
	return f
}

func (f effectFixture) material(i int) *Material {
	return GetComponent[MeshComponent](f.cmd, f.meshes[i]).Material
}

func TestEffectToggleEnableDisable(t *testing.T) {
	f := newEffectFixture(t)
	override := NewStandardMaterial(0xff0000, 0.2, 0)
	toggle := NewEffectToggle(override)

	version := override.Version
	assert.Equal(t, 2, toggle.Enable(f.cmd, f.root))
	assert.Same(t, override, f.material(0))
	assert.Same(t, override, f.material(1))
	assert.Equal(t, 2, toggle.SnapshotCount())
	assert.Greater(t, override.Version, version)

	assert.Equal(t, 2, toggle.Disable(f.cmd, f.root))
	assert.Same(t, f.mats[0], f.material(0))
	assert.Same(t, f.mats[1], f.material(1))
	assert.Zero(t, toggle.SnapshotCount())
}

func TestEffectToggleEnableTwiceKeepsOriginals(t *testing.T) {
	f := newEffectFixture(t)
	toggle := NewEffectToggle(NewStandardMaterial(0xff0000, 0.2, 0))

	toggle.Enable(f.cmd, f.root)
	assert.Zero(t, toggle.Enable(f.cmd, f.root))

	snap, ok := toggle.Snapshot(f.meshes[0])
	require.True(t, ok)
	assert.Same(t, f.mats[0], snap)

	toggle.Disable(f.cmd, f.root)
	assert.Same(t, f.mats[0], f.material(0))
}

func TestEffectToggleDisableWithoutEnable(t *testing.T) {
	f := newEffectFixture(t)
	toggle := NewEffectToggle(NewStandardMaterial(0xff0000, 0.2, 0))

	assert.Zero(t, toggle.Disable(f.cmd, f.root))
	assert.Same(t, f.mats[0], f.material(0))
}

func TestEffectToggleMeshAddedWhileEnabled(t *testing.T) {
	f := newEffectFixture(t)
	override := NewStandardMaterial(0xff0000, 0.2, 0)
	toggle := NewEffectToggle(override)
	toggle.Enable(f.cmd, f.root)

	late := NewStandardMaterial(0x00ff00, 0.5, 0)
	eid := f.cmd.AddEntity(&Parent{Entity: f.root}, identityLocal(mgl32.Vec3{}), &TransformComponent{}, &MeshComponent{Material: late})
	f.app.FlushCommands()

	assert.Equal(t, 1, toggle.Enable(f.cmd, f.root))
	toggle.Disable(f.cmd, f.root)
	assert.Same(t, late, GetComponent[MeshComponent](f.cmd, eid).Material)
}

func TestEffectToggleReset(t *testing.T) {
	f := newEffectFixture(t)
	override := NewStandardMaterial(0xff0000, 0.2, 0)
	toggle := NewEffectToggle(override)
	toggle.Enable(f.cmd, f.root)

	toggle.Reset()
	assert.Zero(t, toggle.SnapshotCount())
	assert.Zero(t, toggle.Disable(f.cmd, f.root))
	assert.Same(t, override, f.material(0))
}

func TestEffectToggleDeadRoot(t *testing.T) {
	f := newEffectFixture(t)
	toggle := NewEffectToggle(NewStandardMaterial(0xff0000, 0.2, 0))

	f.cmd.RemoveEntity(f.root)
	f.app.FlushCommands()
	assert.Zero(t, toggle.Enable(f.cmd, f.root))
}
