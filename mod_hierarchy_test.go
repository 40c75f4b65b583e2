package lightlab

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityLocal(pos mgl32.Vec3) *LocalTransformComponent {
	return &LocalTransformComponent{Position: pos, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

func TestTransformHierarchy(t *testing.T) {
	app := newTestApp(HierarchyModule{})
	cmd := app.Commands()

	root := cmd.AddEntity(
		&ModelRootComponent{Name: "model"},
		&TransformComponent{Position: mgl32.Vec3{10, 0, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		identityLocal(mgl32.Vec3{}),
	)
	child := cmd.AddEntity(&Parent{Entity: root}, identityLocal(mgl32.Vec3{0, 5, 0}), &TransformComponent{})
	grandchild := cmd.AddEntity(&Parent{Entity: child}, identityLocal(mgl32.Vec3{0, 0, 2}), &TransformComponent{})
	app.FlushCommands()

	TransformHierarchySystem(cmd)

	assert.Equal(t, mgl32.Vec3{10, 5, 0}, GetComponent[TransformComponent](cmd, child).Position)
	assert.Equal(t, mgl32.Vec3{10, 5, 2}, GetComponent[TransformComponent](cmd, grandchild).Position)

	// Rotate the root 90° about Y and move the child off-axis.
	GetComponent[TransformComponent](cmd, root).Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	GetComponent[LocalTransformComponent](cmd, child).Position = mgl32.Vec3{5, 0, 0}

	app.Step()

	got := GetComponent[TransformComponent](cmd, child).Position
	assert.InDelta(t, 0, got.Sub(mgl32.Vec3{10, 0, -5}).Len(), 1e-4, "got %v", got)
}

func TestTransformHierarchy_ScalePropagates(t *testing.T) {
	app := newTestApp()
	cmd := app.Commands()

	root := cmd.AddEntity(
		&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{2, 2, 2}},
		identityLocal(mgl32.Vec3{}),
	)
	child := cmd.AddEntity(&Parent{Entity: root}, identityLocal(mgl32.Vec3{1, 0, 0}), &TransformComponent{})
	app.FlushCommands()

	TransformHierarchySystem(cmd)

	tr := GetComponent[TransformComponent](cmd, child)
	require.NotNil(t, tr)
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, tr.Position)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, tr.Scale)
}

func TestDescendants(t *testing.T) {
	app := newTestApp()
	cmd := app.Commands()

	root := cmd.AddEntity(&ModelRootComponent{Name: "model"})
	a := cmd.AddEntity(&Parent{Entity: root})
	b := cmd.AddEntity(&Parent{Entity: root})
	leaf := cmd.AddEntity(&Parent{Entity: a})
	other := cmd.AddEntity(&ModelRootComponent{Name: "other"})
	app.FlushCommands()

	got := Descendants(cmd, root)
	require.Len(t, got, 4)
	assert.Equal(t, root, got[0], "root comes first")
	assert.ElementsMatch(t, []EntityId{root, a, b, leaf}, got)
	assert.NotContains(t, got, other)

	cmd.RemoveEntity(root)
	app.FlushCommands()
	assert.Nil(t, Descendants(cmd, root))
}

func TestTransformHierarchy_DeepChainSettlesInOnePass(t *testing.T) {
	app := newTestApp()
	cmd := app.Commands()

	parent := cmd.AddEntity(&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}})
	var last EntityId
	for i := 0; i < 20; i++ {
		last = cmd.AddEntity(&Parent{Entity: parent}, identityLocal(mgl32.Vec3{0, 1, 0}), &TransformComponent{})
		parent = last
	}
	app.FlushCommands()

	TransformHierarchySystem(cmd)
	assert.InDelta(t, 20, GetComponent[TransformComponent](cmd, last).Position.Y(), 1e-4)
}

func TestTransformHierarchy_CycleIsSkipped(t *testing.T) {
	app := newTestApp()
	cmd := app.Commands()

	a := cmd.AddEntity(identityLocal(mgl32.Vec3{1, 0, 0}), &TransformComponent{})
	b := cmd.AddEntity(&Parent{Entity: a}, identityLocal(mgl32.Vec3{1, 0, 0}), &TransformComponent{})
	cmd.AddComponents(a, Parent{Entity: b})
	app.FlushCommands()

	assert.NotPanics(t, func() { TransformHierarchySystem(cmd) })
	assert.Equal(t, mgl32.Vec3{}, GetComponent[TransformComponent](cmd, b).Position)
}
