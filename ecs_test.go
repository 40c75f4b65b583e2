package lightlab

import (
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcs_MakeEcs(t *testing.T) {
	ecs := MakeEcs()

	assert.Empty(t, ecs.archetypes)
	assert.Empty(t, ecs.entityIndex)
	assert.Equal(t, EntityId(0), ecs.nextEntity)
	assert.Empty(t, ecs.registry.types)
}

func TestEcs_AddEntity(t *testing.T) {
	ecs := MakeEcs()

	bare := ecs.addEntity()
	light := ecs.addEntity(SpotLightComponent{Intensity: 100})

	require.Contains(t, ecs.entityIndex, bare)
	require.Contains(t, ecs.entityIndex, light)
	assert.NotEqual(t, ecs.entityIndex[bare], ecs.entityIndex[light], "different component sets share an archetype")
	assert.Equal(t, 2, ecs.entityCount())
}

func TestEcs_AddComponents(t *testing.T) {
	ecs := MakeEcs()

	eid := ecs.addEntity(LightRigComponent{Name: "rig"})
	ecs.addComponents(eid, SpotLightComponent{Intensity: 50}, OrbitComponent{Radius: 5})
	ecs.addComponents(eid, &ShadowComponent{MapSize: 1024})

	arch, _, ok := ecs.locate(eid)
	require.True(t, ok)
	assert.Len(t, arch.columns, 4)
	assert.True(t, ecs.hasComponentType(eid, reflect.TypeOf(ShadowComponent{})))
	assert.False(t, ecs.hasComponentType(eid, reflect.TypeOf(MeshComponent{})))
}

func TestEcs_AddComponentsReplacesExisting(t *testing.T) {
	app := newTestApp()
	cmd := app.Commands()

	eid := cmd.AddEntity(&TransformComponent{Position: mgl32.Vec3{1, 2, 3}})
	app.FlushCommands()
	cmd.AddComponents(eid, TransformComponent{Position: mgl32.Vec3{4, 5, 6}})
	app.FlushCommands()

	tr := GetComponent[TransformComponent](cmd, eid)
	require.NotNil(t, tr)
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, tr.Position)
	assert.Len(t, cmd.GetAllComponents(eid), 1)
}

func TestEcs_RemoveComponents(t *testing.T) {
	ecs := MakeEcs()
	eid := ecs.addEntity(SpotLightComponent{}, RigHelperComponent{ShowLight: true})

	ecs.removeComponents(eid, &RigHelperComponent{})

	assert.True(t, ecs.hasComponentType(eid, reflect.TypeOf(SpotLightComponent{})))
	assert.False(t, ecs.hasComponentType(eid, reflect.TypeOf(RigHelperComponent{})))
}

func TestEcs_AddInvalidComponentShouldPanic(t *testing.T) {
	ecs := MakeEcs()
	assert.PanicsWithValue(t, "component should be a struct", func() {
		ecs.addEntity(123)
	})
}

func TestEcs_ComponentRegistration(t *testing.T) {
	ecs := MakeEcs()
	id1 := ecs.getComponentId(reflect.TypeOf(OrbitComponent{}))
	id2 := ecs.getComponentId(reflect.TypeOf(OrbitComponent{}))

	assert.Equal(t, id1, id2)
	assert.Equal(t, reflect.TypeOf(OrbitComponent{}), ecs.getComponentType(id1))
	assert.Panics(t, func() { ecs.getComponentType(id1 + 100) })
}

func TestEcs_ArchetypeKeyExtension(t *testing.T) {
	assert.Equal(t, archetypeKey{1, 2, 3}, dedupAndSortArchetypeKey([]componentId{3, 1, 2, 1, 3}))
	assert.Equal(t, archetypeKey{1, 2, 3, 4}, combineArchetypeKeys([]componentId{1, 2, 3}, []componentId{4, 3, 2, 1}))
	assert.Equal(t, getArchetypeId(archetypeKey{1, 2}), getArchetypeId(dedupAndSortArchetypeKey([]componentId{2, 1})))
}

func TestEcs_RemoveEntity(t *testing.T) {
	ecs := MakeEcs()
	eid := ecs.addEntity(MeshComponent{CastShadow: true})
	ecs.removeEntity(eid)

	assert.NotContains(t, ecs.entityIndex, eid)
	assert.Equal(t, 0, ecs.entityCount())
}

func TestEcs_RecycledRowsAreReused(t *testing.T) {
	ecs := MakeEcs()
	first := ecs.addEntity(LightRigComponent{Name: "a"})
	ecs.removeEntity(first)
	second := ecs.addEntity(LightRigComponent{Name: "b"})

	arch, r, ok := ecs.locate(second)
	require.True(t, ok)
	assert.Equal(t, row(0), r)
	assert.Equal(t, 1, arch.size)
	assert.NotEqual(t, first, second)
}

func TestEcs_RemovedRowsAreZeroed(t *testing.T) {
	ecs := MakeEcs()
	mat := NewStandardMaterial(0xffffff, 0.5, 0)
	eid := ecs.addEntity(MeshComponent{Material: mat})
	arch, r, _ := ecs.locate(eid)

	require.True(t, ecs.removeEntity(eid))
	assert.Nil(t, arch.columns[ecs.getComponentId(reflect.TypeOf(MeshComponent{}))].([]MeshComponent)[r].Material)
	assert.False(t, ecs.removeEntity(eid))
}

func TestEcs_ReAddingSameComponentsKeepsArchetype(t *testing.T) {
	ecs := MakeEcs()
	eid := ecs.addEntity(OrbitComponent{Radius: 1})
	before, beforeRow, _ := ecs.locate(eid)

	require.True(t, ecs.addComponents(eid, OrbitComponent{Radius: 2}))
	after, afterRow, _ := ecs.locate(eid)
	assert.Same(t, before, after)
	assert.Equal(t, beforeRow, afterRow)
	assert.Empty(t, after.free)
	assert.Equal(t, float32(2), after.columns[ecs.getComponentId(reflect.TypeOf(OrbitComponent{}))].([]OrbitComponent)[afterRow].Radius)
}

func TestEcs_RemovingAbsentComponentIsNoop(t *testing.T) {
	ecs := MakeEcs()
	eid := ecs.addEntity(SpotLightComponent{Intensity: 7})
	before, _, _ := ecs.locate(eid)

	require.True(t, ecs.removeComponents(eid, OrbitComponent{}))
	after, _, _ := ecs.locate(eid)
	assert.Same(t, before, after)
	assert.False(t, ecs.addComponents(EntityId(999), OrbitComponent{}))
	assert.False(t, ecs.removeComponents(EntityId(999), OrbitComponent{}))
}

func TestEcs_ComponentsInIdOrder(t *testing.T) {
	ecs := MakeEcs()
	ecs.getComponentId(reflect.TypeOf(OrbitComponent{}))
	eid := ecs.addEntity(SpotLightComponent{Intensity: 3}, OrbitComponent{Radius: 4})

	comps := ecs.components(eid)
	require.Len(t, comps, 2)
	assert.IsType(t, OrbitComponent{}, comps[0])
	assert.IsType(t, SpotLightComponent{}, comps[1])
	assert.Nil(t, ecs.components(EntityId(42)))
}

func TestCommands_RemovalsOfDeadEntitiesAreIgnored(t *testing.T) {
	app := newTestApp()
	cmd := app.Commands()
	eid := cmd.AddEntity(&LightRigComponent{})
	app.FlushCommands()

	cmd.RemoveEntity(eid)
	cmd.RemoveEntity(eid)
	cmd.AddComponents(eid, SpotLightComponent{})
	assert.NotPanics(t, app.FlushCommands)
	assert.False(t, cmd.Alive(eid))
	assert.Nil(t, GetComponent[LightRigComponent](cmd, eid))
	assert.Nil(t, cmd.GetAllComponents(eid))
}

func TestCommands_RemovingQueuedEntityCancelsIt(t *testing.T) {
	app := newTestApp()
	cmd := app.Commands()
	kept := cmd.AddEntity(&LightRigComponent{Name: "kept"})
	dropped := cmd.AddEntity(&LightRigComponent{Name: "dropped"})

	cmd.RemoveEntity(dropped)
	app.FlushCommands()

	assert.True(t, cmd.Alive(kept))
	assert.False(t, cmd.Alive(dropped))
	assert.Equal(t, 1, app.ecs.entityCount())
}
