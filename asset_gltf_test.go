package lightlab

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleDocument has a parent and a child node sharing one triangle mesh.
func triangleDocument() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 0, -1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Materials = []*gltf.Material{{
		Name:                 "skin",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 0.5, 0.25, 1}},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos},
			Material:   gltf.Index(0),
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "body", Mesh: gltf.Index(0), Children: []int{1}, Translation: [3]float64{0, 1, 0}},
		{Name: "head", Mesh: gltf.Index(0), Translation: [3]float64{0, 2, 0}},
	}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	doc.Scene = gltf.Index(0)
	return doc
}

func TestConvertGLTF(t *testing.T) {
	assets := NewAssetServer()
	data, err := convertGLTF(triangleDocument(), assets)
	require.NoError(t, err)
	require.Len(t, data.Nodes, 2)

	body, head := data.Nodes[0], data.Nodes[1]
	assert.Equal(t, "body", body.Name)
	assert.Equal(t, -1, body.Parent)
	assert.Equal(t, 0, head.Parent)
	assert.Equal(t, mgl32.Vec3{0, 2, 0}, head.Local.Position)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, head.Local.Scale)

	require.Len(t, body.Primitives, 1)
	assert.Equal(t, body.Primitives[0].Mesh, head.Primitives[0].Mesh, "mesh shared between nodes")
	assert.Same(t, body.Primitives[0].Material, head.Primitives[0].Material)
	assert.Equal(t, "skin", body.Primitives[0].Material.Name)
	assert.Equal(t, mgl32.Vec3{1, 0.5, 0.25}, body.Primitives[0].Material.Color)
	assert.Equal(t, 1, assets.MeshCount())

	mesh, ok := assets.Mesh(body.Primitives[0].Mesh)
	require.True(t, ok)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	for _, v := range mesh.Vertices {
		assert.InDelta(t, 1, v.Normal.Y(), 1e-6)
	}
}

func TestGLTFLoaderReadsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, gltf.SaveBinary(triangleDocument(), path))

	assets := NewAssetServer()
	data, err := GLTFLoader{}.Load(assets, path)
	require.NoError(t, err)
	assert.Len(t, data.Nodes, 2)

	_, err = GLTFLoader{}.Load(assets, filepath.Join(t.TempDir(), "missing.glb"))
	assert.Error(t, err)
}

func TestGLTFNodeMatrix(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 2, 2))
	node := &gltf.Node{}
	for i, v := range m {
		node.Matrix[i] = float64(v)
	}
	tr := gltfNodeTransform(node)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.Position)
	assert.InDelta(t, 2, tr.Scale.X(), 1e-6)
	assert.InDelta(t, 1, tr.Rotation.W, 1e-6)
}

func TestSpawnModel(t *testing.T) {
	app := newTestApp(HierarchyModule{})
	cmd := app.Commands()
	mat := NewStandardMaterial(0xffffff, 1, 0)
	data := &ModelData{Nodes: []ModelNode{
		{Name: "body", Parent: -1, Local: NewTransform(mgl32.Vec3{0, 1, 0}), Primitives: []ModelPrimitive{{Mesh: "m", Material: mat}}},
		{Name: "head", Parent: 0, Local: NewTransform(mgl32.Vec3{0, 1, 0})},
	}}

	spawned := SpawnModel(cmd, "figure", data)
	root := spawned.Root
	app.FlushCommands()
	TransformHierarchySystem(cmd)

	entities := Descendants(cmd, root)
	assert.Len(t, entities, 4)
	assert.ElementsMatch(t, entities, spawned.Entities)
	assert.Equal(t, root, spawned.Entities[0])
	assert.Equal(t, "figure", GetComponent[ModelRootComponent](cmd, root).Name)

	var meshes int
	MakeQuery2[MeshComponent, TransformComponent](cmd).Map(func(_ EntityId, mesh *MeshComponent, tr *TransformComponent) bool {
		meshes++
		assert.True(t, mesh.CastShadow)
		assert.True(t, mesh.ReceiveShadow)
		assert.Equal(t, mgl32.Vec3{0, 1, 0}, tr.Position)
		return true
	})
	assert.Equal(t, 1, meshes)
}
