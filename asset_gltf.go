package lightlab

import (
	"bytes"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ModelPrimitive is one drawable part of a node.
type ModelPrimitive struct {
	Mesh     AssetId
	Material *Material
}

// ModelNode is a scene-graph node; Parent is an index into ModelData.Nodes or -1.
type ModelNode struct {
	Name       string
	Parent     int
	Local      TransformComponent
	Primitives []ModelPrimitive
}

// ModelData is a loaded model, ready to be spawned. Parents come before children.
type ModelData struct {
	Nodes []ModelNode
}

// ModelLoader turns a file into ModelData, registering meshes and textures.
type ModelLoader interface {
	Load(assets *AssetServer, path string) (*ModelData, error)
}

// GLTFLoader reads .gltf and .glb files.
type GLTFLoader struct{}

func (GLTFLoader) Load(assets *AssetServer, path string) (*ModelData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return convertGLTF(doc, assets)
}

func convertGLTF(doc *gltf.Document, assets *AssetServer) (*ModelData, error) {
	materials := make([]*Material, len(doc.Materials))
	for i, m := range doc.Materials {
		materials[i] = convertGLTFMaterial(doc, assets, m)
	}

	var roots []int
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		roots = doc.Scenes[*doc.Scene].Nodes
	} else if len(doc.Scenes) > 0 {
		roots = doc.Scenes[0].Nodes
	}

	data := &ModelData{}
	meshCache := make(map[int][]ModelPrimitive)

	type pending struct{ node, parent int }
	queue := make([]pending, 0, len(roots))
	for _, r := range roots {
		queue = append(queue, pending{node: r, parent: -1})
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p.node < 0 || p.node >= len(doc.Nodes) {
			continue
		}
		n := doc.Nodes[p.node]

		out := ModelNode{Name: n.Name, Parent: p.parent, Local: gltfNodeTransform(n)}
		if n.Mesh != nil {
			prims, ok := meshCache[*n.Mesh]
			if !ok {
				var err error
				if prims, err = convertGLTFMesh(doc, assets, *n.Mesh, materials); err != nil {
					return nil, err
				}
				meshCache[*n.Mesh] = prims
			}
			out.Primitives = prims
		}

		index := len(data.Nodes)
		data.Nodes = append(data.Nodes, out)
		for _, c := range n.Children {
			queue = append(queue, pending{node: c, parent: index})
		}
	}
	return data, nil
}

func gltfNodeTransform(n *gltf.Node) TransformComponent {
	if n.Matrix != gltf.DefaultMatrix && n.Matrix != [16]float64{} {
		var m mgl32.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		pos := m.Col(3).Vec3()
		sx := m.Col(0).Vec3().Len()
		sy := m.Col(1).Vec3().Len()
		sz := m.Col(2).Vec3().Len()
		rot := mgl32.Mat4ToQuat(mgl32.Mat4FromCols(
			m.Col(0).Mul(1/sx), m.Col(1).Mul(1/sy), m.Col(2).Mul(1/sz), mgl32.Vec4{0, 0, 0, 1},
		))
		return TransformComponent{Position: pos, Rotation: rot, Scale: mgl32.Vec3{sx, sy, sz}}
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return TransformComponent{
		Position: mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
		Rotation: mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}},
		Scale:    mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])},
	}
}

func convertGLTFMaterial(doc *gltf.Document, assets *AssetServer, m *gltf.Material) *Material {
	mat := &Material{
		Name:         m.Name,
		Kind:         MaterialStandard,
		Color:        mgl32.Vec3{1, 1, 1},
		Roughness:    1,
		Metalness:    1,
		Reflectivity: 0.5,
	}
	pbr := m.PBRMetallicRoughness
	if pbr == nil {
		return mat
	}
	c := pbr.BaseColorFactorOrDefault()
	mat.Color = mgl32.Vec3{float32(c[0]), float32(c[1]), float32(c[2])}
	mat.Roughness = float32(pbr.RoughnessFactorOrDefault())
	mat.Metalness = float32(pbr.MetallicFactorOrDefault())

	if pbr.BaseColorTexture != nil {
		if id, ok := loadGLTFTexture(doc, assets, pbr.BaseColorTexture.Index); ok {
			mat.Map = id
		}
	}
	return mat
}

// loadGLTFTexture decodes an image embedded in a buffer view. External URIs
// are not followed.
func loadGLTFTexture(doc *gltf.Document, assets *AssetServer, textureIndex int) (AssetId, bool) {
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return "", false
	}
	src := doc.Textures[textureIndex].Source
	if src == nil || int(*src) >= len(doc.Images) {
		return "", false
	}
	image := doc.Images[*src]
	if image.BufferView == nil || int(*image.BufferView) >= len(doc.BufferViews) {
		return "", false
	}
	raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*image.BufferView])
	if err != nil {
		return "", false
	}
	img, err := DecodeTexture(bytes.NewReader(raw))
	if err != nil {
		return "", false
	}
	return assets.CreateTextureFromImage(image.Name, img), true
}

func convertGLTFMesh(doc *gltf.Document, assets *AssetServer, meshIndex int, materials []*Material) ([]ModelPrimitive, error) {
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh %d out of range", meshIndex)
	}
	var out []ModelPrimitive
	for pi, prim := range doc.Meshes[meshIndex].Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d positions: %w", meshIndex, pi, err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d normals: %w", meshIndex, pi, err)
			}
		}
		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d uvs: %w", meshIndex, pi, err)
			}
		}

		var indices []uint32
		if prim.Indices != nil {
			if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d indices: %w", meshIndex, pi, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		vertices := make([]Vertex, len(positions))
		for i, p := range positions {
			vertices[i].Position = mgl32.Vec3{p[0], p[1], p[2]}
			if i < len(normals) {
				vertices[i].Normal = mgl32.Vec3{normals[i][0], normals[i][1], normals[i][2]}
			}
			if i < len(uvs) {
				vertices[i].UV = mgl32.Vec2{uvs[i][0], uvs[i][1]}
			}
		}
		if len(normals) == 0 {
			computeFlatNormals(vertices, indices)
		}

		material := NewStandardMaterial(0xffffff, 1, 0)
		if prim.Material != nil && int(*prim.Material) < len(materials) {
			material = materials[*prim.Material]
		}
		out = append(out, ModelPrimitive{
			Mesh:     assets.CreateMesh(vertices, indices),
			Material: material,
		})
	}
	return out, nil
}

// computeFlatNormals accumulates face normals onto shared vertices.
func computeFlatNormals(vertices []Vertex, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(vertices) || int(b) >= len(vertices) || int(c) >= len(vertices) {
			continue
		}
		n := vertices[b].Position.Sub(vertices[a].Position).Cross(vertices[c].Position.Sub(vertices[a].Position))
		vertices[a].Normal = vertices[a].Normal.Add(n)
		vertices[b].Normal = vertices[b].Normal.Add(n)
		vertices[c].Normal = vertices[c].Normal.Add(n)
	}
	for i := range vertices {
		if vertices[i].Normal.Len() > 0 {
			vertices[i].Normal = vertices[i].Normal.Normalize()
		} else {
			vertices[i].Normal = mgl32.Vec3{0, 1, 0}
		}
	}
}

// SpawnedModel lists the entities queued for a model, root first.
type SpawnedModel struct {
	Root     EntityId
	Entities []EntityId
}

// SpawnModel queues the model's entities under a new root at the origin.
// Drawables cast and receive shadows.
func SpawnModel(cmd *Commands, name string, data *ModelData) SpawnedModel {
	root := cmd.AddEntity(
		&ModelRootComponent{Name: name},
		&TransformComponent{Position: mgl32.Vec3{}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&LocalTransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
	)

	spawned := SpawnedModel{Root: root, Entities: []EntityId{root}}
	ids := make([]EntityId, len(data.Nodes))
	for i, node := range data.Nodes {
		parent := root
		if node.Parent >= 0 && node.Parent < i {
			parent = ids[node.Parent]
		}
		local := node.Local
		ids[i] = cmd.AddEntity(
			&TransformComponent{Position: local.Position, Rotation: local.Rotation, Scale: local.Scale},
			&LocalTransformComponent{Position: local.Position, Rotation: local.Rotation, Scale: local.Scale},
			&Parent{Entity: parent},
		)
		spawned.Entities = append(spawned.Entities, ids[i])
		for _, prim := range node.Primitives {
			drawable := cmd.AddEntity(
				&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
				&LocalTransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
				&Parent{Entity: ids[i]},
				&MeshComponent{Mesh: prim.Mesh, Material: prim.Material, CastShadow: true, ReceiveShadow: true},
			)
			spawned.Entities = append(spawned.Entities, drawable)
		}
	}
	return spawned
}

// ModelRootComponent marks the root entity of a spawned model.
type ModelRootComponent struct {
	Name string
}
