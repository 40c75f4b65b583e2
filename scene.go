package lightlab

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// SceneDef defines the static contents of the sandbox.
type SceneDef struct {
	Objects []ObjectDef
	Ambient *AmbientLightComponent
}

// ObjectDef defines a procedural drawable.
type ObjectDef struct {
	Shape    string // "box", "plane"
	Size     mgl32.Vec3
	Position mgl32.Vec3
	Rotation mgl32.Quat

	Color         uint32
	Roughness     float32
	Metalness     float32
	CastShadow    bool
	ReceiveShadow bool
}

// SceneObjectComponent tags entities spawned from a SceneDef.
type SceneObjectComponent struct {
	Name string
}

// SandboxScene is the 40×40 ground with a 5×5 grid of boxes used to read the light.
func SandboxScene() *SceneDef {
	scene := &SceneDef{
		Objects: []ObjectDef{{
			Shape:         "plane",
			Size:          mgl32.Vec3{40, 0, 40},
			Rotation:      mgl32.QuatIdent(),
			Color:         0xcccccc,
			Roughness:     0.8,
			Metalness:     0.2,
			ReceiveShadow: true,
		}},
	}
	for i := -2; i <= 2; i++ {
		for j := -2; j <= 2; j++ {
			scene.Objects = append(scene.Objects, ObjectDef{
				Shape:         "box",
				Size:          mgl32.Vec3{1.5, 1.5, 1.5},
				Position:      mgl32.Vec3{float32(i) * 4, 0.75, float32(j) * 4},
				Rotation:      mgl32.QuatIdent(),
				Color:         0x808080,
				Roughness:     0.7,
				Metalness:     0.3,
				CastShadow:    true,
				ReceiveShadow: true,
			})
		}
	}
	return scene
}

// LoadScene queues every object of scene. Objects of the same shape and size
// share one mesh; each gets its own material.
func LoadScene(cmd *Commands, assets *AssetServer, scene *SceneDef) ([]EntityId, error) {
	meshes := make(map[string]AssetId)
	var spawned []EntityId

	for i, obj := range scene.Objects {
		key := fmt.Sprintf("%s:%v", obj.Shape, obj.Size)
		mesh, ok := meshes[key]
		if !ok {
			switch obj.Shape {
			case "box":
				mesh = assets.CreateBoxMesh(obj.Size.X(), obj.Size.Y(), obj.Size.Z())
			case "plane":
				mesh = assets.CreatePlaneMesh(obj.Size.X(), obj.Size.Z())
			default:
				return spawned, fmt.Errorf("object %d: unknown shape %q", i, obj.Shape)
			}
			meshes[key] = mesh
		}

		rotation := obj.Rotation
		if rotation == (mgl32.Quat{}) {
			rotation = mgl32.QuatIdent()
		}
		spawned = append(spawned, cmd.AddEntity(
			&SceneObjectComponent{Name: fmt.Sprintf("%s-%d", obj.Shape, i)},
			&TransformComponent{Position: obj.Position, Rotation: rotation, Scale: mgl32.Vec3{1, 1, 1}},
			&MeshComponent{
				Mesh:          mesh,
				Material:      NewStandardMaterial(obj.Color, obj.Roughness, obj.Metalness),
				CastShadow:    obj.CastShadow,
				ReceiveShadow: obj.ReceiveShadow,
			},
		))
	}

	if scene.Ambient != nil {
		ambient := *scene.Ambient
		spawned = append(spawned, cmd.AddEntity(&ambient))
	}
	return spawned, nil
}

type SceneModule struct {
	Scene *SceneDef
}

func (mod SceneModule) Install(app *App, cmd *Commands) {
	assets := Resource[AssetServer](app)
	if assets == nil {
		assets = NewAssetServer()
		app.addResources(assets)
	}
	scene := mod.Scene
	if scene == nil {
		scene = SandboxScene()
	}
	if _, err := LoadScene(cmd, assets, scene); err != nil {
		panic(err)
	}
}
