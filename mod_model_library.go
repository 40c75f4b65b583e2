package lightlab

import (
	"path/filepath"
)

// ModelLibrary owns the single model shown in the sandbox and swaps it by name.
type ModelLibrary struct {
	Dir   string
	Names []string

	loader      ModelLoader
	current     EntityId
	currentName string
	hasCurrent  bool
	announced   bool

	// spawned and data describe the current model while its entities may
	// still be queued.
	spawned SpawnedModel
	data    *ModelData

	onUnload []func(root EntityId)
	onLoaded []func(root EntityId)
}

func NewModelLibrary(dir string, names []string, loader ModelLoader) *ModelLibrary {
	if loader == nil {
		loader = GLTFLoader{}
	}
	return &ModelLibrary{Dir: dir, Names: names, loader: loader}
}

// Current returns the root entity of the loaded model.
func (lib *ModelLibrary) Current() (EntityId, bool) {
	return lib.current, lib.hasCurrent
}

func (lib *ModelLibrary) CurrentName() string { return lib.currentName }

// OnUnload registers a hook called before the current model's entities are removed.
func (lib *ModelLibrary) OnUnload(fn func(root EntityId)) {
	lib.onUnload = append(lib.onUnload, fn)
}

// OnLoaded registers a hook called once a freshly spawned model is live in the world.
func (lib *ModelLibrary) OnLoaded(fn func(root EntityId)) {
	lib.onLoaded = append(lib.onLoaded, fn)
}

func (lib *ModelLibrary) Path(name string) string {
	return filepath.Join(lib.Dir, name+".glb")
}

// Unload removes the current model and disposes its materials and meshes.
// A model swapped in earlier in the same frame is cancelled before it spawns.
func (lib *ModelLibrary) Unload(cmd *Commands, assets *AssetServer) {
	if !lib.hasCurrent {
		return
	}
	root := lib.current
	for _, fn := range lib.onUnload {
		fn(root)
	}

	disposed := make(map[*Material]bool)
	release := func(mesh AssetId, m *Material) {
		if m != nil && !disposed[m] {
			disposed[m] = true
			m.Dispose()
		}
		if assets != nil {
			assets.ReleaseMesh(mesh)
		}
	}

	if cmd.Alive(root) {
		for _, eid := range Descendants(cmd, root) {
			if mesh := GetComponent[MeshComponent](cmd, eid); mesh != nil {
				release(mesh.Mesh, mesh.Material)
			}
			cmd.RemoveEntity(eid)
		}
	} else {
		for _, eid := range lib.spawned.Entities {
			cmd.RemoveEntity(eid)
		}
		if lib.data != nil {
			for _, node := range lib.data.Nodes {
				for _, prim := range node.Primitives {
					release(prim.Mesh, prim.Material)
				}
			}
		}
	}

	lib.hasCurrent = false
	lib.currentName = ""
	lib.spawned = SpawnedModel{}
	lib.data = nil
}

// Swap replaces the current model with name. A model that fails to load leaves
// the scene without a model; the error is logged and returned.
func (lib *ModelLibrary) Swap(cmd *Commands, assets *AssetServer, name string) error {
	lib.Unload(cmd, assets)

	path := lib.Path(name)
	data, err := lib.loader.Load(assets, path)
	if err != nil {
		cmd.Logger().Errorf("Failed to load model %s: %v", name, err)
		return err
	}
	lib.spawned = SpawnModel(cmd, name, data)
	lib.data = data
	lib.current = lib.spawned.Root
	lib.currentName = name
	lib.hasCurrent = true
	lib.announced = false
	cmd.Logger().Infof("Loaded model %s (%d nodes)", name, len(data.Nodes))
	return nil
}

type ModelLibraryModule struct {
	Dir     string
	Models  []string
	Initial string
	Loader  ModelLoader
}

func (mod ModelLibraryModule) Install(app *App, cmd *Commands) {
	lib := NewModelLibrary(mod.Dir, mod.Models, mod.Loader)
	app.addResources(lib)

	assets := Resource[AssetServer](app)
	if assets == nil {
		assets = NewAssetServer()
		app.addResources(assets)
	}

	initial := mod.Initial
	if initial == "" && len(mod.Models) > 0 {
		initial = mod.Models[0]
	}
	if initial != "" {
		_ = lib.Swap(cmd, assets, initial)
	}

	if panel := Resource[Panel](app); panel != nil && len(mod.Models) > 0 {
		AddChoice(panel.Root(), "Model", initial, mod.Models).OnChange(func(name string) {
			_ = lib.Swap(app.Commands(), assets, name)
		})
	}

	app.UseSystem(System(modelLibrarySystem).InStage(Update).RunAlways())
}

// modelLibrarySystem fires the loaded hooks once the spawned root exists.
func modelLibrarySystem(cmd *Commands, lib *ModelLibrary) {
	if !lib.hasCurrent || lib.announced || !cmd.Alive(lib.current) {
		return
	}
	lib.announced = true
	for _, fn := range lib.onLoaded {
		fn(lib.current)
	}
}
