package lightlab

// MaterialTuningModule adds reflectivity, roughness and metalness sliders that
// act on every drawable of the current model. Requires ModelLibraryModule.
type MaterialTuningModule struct{}

func (MaterialTuningModule) Install(app *App, cmd *Commands) {
	panel := Resource[Panel](app)
	lib := Resource[ModelLibrary](app)
	if panel == nil || lib == nil {
		return
	}

	folder := panel.AddFolder("Material").Open()
	folder.AddFloat("Reflectivity", 0.5, 0, 1).Step(0.01).OnChange(func(v float32) {
		TuneModelMaterials(app.Commands(), lib, func(m *Material) { m.Reflectivity = v })
	})
	folder.AddFloat("Roughness", 0.5, 0, 1).Step(0.01).OnChange(func(v float32) {
		TuneModelMaterials(app.Commands(), lib, func(m *Material) { m.Roughness = v })
	})
	folder.AddFloat("Metalness", 0.5, 0, 1).Step(0.01).OnChange(func(v float32) {
		TuneModelMaterials(app.Commands(), lib, func(m *Material) { m.Metalness = v })
	})
}

// TuneModelMaterials applies fn once per distinct material of the current model.
func TuneModelMaterials(cmd *Commands, lib *ModelLibrary, fn func(*Material)) int {
	root, ok := lib.Current()
	if !ok {
		return 0
	}
	seen := make(map[*Material]bool)
	for _, eid := range Descendants(cmd, root) {
		mesh := GetComponent[MeshComponent](cmd, eid)
		if mesh == nil || mesh.Material == nil || seen[mesh.Material] {
			continue
		}
		seen[mesh.Material] = true
		fn(mesh.Material)
		mesh.Material.MarkNeedsUpdate()
	}
	return len(seen)
}
