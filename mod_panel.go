package lightlab

// PanelModule installs the shared parameter panel. Modules installed after it
// declare their folders on it.
type PanelModule struct {
	Title      string
	PresetPath string
}

func (mod PanelModule) Install(app *App, cmd *Commands) {
	title := mod.Title
	if title == "" {
		title = "lightlab"
	}
	panel := NewPanel(title)
	panel.PresetPath = mod.PresetPath
	app.addResources(panel)
}
