package lightlab

import (
	"fmt"
)

// RendererTag records which renderer drives the App.
// Only one renderer may be installed at a time.
type RendererTag struct {
	Name string
}

// ensureSingleRenderer panics when a second, different renderer is installed.
func ensureSingleRenderer(app *App, name string) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	if tag := Resource[RendererTag](app); tag != nil {
		if tag.Name != name {
			app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
		}
		panic(fmt.Sprintf("Renderer %s installed twice", name))
	}
	app.addResources(&RendererTag{Name: name})
	app.Logger().Infof("Renderer selected: %s", name)
}
