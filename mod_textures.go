package lightlab

import (
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
)

// NoTexture is the option that clears a texture or background.
const NoTexture = "none"

// TextureLibrary maps option names to loaded textures. Names keep load order
// and always start with NoTexture.
type TextureLibrary struct {
	Names       []string
	ids         map[string]AssetId
	Backgrounds []string
	backgrounds map[string]AssetId
}

func NewTextureLibrary() *TextureLibrary {
	return &TextureLibrary{
		Names:       []string{NoTexture},
		ids:         make(map[string]AssetId),
		Backgrounds: []string{NoTexture},
		backgrounds: make(map[string]AssetId),
	}
}

func (lib *TextureLibrary) Texture(name string) (AssetId, bool) {
	id, ok := lib.ids[name]
	return id, ok
}

func (lib *TextureLibrary) Background(name string) (AssetId, bool) {
	id, ok := lib.backgrounds[name]
	return id, ok
}

func (lib *TextureLibrary) AddTexture(name string, id AssetId) {
	if _, ok := lib.ids[name]; !ok {
		lib.Names = append(lib.Names, name)
	}
	lib.ids[name] = id
}

func (lib *TextureLibrary) AddBackground(name string, id AssetId) {
	if _, ok := lib.backgrounds[name]; !ok {
		lib.Backgrounds = append(lib.Backgrounds, name)
	}
	lib.backgrounds[name] = id
}

// SwitchBackground points the render settings at the named background, or
// back to a black clear color for NoTexture and unknown names.
func SwitchBackground(settings *RenderSettings, assets *AssetServer, lib *TextureLibrary, name string) {
	id, ok := lib.Background(name)
	if !ok {
		settings.Background = ""
		settings.ClearColor = mgl32.Vec3{}
		settings.EnvironmentTint = mgl32.Vec3{}
		return
	}
	settings.Background = id
	if tex, ok := assets.Texture(id); ok {
		settings.EnvironmentTint = AverageColor(tex).Mul(environmentStrength)
	}
}

const environmentStrength = 0.3

// TextureModule preloads textures and equirectangular backgrounds. Files that
// fail to load are logged and left out of the choices.
type TextureModule struct {
	Dir            string
	Textures       []string
	BackgroundsDir string
	Backgrounds    []string
}

func (mod TextureModule) Install(app *App, cmd *Commands) {
	assets := Resource[AssetServer](app)
	if assets == nil {
		assets = NewAssetServer()
		app.addResources(assets)
	}
	lib := NewTextureLibrary()
	app.addResources(lib)

	for _, file := range mod.Textures {
		id, err := assets.LoadTexture(filepath.Join(mod.Dir, file))
		if err != nil {
			app.Logger().Warnf("Texture %s not loaded: %v", file, err)
			continue
		}
		lib.AddTexture(file, id)
	}
	for _, file := range mod.Backgrounds {
		id, err := assets.LoadTexture(filepath.Join(mod.BackgroundsDir, file))
		if err != nil {
			app.Logger().Warnf("Background %s not loaded: %v", file, err)
			continue
		}
		lib.AddBackground(trimExt(file), id)
	}

	panel := Resource[Panel](app)
	if panel == nil {
		return
	}
	folder := panel.AddFolder("Textures")
	AddChoice(folder, "Background", NoTexture, lib.Backgrounds).OnChange(func(name string) {
		if settings := Resource[RenderSettings](app); settings != nil {
			SwitchBackground(settings, assets, lib, name)
		}
	})
	AddChoice(folder, "Texture", NoTexture, lib.Names).OnChange(func(name string) {
		models := Resource[ModelLibrary](app)
		if models == nil {
			return
		}
		id, _ := lib.Texture(name)
		TuneModelMaterials(app.Commands(), models, func(m *Material) {
			if m.Kind == MaterialStandard {
				m.Map = id
			}
		})
	})
}

func trimExt(file string) string {
	return file[:len(file)-len(filepath.Ext(file))]
}
