package lightlab

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

const (
	StateRunning State = iota
	StateQuit
)

// SandboxOptions are the collaborators the composition root plugs in.
type SandboxOptions struct {
	Config   Config
	Renderer Renderer
	// RendererName tags the renderer for the single-renderer check.
	RendererName string
	Input        InputSource
	// Terminal enables the tcell panel; Screen overrides the process terminal.
	Terminal bool
	Screen   tcell.Screen
	Clock    Clock
	// ModelLoader defaults to GLTFLoader.
	ModelLoader ModelLoader
}

// NewSandbox assembles the lighting sandbox: scene, rigs, model library,
// subsurface effect, material tuning, textures and the parameter panel.
func NewSandbox(opts SandboxOptions) (*App, error) {
	cfg := opts.Config
	rigs, err := cfg.Rig.RigConfigs()
	if err != nil {
		return nil, fmt.Errorf("rig config: %w", err)
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NewHeadlessRenderer()
	}
	name := opts.RendererName
	if name == "" {
		name = "headless"
	}

	logging := LoggingModule{Prefix: cfg.Log.Prefix, Debug: cfg.Log.Debug}
	if opts.Terminal {
		logging.File = cfg.Log.File
	}

	builder := NewAppBuilder().
		UseStates(StateRunning, StateQuit).
		UseModule(
			logging,
			TimeModule{Clock: opts.Clock},
			AssetServerModule{},
			HierarchyModule{},
			PanelModule{Title: cfg.Window.Title, PresetPath: cfg.Panel.Preset},
			InputModule{Source: opts.Input},
			RenderModule{Name: name, Renderer: renderer},
			DefaultCameraModule(),
			SceneModule{Scene: SandboxScene()},
			LightRigModule{Rigs: rigs},
			ModelLibraryModule{
				Dir:     cfg.Assets.ModelsDir,
				Models:  cfg.Assets.Models,
				Initial: cfg.Assets.InitialModel,
				Loader:  opts.ModelLoader,
			},
			SubsurfaceModule{
				MapPath:          cfg.Assets.SubsurfaceMap,
				ThicknessMapPath: cfg.Assets.ThicknessMap,
			},
			MaterialTuningModule{},
			TextureModule{
				Dir:            cfg.Assets.TexturesDir,
				Textures:       cfg.Assets.Textures,
				BackgroundsDir: cfg.Assets.BackgroundsDir,
				Backgrounds:    cfg.Assets.Backgrounds,
			},
		)
	if opts.Terminal {
		builder.UseModule(TerminalPanelModule{Screen: opts.Screen})
	}
	return builder.Build(), nil
}

// CloseSandbox releases GPU and terminal resources. Call once after the loop ends.
func CloseSandbox(app *App) {
	ReleaseShadowMaps(app.Commands())
	if tp := Resource[TerminalPanel](app); tp != nil {
		tp.Close()
	}
	if r := RendererOf(app); r != nil {
		r.Close()
	}
	if l, ok := app.Logger().(*DefaultLogger); ok {
		_ = l.Close()
	}
}
