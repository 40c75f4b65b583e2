package lightlab

import (
	"github.com/go-gl/mathgl/mgl32"
)

// RenderSettings are scene-wide switches edited from the panel.
type RenderSettings struct {
	ShadowsEnabled bool
	ClearColor     mgl32.Vec3
	// Background is an equirectangular texture; empty means ClearColor.
	Background AssetId
	// EnvironmentTint is the average background color, used as extra ambient.
	EnvironmentTint mgl32.Vec3
	Ambient         AmbientLightComponent
}

func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		ShadowsEnabled: true,
		Ambient:        AmbientLightComponent{Color: mgl32.Vec3{1, 1, 1}, Intensity: 0.05},
	}
}

type FrameCamera struct {
	Position   mgl32.Vec3
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

type FrameSpotLight struct {
	Position   mgl32.Vec3
	Direction  mgl32.Vec3
	Color      mgl32.Vec3
	Intensity  float32
	Distance   float32
	Decay      float32
	ConeOuter  float32
	ConeInner  float32
	CastShadow bool
	ShadowBias float32
	// ShadowViewProj maps world space into the light's clip space.
	ShadowViewProj mgl32.Mat4
	ShadowMap      ShadowMap
}

type DrawItem struct {
	Entity        EntityId
	Mesh          AssetId
	Model         mgl32.Mat4
	Normal        mgl32.Mat4
	Material      *Material
	CastShadow    bool
	ReceiveShadow bool
}

// Frame is everything a renderer needs for one image, extracted from the world.
type Frame struct {
	Index          uint64
	Camera         FrameCamera
	Ambient        AmbientLightComponent
	SpotLights     []FrameSpotLight
	Draws          []DrawItem
	Lines          []GizmoLine
	ClearColor     mgl32.Vec3
	Background     AssetId
	ShadowsEnabled bool
	Assets         *AssetServer
}

// Renderer draws extracted frames. It owns GPU resources such as shadow maps.
type Renderer interface {
	Render(frame *Frame) error
	NewShadowMap(size int) ShadowMap
	Close()
}

// ExtractFrame copies the renderable state of the world into a Frame.
func ExtractFrame(cmd *Commands, settings *RenderSettings, assets *AssetServer) *Frame {
	frame := &Frame{
		Index:          cmd.app.Frame(),
		ClearColor:     settings.ClearColor,
		Background:     settings.Background,
		ShadowsEnabled: settings.ShadowsEnabled,
		Ambient:        settings.Ambient,
		Assets:         assets,
	}
	frame.Ambient.Color = frame.Ambient.Color.Add(settings.EnvironmentTint)

	MakeQuery2[TransformComponent, CameraComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, cam *CameraComponent) bool {
		frame.Camera = FrameCamera{
			Position:   tr.Position,
			View:       cam.View(tr.Position),
			Projection: cam.Projection(),
		}
		return false
	})

	MakeQuery1[AmbientLightComponent](cmd).Map(func(eid EntityId, amb *AmbientLightComponent) bool {
		frame.Ambient.Color = frame.Ambient.Color.Add(amb.Color.Mul(amb.Intensity))
		return true
	})

	MakeQuery3[TransformComponent, SpotLightComponent, ShadowComponent](cmd).Map(
		func(eid EntityId, tr *TransformComponent, light *SpotLightComponent, shadow *ShadowComponent) bool {
			outer, inner := light.ConeCos()
			fl := FrameSpotLight{
				Position:   tr.Position,
				Direction:  light.Direction(tr.Position),
				Color:      light.Color,
				Intensity:  light.Intensity,
				Distance:   light.Distance,
				Decay:      light.Decay,
				ConeOuter:  outer,
				ConeInner:  inner,
				CastShadow: light.CastShadow && settings.ShadowsEnabled,
			}
			if shadow != nil {
				view, proj := ShadowCamera(tr.Position, *light, *shadow)
				fl.ShadowViewProj = proj.Mul4(view)
				fl.ShadowBias = shadow.Bias
				fl.ShadowMap = shadow.Map
			}
			if fl.ShadowMap == nil {
				fl.CastShadow = false
			}
			frame.SpotLights = append(frame.SpotLights, fl)
			return true
		}, ShadowComponent{})

	MakeQuery2[TransformComponent, MeshComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, mesh *MeshComponent) bool {
		if mesh.Material == nil || mesh.Material.Disposed() {
			return true
		}
		frame.Draws = append(frame.Draws, DrawItem{
			Entity:        eid,
			Mesh:          mesh.Mesh,
			Model:         tr.ObjectToWorld(),
			Normal:        tr.NormalMatrix(),
			Material:      mesh.Material,
			CastShadow:    mesh.CastShadow,
			ReceiveShadow: mesh.ReceiveShadow,
		})
		return true
	})

	MakeQuery1[RigHelperComponent](cmd).Map(func(eid EntityId, helper *RigHelperComponent) bool {
		frame.Lines = append(frame.Lines, helper.Visible()...)
		return true
	})

	return frame
}

type rendererResource struct {
	renderer Renderer
}

// RenderModule drives a Renderer: it allocates missing shadow maps before
// rendering and renders once per frame. Render errors are logged and the loop
// carries on.
type RenderModule struct {
	Name     string
	Renderer Renderer
	Settings *RenderSettings
}

func (mod RenderModule) Install(app *App, cmd *Commands) {
	name := mod.Name
	if name == "" {
		name = "default"
	}
	ensureSingleRenderer(app, name)

	if Resource[RenderSettings](app) == nil {
		settings := mod.Settings
		if settings == nil {
			defaults := DefaultRenderSettings()
			settings = &defaults
		}
		app.addResources(settings)
	}
	if Resource[AssetServer](app) == nil {
		app.addResources(NewAssetServer())
	}
	app.addResources(&rendererResource{renderer: mod.Renderer})

	app.UseSystem(System(shadowMapSystem).InStage(PreRender).RunAlways())
	app.UseSystem(System(renderSystem).InStage(Render).RunAlways())
}

// shadowMapSystem creates maps for shadow-casting lights that lost theirs.
func shadowMapSystem(cmd *Commands, r *rendererResource, settings *RenderSettings) {
	if !settings.ShadowsEnabled {
		return
	}
	MakeQuery2[SpotLightComponent, ShadowComponent](cmd).Map(func(eid EntityId, light *SpotLightComponent, shadow *ShadowComponent) bool {
		if light.CastShadow && shadow.Map == nil && shadow.MapSize > 0 {
			shadow.Map = r.renderer.NewShadowMap(shadow.MapSize)
		}
		return true
	})
}

func renderSystem(cmd *Commands, r *rendererResource, settings *RenderSettings, assets *AssetServer, logger Logger) {
	frame := ExtractFrame(cmd, settings, assets)
	if err := r.renderer.Render(frame); err != nil {
		logger.Errorf("render frame %d: %v", frame.Index, err)
	}
}

// RendererOf returns the renderer installed by RenderModule.
func RendererOf(app *App) Renderer {
	if r := Resource[rendererResource](app); r != nil {
		return r.renderer
	}
	return nil
}

// ReleaseShadowMaps disposes every shadow map; used on shutdown before the renderer closes.
func ReleaseShadowMaps(cmd *Commands) {
	MakeQuery1[ShadowComponent](cmd).Map(func(eid EntityId, shadow *ShadowComponent) bool {
		shadow.ReleaseMap()
		return true
	})
}
