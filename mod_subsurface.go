package lightlab

import (
	"fmt"
)

// SubsurfaceController owns the translucency material and swaps it onto the
// current model through an EffectToggle.
type SubsurfaceController struct {
	Uniforms *SubsurfaceUniforms
	Material *Material
	Effect   *EffectToggle
	// Enabled survives model swaps; a newly loaded model gets the effect re-applied.
	Enabled bool
}

func NewSubsurfaceController(defaults SubsurfaceUniforms) (*SubsurfaceController, error) {
	uniforms, err := CloneSubsurfaceUniforms(defaults)
	if err != nil {
		return nil, fmt.Errorf("clone subsurface uniforms: %w", err)
	}
	material := &Material{
		Name:       "subsurface",
		Kind:       MaterialSubsurface,
		Color:      uniforms.Diffuse,
		Subsurface: uniforms,
		Map:        uniforms.Map,
	}
	return &SubsurfaceController{
		Uniforms: uniforms,
		Material: material,
		Effect:   NewEffectToggle(material),
	}, nil
}

// SetUniform writes an existing uniform and flags the material; unknown names do nothing.
func (c *SubsurfaceController) SetUniform(name string, value any) bool {
	if !c.Uniforms.SetUniform(name, value) {
		return false
	}
	c.Material.Color = c.Uniforms.Diffuse
	c.Material.Map = c.Uniforms.Map
	c.Material.MarkNeedsUpdate()
	return true
}

// Toggle applies or removes the effect on the model rooted at root.
func (c *SubsurfaceController) Toggle(cmd *Commands, root EntityId, enable bool) {
	c.Enabled = enable
	if enable {
		n := c.Effect.Enable(cmd, root)
		cmd.Logger().Debugf("Applied subsurface material to %d meshes", n)
		return
	}
	n := c.Effect.Disable(cmd, root)
	cmd.Logger().Debugf("Restored %d original materials", n)
}

type SubsurfaceModule struct {
	MapPath          string
	ThicknessMapPath string
	Enabled          bool
}

func (mod SubsurfaceModule) Install(app *App, cmd *Commands) {
	ctl, err := NewSubsurfaceController(DefaultSubsurfaceUniforms())
	if err != nil {
		panic(err)
	}
	app.addResources(ctl)

	if assets := Resource[AssetServer](app); assets != nil {
		for uniform, path := range map[string]string{"map": mod.MapPath, "thicknessMap": mod.ThicknessMapPath} {
			if path == "" {
				continue
			}
			id, err := assets.LoadTexture(path)
			if err != nil {
				app.Logger().Warnf("Subsurface %s not loaded: %v", uniform, err)
				continue
			}
			ctl.SetUniform(uniform, id)
		}
	}

	ctl.Enabled = mod.Enabled
	lib := Resource[ModelLibrary](app)
	if lib != nil {
		// Originals go back before the model is disposed so the shared
		// subsurface material survives the swap.
		lib.OnUnload(func(root EntityId) {
			ctl.Effect.Disable(app.Commands(), root)
			ctl.Effect.Reset()
		})
		lib.OnLoaded(func(root EntityId) {
			if ctl.Enabled {
				ctl.Toggle(app.Commands(), root, true)
			}
		})
	}

	toggle := func(on bool) {
		if lib != nil {
			if root, ok := lib.Current(); ok {
				ctl.Toggle(app.Commands(), root, on)
				return
			}
		}
		ctl.Enabled = on
	}

	panel := Resource[Panel](app)
	if panel == nil {
		return
	}
	u := ctl.Uniforms
	folder := panel.AddFolder("Subsurface Scattering").Open()
	folder.AddBool("Enable SSS", mod.Enabled).OnChange(toggle)
	folder.AddColor("diffuse", LinearToHex(u.Diffuse)).OnChange(func(hex uint32) {
		ctl.SetUniform("diffuse", hex)
	})
	folder.AddFloat("shininess", u.Shininess, 0, 1000).Step(1).OnChange(func(v float32) {
		ctl.SetUniform("shininess", v)
	})
	folder.AddColor("thicknessColor", LinearToHex(u.ThicknessColor)).OnChange(func(hex uint32) {
		ctl.SetUniform("thicknessColor", hex)
	})
	folder.AddFloat("distortion", u.Distortion, 0.01, 1).Step(0.01).OnChange(func(v float32) {
		ctl.SetUniform("thicknessDistortion", v)
	})
	folder.AddFloat("ambient", u.Ambient, 0.01, 5).Step(0.01).OnChange(func(v float32) {
		ctl.SetUniform("thicknessAmbient", v)
	})
	folder.AddFloat("attenuation", u.Attenuation, 0.01, 5).Step(0.01).OnChange(func(v float32) {
		ctl.SetUniform("thicknessAttenuation", v)
	})
	folder.AddFloat("power", u.Power, 0.01, 16).Step(0.01).OnChange(func(v float32) {
		ctl.SetUniform("thicknessPower", v)
	})
	folder.AddFloat("scale", u.Scale, 0.01, 50).Step(0.01).OnChange(func(v float32) {
		ctl.SetUniform("thicknessScale", v)
	})
}
