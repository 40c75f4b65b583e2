package lightlab

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// LightRigComponent tags the entity that carries a rig's light, shadow and orbit.
type LightRigComponent struct {
	Name string
}

// RigConfig describes one spot light rig. Height is taken from Position.Y and
// the initial orbit angle from Position relative to Center.
type RigConfig struct {
	Name       string
	Color      uint32
	Intensity  float32
	Distance   float32
	Angle      float32
	Penumbra   float32
	Decay      float32
	Position   mgl32.Vec3
	Center     mgl32.Vec3
	Radius     float32
	Speed      float32
	Direction  OrbitDirection
	Animate    bool
	CastShadow bool

	ShadowMapSize int
	ShadowNear    float32
	ShadowFar     float32
	ShadowFocus   float32

	ShowHelper  bool
	ShowFrustum bool
}

func DefaultRigConfig() RigConfig {
	return RigConfig{
		Color:         0xffffff,
		Intensity:     100,
		Distance:      50,
		Angle:         math.Pi / 6,
		Penumbra:      0.1,
		Decay:         1.5,
		Position:      mgl32.Vec3{5, 10, 0},
		Radius:        5,
		Speed:         1,
		Direction:     Clockwise,
		CastShadow:    true,
		ShadowMapSize: DefaultShadowMapSize,
		ShadowNear:    DefaultShadowCameraNear,
		ShadowFar:     DefaultShadowCameraFar,
		ShadowFocus:   1,
		ShowHelper:    true,
	}
}

// MirroredRigPair returns base plus a twin on the opposite side of the center
// that orbits the other way.
func MirroredRigPair(base RigConfig) []RigConfig {
	a, b := base, base
	if base.Name == "" {
		a.Name, b.Name = "Rig A", "Rig B"
	} else {
		b.Name = base.Name + " (mirrored)"
	}
	offset := base.Position.Sub(base.Center)
	b.Position = mgl32.Vec3{base.Center.X() - offset.X(), base.Position.Y(), base.Center.Z() - offset.Z()}
	b.Direction = -a.Direction.normalized()
	a.Direction = a.Direction.normalized()
	return []RigConfig{a, b}
}

func (d OrbitDirection) normalized() OrbitDirection {
	if d < 0 {
		return CounterClockwise
	}
	return Clockwise
}

// SpawnLightRig queues the rig entity. The light starts on its orbit circle.
func SpawnLightRig(cmd *Commands, cfg RigConfig, now time.Time) EntityId {
	orbit := OrbitComponent{
		Enabled:    cfg.Animate,
		Speed:      cfg.Speed,
		Direction:  cfg.Direction.normalized(),
		Radius:     cfg.Radius,
		Height:     cfg.Position.Y(),
		Center:     cfg.Center,
		Angle:      AngleFromPosition(cfg.Position, cfg.Center),
		LastUpdate: now,
	}

	light := SpotLightComponent{
		Color:      HexToLinear(cfg.Color),
		Intensity:  cfg.Intensity,
		Distance:   cfg.Distance,
		Angle:      cfg.Angle,
		Penumbra:   cfg.Penumbra,
		Decay:      cfg.Decay,
		Target:     orbit.AimPoint(),
		CastShadow: cfg.CastShadow,
	}

	shadow := NewShadowComponent()
	if cfg.ShadowMapSize > 0 {
		shadow.MapSize = cfg.ShadowMapSize
	}
	shadow.CameraNear = cfg.ShadowNear
	shadow.CameraFar = cfg.ShadowFar
	shadow.Focus = cfg.ShadowFocus

	transform := NewTransform(orbit.Position())
	helper := RigHelperComponent{ShowLight: cfg.ShowHelper, ShowFrustum: cfg.ShowFrustum}
	helper.Refresh(transform.Position, light, &shadow)

	return cmd.AddEntity(
		&LightRigComponent{Name: cfg.Name},
		&transform,
		&light,
		&shadow,
		&orbit,
		&helper,
	)
}

// LightRigs lists the rigs spawned by LightRigModule, in config order.
type LightRigs struct {
	Entities []EntityId
	Configs  []RigConfig
}

// LightRigModule spawns rigs and animates them. Requires TimeModule.
// When a Panel resource exists each rig gets its folders bound.
type LightRigModule struct {
	Rigs []RigConfig
}

func (mod LightRigModule) Install(app *App, cmd *Commands) {
	rigs := mod.Rigs
	if len(rigs) == 0 {
		rigs = []RigConfig{DefaultRigConfig()}
	}

	now := time.Now()
	if t := Resource[Time](app); t != nil {
		now = t.Time
	}

	registry := &LightRigs{}
	for _, cfg := range rigs {
		eid := SpawnLightRig(cmd, cfg, now)
		registry.Entities = append(registry.Entities, eid)
		registry.Configs = append(registry.Configs, cfg)
	}
	app.addResources(registry)

	if panel := Resource[Panel](app); panel != nil {
		for i, eid := range registry.Entities {
			parent := panel.Root()
			if len(rigs) > 1 {
				name := rigs[i].Name
				if name == "" {
					name = "Rig"
				}
				parent = parent.AddFolder(name).Open()
			}
			BindRigPanel(parent, app, eid, rigs[i])
		}
	}

	app.UseSystem(System(lightRigSystem).InStage(Update).RunAlways())
}

func lightRigSystem(cmd *Commands, t *Time) {
	MakeQuery4[TransformComponent, SpotLightComponent, OrbitComponent, RigHelperComponent](cmd).Map(
		func(eid EntityId, tr *TransformComponent, light *SpotLightComponent, orbit *OrbitComponent, helper *RigHelperComponent) bool {
			if orbit.Advance(t.Time) {
				tr.Position = orbit.Position()
				light.Target = orbit.AimPoint()
			}
			helper.Refresh(tr.Position, *light, GetComponent[ShadowComponent](cmd, eid))
			return true
		})
}

// rigHandle resolves a rig's components at callback time. Components that
// vanished make the callback a no-op.
type rigHandle struct {
	app *App
	cmd *Commands
	eid EntityId
}

func (h rigHandle) light(fn func(tr *TransformComponent, light *SpotLightComponent)) {
	tr := GetComponent[TransformComponent](h.cmd, h.eid)
	light := GetComponent[SpotLightComponent](h.cmd, h.eid)
	if tr == nil || light == nil {
		return
	}
	fn(tr, light)
}

func (h rigHandle) orbit(fn func(tr *TransformComponent, orbit *OrbitComponent)) {
	tr := GetComponent[TransformComponent](h.cmd, h.eid)
	orbit := GetComponent[OrbitComponent](h.cmd, h.eid)
	if tr == nil || orbit == nil {
		return
	}
	fn(tr, orbit)
}

func (h rigHandle) shadow(fn func(shadow *ShadowComponent)) {
	if shadow := GetComponent[ShadowComponent](h.cmd, h.eid); shadow != nil {
		fn(shadow)
	}
}

func (h rigHandle) helper(fn func(helper *RigHelperComponent)) {
	if helper := GetComponent[RigHelperComponent](h.cmd, h.eid); helper != nil {
		fn(helper)
	}
}

func (h rigHandle) now() time.Time {
	if t := Resource[Time](h.app); t != nil {
		return t.Time
	}
	return time.Now()
}

// BindRigPanel declares the rig's folders under parent.
func BindRigPanel(parent *Folder, app *App, eid EntityId, cfg RigConfig) {
	h := rigHandle{app: app, cmd: app.Commands(), eid: eid}

	initialAngle := AngleFromPosition(cfg.Position, cfg.Center)

	spot := parent.AddFolder("Spotlight Settings").Open()
	spot.AddColor("Light Color", cfg.Color).OnChange(func(hex uint32) {
		h.light(func(_ *TransformComponent, l *SpotLightComponent) { l.Color = HexToLinear(hex) })
	})
	spot.AddFloat("Intensity", cfg.Intensity, 0, 200).Step(1).OnChange(func(v float32) {
		h.light(func(_ *TransformComponent, l *SpotLightComponent) { l.Intensity = v })
	})
	spot.AddFloat("Distance", cfg.Distance, 0, 100).Step(0.5).OnChange(func(v float32) {
		h.light(func(_ *TransformComponent, l *SpotLightComponent) { l.Distance = v })
	})
	spot.AddFloat("Angle", cfg.Angle, 0, math.Pi/2).Step(0.01).OnChange(func(v float32) {
		h.light(func(_ *TransformComponent, l *SpotLightComponent) { l.Angle = v })
	})
	spot.AddFloat("Height", cfg.Position.Y(), 0, 20).Step(0.1).OnChange(func(v float32) {
		h.orbit(func(tr *TransformComponent, o *OrbitComponent) {
			o.Height = v
			tr.Position[1] = v
		})
	})
	spot.AddFloat("Rotation Radius", cfg.Radius, 0, 20).Step(0.1).OnChange(func(v float32) {
		h.orbit(func(tr *TransformComponent, o *OrbitComponent) {
			o.Radius = v
			if !o.Enabled {
				tr.Position = o.Position()
			}
		})
	})
	spot.AddFloat("Rotation Angle", initialAngle, 0, 2*math.Pi).Step(0.01).OnChange(func(v float32) {
		h.orbit(func(tr *TransformComponent, o *OrbitComponent) {
			o.Angle = NormalizeAngle(v)
			if !o.Enabled {
				tr.Position = o.Position()
			}
		})
	})
	spot.AddFloat("Penumbra", cfg.Penumbra, 0, 1).Step(0.01).OnChange(func(v float32) {
		h.light(func(_ *TransformComponent, l *SpotLightComponent) { l.Penumbra = v })
	})
	spot.AddFloat("Decay", cfg.Decay, 0, 2).Step(0.01).OnChange(func(v float32) {
		h.light(func(_ *TransformComponent, l *SpotLightComponent) { l.Decay = v })
	})

	anim := parent.AddFolder("Animation Settings").Open()
	anim.AddBool("Enable Animation", cfg.Animate).OnChange(func(on bool) {
		h.orbit(func(_ *TransformComponent, o *OrbitComponent) { o.SetEnabled(on, h.now()) })
	})
	anim.AddFloat("Speed", cfg.Speed, 0.1, 5).Step(0.1).OnChange(func(v float32) {
		h.orbit(func(_ *TransformComponent, o *OrbitComponent) { o.Speed = v })
	})
	AddChoice(anim, "Direction", cfg.Direction.normalized().String(),
		[]string{Clockwise.String(), CounterClockwise.String()}).OnChange(func(v string) {
		h.orbit(func(_ *TransformComponent, o *OrbitComponent) {
			o.Direction = Clockwise
			if v == CounterClockwise.String() {
				o.Direction = CounterClockwise
			}
		})
	})

	shadows := parent.AddFolder("Shadow Settings").Open()
	shadows.AddBool("Enable Shadows", cfg.CastShadow).OnChange(func(on bool) {
		if settings := Resource[RenderSettings](app); settings != nil {
			settings.ShadowsEnabled = on
		}
		h.light(func(_ *TransformComponent, l *SpotLightComponent) { l.CastShadow = on })
		MarkAllMaterialsNeedUpdate(h.cmd)
	})
	shadows.AddFloat("Shadow Focus", cfg.ShadowFocus, 0, 1).Step(0.01).OnChange(func(v float32) {
		h.shadow(func(s *ShadowComponent) { s.Focus = v })
	})
	AddChoice(shadows, "Shadow Map Size", cfg.ShadowMapSize, ShadowMapSizes).OnChange(func(size int) {
		h.shadow(func(s *ShadowComponent) { s.SetMapSize(size) })
	})
	shadows.AddFloat("Shadow Camera Near", cfg.ShadowNear, 0.1, 10).Step(0.1).OnChange(func(v float32) {
		h.shadow(func(s *ShadowComponent) { s.CameraNear = v })
	})
	shadows.AddFloat("Shadow Camera Far", cfg.ShadowFar, 10, 100).Step(1).OnChange(func(v float32) {
		h.shadow(func(s *ShadowComponent) { s.CameraFar = v })
	})

	helpers := parent.AddFolder("Helpers").Open()
	helpers.AddBool("Show Light Helper", cfg.ShowHelper).OnChange(func(on bool) {
		h.helper(func(r *RigHelperComponent) { r.ShowLight = on })
	})
	helpers.AddBool("Show Shadow Camera", cfg.ShowFrustum).OnChange(func(on bool) {
		h.helper(func(r *RigHelperComponent) { r.ShowFrustum = on })
	})
}

// MarkAllMaterialsNeedUpdate bumps the version of every material in the scene.
func MarkAllMaterialsNeedUpdate(cmd *Commands) {
	seen := make(map[*Material]bool)
	MakeQuery1[MeshComponent](cmd).Map(func(eid EntityId, mesh *MeshComponent) bool {
		if mesh.Material != nil && !seen[mesh.Material] {
			seen[mesh.Material] = true
			mesh.Material.MarkNeedsUpdate()
		}
		return true
	})
}
