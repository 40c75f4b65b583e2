package lightlab

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Window WindowConfig `toml:"window"`
	Assets AssetConfig  `toml:"assets"`
	Rig    RigSettings  `toml:"rig"`
	Panel  PanelConfig  `toml:"panel"`
	Log    LogConfig    `toml:"log"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type AssetConfig struct {
	ModelsDir      string   `toml:"models_dir"`
	Models         []string `toml:"models"`
	InitialModel   string   `toml:"initial_model"`
	TexturesDir    string   `toml:"textures_dir"`
	Textures       []string `toml:"textures"`
	BackgroundsDir string   `toml:"backgrounds_dir"`
	Backgrounds    []string `toml:"backgrounds"`
	SubsurfaceMap  string   `toml:"subsurface_map"`
	ThicknessMap   string   `toml:"thickness_map"`
}

// RigSettings is the TOML form of RigConfig. Angles are in degrees.
type RigSettings struct {
	Color         string     `toml:"color"`
	Intensity     float32    `toml:"intensity"`
	Distance      float32    `toml:"distance"`
	AngleDeg      float32    `toml:"angle_deg"`
	Penumbra      float32    `toml:"penumbra"`
	Decay         float32    `toml:"decay"`
	Position      [3]float32 `toml:"position"`
	Center        [3]float32 `toml:"center"`
	Radius        float32    `toml:"radius"`
	Speed         float32    `toml:"speed"`
	Animate       bool       `toml:"animate"`
	Mirrored      bool       `toml:"mirrored"`
	CastShadow    bool       `toml:"cast_shadow"`
	ShadowMapSize int        `toml:"shadow_map_size"`
	ShadowNear    float32    `toml:"shadow_near"`
	ShadowFar     float32    `toml:"shadow_far"`
	ShadowFocus   float32    `toml:"shadow_focus"`
	ShowHelper    bool       `toml:"show_helper"`
	ShowFrustum   bool       `toml:"show_frustum"`
}

type PanelConfig struct {
	Terminal bool   `toml:"terminal"`
	Preset   string `toml:"preset"`
}

type LogConfig struct {
	Debug  bool   `toml:"debug"`
	Prefix string `toml:"prefix"`
	// File receives log output while the terminal panel owns the screen.
	File string `toml:"file"`
}

func DefaultConfig() Config {
	rig := DefaultRigConfig()
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "lightlab"},
		Assets: AssetConfig{
			ModelsDir: "resources/models/gltf",
			Models: []string{
				"the queen of swords",
				"treeman",
				"santa muerte",
				"ectoparasitoid",
				"Michelle",
				"Soldier",
				"Walking astronaut",
			},
			TexturesDir:    "resources/textures",
			Textures:       []string{"disturb.jpg", "water.jpg"},
			BackgroundsDir: "resources/textures/equirectangular",
			Backgrounds:    []string{"Cloud Morning Bluesky.jpg", "Blue Local Star.jpg"},
			SubsurfaceMap:  "resources/textures/white.jpg",
			ThicknessMap:   "resources/textures/water.jpg",
		},
		Rig: RigSettings{
			Color:         fmt.Sprintf("#%06x", rig.Color),
			Intensity:     rig.Intensity,
			Distance:      rig.Distance,
			AngleDeg:      mgl32.RadToDeg(rig.Angle),
			Penumbra:      rig.Penumbra,
			Decay:         rig.Decay,
			Position:      rig.Position,
			Center:        rig.Center,
			Radius:        rig.Radius,
			Speed:         rig.Speed,
			CastShadow:    rig.CastShadow,
			ShadowMapSize: rig.ShadowMapSize,
			ShadowNear:    rig.ShadowNear,
			ShadowFar:     rig.ShadowFar,
			ShadowFocus:   rig.ShadowFocus,
			ShowHelper:    rig.ShowHelper,
			ShowFrustum:   rig.ShowFrustum,
		},
		Panel: PanelConfig{Terminal: true, Preset: "lightlab-preset.json"},
		Log:   LogConfig{Prefix: "lightlab", File: "lightlab.log"},
	}
}

// LoadConfig reads a TOML file over the defaults. A missing file yields the
// defaults; a malformed one yields the defaults and the decode error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as TOML.
func SaveConfig(cfg Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// RigConfigs converts the settings into one rig, or a mirrored pair.
func (s RigSettings) RigConfigs() ([]RigConfig, error) {
	color, err := ParseHexColor(s.Color)
	if err != nil {
		return nil, fmt.Errorf("rig color: %w", err)
	}
	angle := mgl32.DegToRad(s.AngleDeg)
	if angle <= 0 || angle > math.Pi/2 {
		return nil, fmt.Errorf("rig angle %.1f° outside (0, 90]", s.AngleDeg)
	}
	if !slices.Contains(ShadowMapSizes, s.ShadowMapSize) {
		return nil, fmt.Errorf("shadow map size %d not one of %v", s.ShadowMapSize, ShadowMapSizes)
	}
	cfg := RigConfig{
		Color:         color,
		Intensity:     s.Intensity,
		Distance:      s.Distance,
		Angle:         angle,
		Penumbra:      s.Penumbra,
		Decay:         s.Decay,
		Position:      mgl32.Vec3(s.Position),
		Center:        mgl32.Vec3(s.Center),
		Radius:        s.Radius,
		Speed:         s.Speed,
		Direction:     Clockwise,
		Animate:       s.Animate,
		CastShadow:    s.CastShadow,
		ShadowMapSize: s.ShadowMapSize,
		ShadowNear:    s.ShadowNear,
		ShadowFar:     s.ShadowFar,
		ShadowFocus:   s.ShadowFocus,
		ShowHelper:    s.ShowHelper,
		ShowFrustum:   s.ShowFrustum,
	}
	if s.Mirrored {
		return MirroredRigPair(cfg), nil
	}
	return []RigConfig{cfg}, nil
}
