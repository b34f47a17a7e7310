// Package config loads the badge viewer settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/badge"
	"github.com/Carmen-Shannon/oxy-badges/engine/native"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/postprocess"
	"github.com/Carmen-Shannon/oxy-badges/engine/scene"
	"gopkg.in/yaml.v3"
)

// maxFileSize bounds the config files Load accepts.
const maxFileSize = 1 << 20

// Config holds every setting of the viewer. The zero value is not usable; start from Default.
type Config struct {
	Window   WindowConfig  `yaml:"window"`
	Badge    string        `yaml:"badge"`
	Native   string        `yaml:"native"`
	FPS      float64       `yaml:"fps"`
	VSync    bool          `yaml:"vsync"`
	LogLevel string        `yaml:"log_level"`
	Profile  bool          `yaml:"profile"`
	Pointer  PointerConfig `yaml:"pointer"`
	Post     PostConfig    `yaml:"postprocess"`

	// ValidateShaders compiles material shaders with naga before use. Debug logging turns it on too.
	ValidateShaders bool `yaml:"validate_shaders"`
}

// WindowConfig sizes the host window. Width and Height are logical pixels.
type WindowConfig struct {
	Title         string  `yaml:"title"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	MaxPixelRatio float32 `yaml:"max_pixel_ratio"`
}

// PointerConfig controls how the pointer light follows the cursor.
type PointerConfig struct {
	Smoothing float32 `yaml:"smoothing"`
}

// PostConfig holds the postprocess chain parameters.
type PostConfig struct {
	Bloom               BloomConfig      `yaml:"bloom"`
	ChromaticAberration AberrationConfig `yaml:"chromatic_aberration"`
	GodRays             GodRaysConfig    `yaml:"god_rays"`
	Exposure            float32          `yaml:"exposure"`
	ToneMapping         bool             `yaml:"tone_mapping"`
}

type BloomConfig struct {
	Strength  float32 `yaml:"strength"`
	Radius    float32 `yaml:"radius"`
	Threshold float32 `yaml:"threshold"`
}

type AberrationConfig struct {
	Amount      float32 `yaml:"amount"`
	Radial      bool    `yaml:"radial"`
	StartRadius float32 `yaml:"start_radius"`
	EndRadius   float32 `yaml:"end_radius"`
}

// GodRaysConfig enables the light shaft pass. It is off by default.
type GodRaysConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Exposure float32 `yaml:"exposure"`
	Decay    float32 `yaml:"decay"`
	Density  float32 `yaml:"density"`
	Weight   float32 `yaml:"weight"`
	ClampMax float32 `yaml:"clamp_max"`
}

// Default returns the settings used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	bloom := postprocess.DefaultBloomConfig
	ca := postprocess.DefaultChromaticAberrationConfig
	rays := postprocess.DefaultGodRaysConfig
	out := postprocess.DefaultOutputConfig
	return Config{
		Window: WindowConfig{
			Title:         "oxy badges",
			Width:         1024,
			Height:        768,
			MaxPixelRatio: 2,
		},
		Badge:    badge.VariantVotes.String(),
		Native:   native.BuiltinLocator,
		FPS:      60,
		VSync:    true,
		LogLevel: "info",
		Pointer:  PointerConfig{Smoothing: 0.1},
		Post: PostConfig{
			Bloom: BloomConfig{Strength: bloom.Strength, Radius: bloom.Radius, Threshold: bloom.Threshold},
			ChromaticAberration: AberrationConfig{
				Amount:      ca.Amount,
				Radial:      ca.Radial,
				StartRadius: ca.StartRadius,
				EndRadius:   ca.EndRadius,
			},
			GodRays: GodRaysConfig{
				Exposure: rays.Exposure,
				Decay:    rays.Decay,
				Density:  rays.Density,
				Weight:   rays.Weight,
				ClampMax: rays.ClampMax,
			},
			Exposure:    out.Exposure,
			ToneMapping: out.ToneMapping,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file yields the defaults; keys the
// file leaves out keep their default values.
//
// Parameters:
//   - path: the config file, or "" for the defaults
//
// Returns:
//   - Config: the loaded configuration
//   - error: an error if the file cannot be read, parsed or fails Validate
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			common.Logger().Info("config file not found, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("config: %s is %d bytes, limit is %d", path, info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	common.Logger().Info("config loaded", "path", path)
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping the fields the document does not set, and validates the
// result. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//   - cfg: the configuration to update
//
// Returns:
//   - error: an error if the document is malformed or invalid
func Parse(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

// Validate checks that sizes are positive and factors lie in their ranges.
//
// Returns:
//   - error: the first invalid field, or nil
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.MaxPixelRatio < 1 {
		return fmt.Errorf("window.max_pixel_ratio %v must be at least 1", c.Window.MaxPixelRatio)
	}
	if _, err := badge.ParseVariant(c.Badge); err != nil {
		return fmt.Errorf("badge: %w", err)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps %v must be positive", c.FPS)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if s := c.Pointer.Smoothing; s <= 0 || s > 1 {
		return fmt.Errorf("pointer.smoothing %v must be in (0, 1]", s)
	}

	b := c.Post.Bloom
	if b.Strength < 0 || b.Radius < 0 || b.Radius > 1 || b.Threshold < 0 {
		return fmt.Errorf("postprocess.bloom %+v out of range", b)
	}
	ca := c.Post.ChromaticAberration
	if ca.Amount < 0 || ca.StartRadius < 0 || ca.EndRadius < ca.StartRadius {
		return fmt.Errorf("postprocess.chromatic_aberration %+v out of range", ca)
	}
	if g := c.Post.GodRays; g.Enabled {
		if g.Decay <= 0 || g.Decay > 1 || g.Density <= 0 || g.Density > 1 || g.Weight < 0 || g.Exposure < 0 {
			return fmt.Errorf("postprocess.god_rays %+v out of range", g)
		}
	}
	if c.Post.Exposure <= 0 {
		return fmt.Errorf("postprocess.exposure %v must be positive", c.Post.Exposure)
	}
	return nil
}

// Level parses LogLevel.
//
// Returns:
//   - slog.Level: the log level
//   - error: an error if LogLevel is not debug, info, warn or error
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// PresentMode maps VSync to the renderer present mode.
func (c Config) PresentMode() renderer.PresentMode {
	if c.VSync {
		return renderer.PresentModeVSync
	}
	return renderer.PresentModeUncapped
}

// Bloom returns the bloom pass parameters.
func (c Config) Bloom() postprocess.BloomConfig {
	b := c.Post.Bloom
	return postprocess.BloomConfig{Strength: b.Strength, Radius: b.Radius, Threshold: b.Threshold}
}

// ChromaticAberration returns the chromatic aberration pass parameters.
func (c Config) ChromaticAberration() postprocess.ChromaticAberrationConfig {
	ca := c.Post.ChromaticAberration
	return postprocess.ChromaticAberrationConfig{
		Amount:      ca.Amount,
		Radial:      ca.Radial,
		StartRadius: ca.StartRadius,
		EndRadius:   ca.EndRadius,
	}
}

// GodRays returns the god rays pass parameters and whether the pass is enabled.
func (c Config) GodRays() (postprocess.GodRaysConfig, bool) {
	g := c.Post.GodRays
	return postprocess.GodRaysConfig{
		Exposure: g.Exposure,
		Decay:    g.Decay,
		Density:  g.Density,
		Weight:   g.Weight,
		ClampMax: g.ClampMax,
	}, g.Enabled
}

// Output returns the output pass parameters.
func (c Config) Output() postprocess.OutputConfig {
	return postprocess.OutputConfig{ToneMapping: c.Post.ToneMapping, Exposure: c.Post.Exposure}
}

// ShaderValidation reports whether material shaders are validated: when asked for, or when
// logging at debug level.
func (c Config) ShaderValidation() bool {
	if c.ValidateShaders {
		return true
	}
	l, err := c.Level()
	return err == nil && l <= slog.LevelDebug
}

// SceneOptions returns the scene manager options for the postprocess chain, the pointer light and
// shader validation.
//
// Returns:
//   - []scene.ManagerBuilderOption: the options
func (c Config) SceneOptions() []scene.ManagerBuilderOption {
	opts := []scene.ManagerBuilderOption{
		scene.WithBloom(c.Bloom()),
		scene.WithChromaticAberration(c.ChromaticAberration()),
		scene.WithOutput(c.Output()),
		scene.WithPointerSmoothing(c.Pointer.Smoothing),
		scene.WithShaderValidation(c.ShaderValidation()),
	}
	if rays, ok := c.GodRays(); ok {
		opts = append(opts, scene.WithGodRays(rays))
	}
	return opts
}
