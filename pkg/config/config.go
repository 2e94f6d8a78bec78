// Package config loads worldcanvas settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/ha1tch/worldcanvas/pkg/canvas"
	"github.com/ha1tch/worldcanvas/pkg/crop"
	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

// EnvPrefix prefixes every environment override, e.g.
// WORLDCANVAS_CANVAS_MAX_ZOOM.
const EnvPrefix = "WORLDCANVAS_"

// Config holds worldcanvas configuration.
type Config struct {
	Canvas CanvasConfig `toml:"canvas" envPrefix:"CANVAS_"`
	Crop   CropConfig   `toml:"crop" envPrefix:"CROP_"`
	Editor EditorConfig `toml:"editor" envPrefix:"EDITOR_"`
	Log    LogConfig    `toml:"log" envPrefix:"LOG_"`
}

// CanvasConfig controls pan, zoom and gesture bindings.
type CanvasConfig struct {
	MinZoom      float64 `toml:"min_zoom" env:"MIN_ZOOM"`
	MaxZoom      float64 `toml:"max_zoom" env:"MAX_ZOOM"`
	ZoomStep     float64 `toml:"zoom_step" env:"ZOOM_STEP"`
	PickRadius   float64 `toml:"pick_radius" env:"PICK_RADIUS"`
	LinkModifier string  `toml:"link_modifier" env:"LINK_MODIFIER"` // "shift", "ctrl", "alt", "meta"
	CreateButton string  `toml:"create_button" env:"CREATE_BUTTON"` // "secondary", "middle"
	GraphKind    string  `toml:"graph_kind" env:"GRAPH_KIND"`
}

// CropConfig controls the background crop pipeline.
type CropConfig struct {
	DisplayWidth float64 `toml:"display_width" env:"DISPLAY_WIDTH"`
	Quality      int     `toml:"quality" env:"QUALITY"`
	Lossless     bool    `toml:"lossless" env:"LOSSLESS"`
	Background   string  `toml:"background" env:"BACKGROUND"`
}

// EditorConfig controls the terminal editor.
type EditorConfig struct {
	MapWidth  int    `toml:"map_width" env:"MAP_WIDTH"`
	MapHeight int    `toml:"map_height" env:"MAP_HEIGHT"`
	LogFile   string `toml:"log_file" env:"LOG_FILE"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level string `toml:"level" env:"LEVEL"` // debug, info, warn, error
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			MinZoom:      geom.DefaultBounds.Min,
			MaxZoom:      geom.DefaultBounds.Max,
			ZoomStep:     geom.DefaultZoomStep,
			PickRadius:   canvas.DefaultPickRadius,
			LinkModifier: "shift",
			CreateButton: "secondary",
			GraphKind:    string(world.KindPerson),
		},
		Crop: CropConfig{
			DisplayWidth: crop.DefaultDisplayWidth,
			Quality:      crop.DefaultQuality,
			Background:   "#000000",
		},
		Editor: EditorConfig{
			MapWidth:  world.DefaultMapWidth,
			MapHeight: world.DefaultMapHeight,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Dir returns the worldcanvas config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "worldcanvas")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path, creating its directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if err := c.bounds().Validate(); err != nil {
		return fmt.Errorf("config: canvas zoom: %w", err)
	}
	if c.Canvas.ZoomStep <= 1 {
		return fmt.Errorf("config: canvas zoom_step %v must be greater than 1", c.Canvas.ZoomStep)
	}
	if c.Canvas.PickRadius <= 0 {
		return fmt.Errorf("config: canvas pick_radius %v must be positive", c.Canvas.PickRadius)
	}
	if _, err := canvas.ParseModifiers(c.Canvas.LinkModifier); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := canvas.ParseButton(c.Canvas.CreateButton); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !world.Kind(c.Canvas.GraphKind).Valid() {
		return fmt.Errorf("config: canvas graph_kind %q is not a node kind", c.Canvas.GraphKind)
	}

	if c.Crop.Quality < 1 || c.Crop.Quality > 100 {
		return fmt.Errorf("config: crop quality %d out of range 1..100", c.Crop.Quality)
	}
	if c.Crop.DisplayWidth <= 0 {
		return fmt.Errorf("config: crop display_width %v must be positive", c.Crop.DisplayWidth)
	}
	if _, ok := world.ParseColor(c.Crop.Background); !ok {
		return fmt.Errorf("config: crop background %q is not a colour", c.Crop.Background)
	}

	if c.Editor.MapWidth <= 0 || c.Editor.MapHeight <= 0 {
		return fmt.Errorf("config: editor map size %dx%d must be positive", c.Editor.MapWidth, c.Editor.MapHeight)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) bounds() geom.Bounds {
	return geom.Bounds{Min: c.Canvas.MinZoom, Max: c.Canvas.MaxZoom}
}

// Level returns the configured slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}

// CanvasOptions converts the canvas section to controller options.
// Invalid names fall back to the defaults; call Validate to catch them.
func (c *Config) CanvasOptions(logger *slog.Logger) canvas.Options {
	opts := canvas.DefaultOptions()
	opts.Bounds = c.bounds()
	opts.ZoomStep = c.Canvas.ZoomStep
	opts.PickRadius = c.Canvas.PickRadius
	if mods, err := canvas.ParseModifiers(c.Canvas.LinkModifier); err == nil && mods != canvas.ModNone {
		opts.Bindings.LinkModifier = mods
	}
	if b, err := canvas.ParseButton(c.Canvas.CreateButton); err == nil {
		opts.Bindings.CreateButton = b
	}
	if k := world.Kind(c.Canvas.GraphKind); k.Valid() {
		opts.GraphKind = k
	}
	opts.Logger = logger
	return opts
}

// CropOptions converts the crop section to raster options.
func (c *Config) CropOptions(logger *slog.Logger) crop.Options {
	opts := crop.DefaultOptions()
	opts.DisplayWidth = c.Crop.DisplayWidth
	opts.Quality = c.Crop.Quality
	opts.Lossless = c.Crop.Lossless
	if bg, ok := world.ParseColor(c.Crop.Background); ok {
		opts.Background = bg
	}
	opts.Logger = logger
	return opts
}
