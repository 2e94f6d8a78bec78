package config

import (
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/worldcanvas/pkg/canvas"
	"github.com/ha1tch/worldcanvas/pkg/crop"
	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Canvas.MaxZoom = 8
	cfg.Canvas.LinkModifier = "ctrl"
	cfg.Crop.Lossless = true
	cfg.Log.Level = "debug"
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[crop]\nquality = 95\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 95, cfg.Crop.Quality)
	assert.Equal(t, float64(crop.DefaultDisplayWidth), cfg.Crop.DisplayWidth)
	assert.Equal(t, geom.DefaultBounds.Max, cfg.Canvas.MaxZoom)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[canvas]\nmax_zoom = 3.0\n\n[log]\nlevel = \"warn\"\n"), 0o644))

	t.Setenv("WORLDCANVAS_CANVAS_MAX_ZOOM", "6")
	t.Setenv("WORLDCANVAS_CROP_LOSSLESS", "true")
	t.Setenv("WORLDCANVAS_EDITOR_LOG_FILE", "/tmp/worldedit.log")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6.0, cfg.Canvas.MaxZoom)
	assert.True(t, cfg.Crop.Lossless)
	assert.Equal(t, "/tmp/worldedit.log", cfg.Editor.LogFile)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[canvas\n"), 0o644))
	_, err := Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[crop]\nquality = 0\n"), 0o644))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "quality")

	t.Setenv("WORLDCANVAS_CANVAS_ZOOM_STEP", "fast")
	_, err = Load(filepath.Join(dir, "none.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted zoom", func(c *Config) { c.Canvas.MinZoom, c.Canvas.MaxZoom = 5, 1 }},
		{"zero zoom", func(c *Config) { c.Canvas.MinZoom = 0 }},
		{"zoom step", func(c *Config) { c.Canvas.ZoomStep = 1 }},
		{"pick radius", func(c *Config) { c.Canvas.PickRadius = 0 }},
		{"modifier", func(c *Config) { c.Canvas.LinkModifier = "hyper" }},
		{"button", func(c *Config) { c.Canvas.CreateButton = "fourth" }},
		{"graph kind", func(c *Config) { c.Canvas.GraphKind = "dragon" }},
		{"quality", func(c *Config) { c.Crop.Quality = 101 }},
		{"display width", func(c *Config) { c.Crop.DisplayWidth = 0 }},
		{"background", func(c *Config) { c.Crop.Background = "black" }},
		{"map size", func(c *Config) { c.Editor.MapHeight = -1 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPathUsesXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "worldcanvas", "config.toml"), Path())
}

func TestCanvasOptions(t *testing.T) {
	cfg := Default()
	cfg.Canvas.MinZoom = 0.5
	cfg.Canvas.MaxZoom = 2
	cfg.Canvas.LinkModifier = "alt"
	cfg.Canvas.CreateButton = "middle"
	cfg.Canvas.GraphKind = "concept"

	opts := cfg.CanvasOptions(nil)
	assert.Equal(t, geom.Bounds{Min: 0.5, Max: 2}, opts.Bounds)
	assert.Equal(t, canvas.Bindings{LinkModifier: canvas.ModAlt, CreateButton: canvas.ButtonMiddle}, opts.Bindings)
	assert.Equal(t, world.KindConcept, opts.GraphKind)

	cfg.Canvas.LinkModifier = "none"
	assert.Equal(t, canvas.ModShift, cfg.CanvasOptions(nil).Bindings.LinkModifier)
}

func TestCropOptions(t *testing.T) {
	cfg := Default()
	cfg.Crop.Background = "#ffffff"
	cfg.Crop.Quality = 60

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := cfg.CropOptions(logger)
	require.NoError(t, opts.Validate())
	assert.Equal(t, 60, opts.Quality)
	assert.Same(t, logger, opts.Logger)

	r, g, b, _ := opts.Background.RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})

	cfg.Crop.Background = "#000000"
	assert.Equal(t, color.Gray{Y: 0}, color.GrayModel.Convert(cfg.CropOptions(nil).Background))
}

func TestLevel(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}
