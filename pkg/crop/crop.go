// Package crop turns a decoded source image plus a live crop frame (pan,
// zoom and output size) into a finished raster. The same frame always
// produces the same bytes.
package crop

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"

	"golang.org/x/image/draw"

	"github.com/ha1tch/worldcanvas/pkg/geom"
)

var (
	// ErrImageDecode is returned when the source cannot be decoded.
	ErrImageDecode = errors.New("crop: image decode failed")

	// ErrRasterEncode is returned when the output cannot be encoded.
	// No partial raster accompanies it.
	ErrRasterEncode = errors.New("crop: raster encode failed")

	// ErrInvalidFrame is returned for non-positive or oversized output
	// dimensions.
	ErrInvalidFrame = errors.New("crop: invalid frame")

	// ErrNotLoaded is returned when an operation needs a source image and
	// none has been loaded.
	ErrNotLoaded = errors.New("crop: no image loaded")

	// ErrUnknownPreset is returned by ApplyPreset for unknown names.
	ErrUnknownPreset = errors.New("crop: unknown preset")
)

// Limits and defaults.
const (
	MaxOriginalDimension = 1200
	MaxOutputDimension   = 8192

	DefaultWidth        = 800
	DefaultHeight       = 600
	DefaultDisplayWidth = 400
	DefaultQuality      = 80

	MinEditScale = 0.1
	MaxEditScale = 4
)

// Frame is the crop state: output size in pixels, the user's zoom factor
// and the pan offset in display space.
type Frame struct {
	OutputWidth  int
	OutputHeight int
	Scale        float64
	Pan          geom.Point
}

// DefaultFrame is 800x600 at scale 1 with no pan.
func DefaultFrame() Frame {
	return Frame{OutputWidth: DefaultWidth, OutputHeight: DefaultHeight, Scale: 1}
}

// Validate checks the output dimensions.
func (f Frame) Validate() error {
	if f.OutputWidth <= 0 || f.OutputHeight <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidFrame, f.OutputWidth, f.OutputHeight)
	}
	if f.OutputWidth > MaxOutputDimension || f.OutputHeight > MaxOutputDimension {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrInvalidFrame, f.OutputWidth, f.OutputHeight, MaxOutputDimension)
	}
	return nil
}

// DisplaySize returns the size of the live viewport that shows f at the
// given display width. Frames without a usable aspect show at 4:3.
func DisplaySize(f Frame, displayWidth float64) (w, h float64) {
	if f.OutputWidth <= 0 || f.OutputHeight <= 0 {
		return displayWidth, displayWidth * 3 / 4
	}
	return displayWidth, displayWidth * float64(f.OutputHeight) / float64(f.OutputWidth)
}

// Options controls rasterization and encoding. Zero fields take defaults.
type Options struct {
	// DisplayWidth is the width of the live viewport the pan was
	// expressed in.
	DisplayWidth float64
	Quality      int // JPEG quality, 1..100
	Lossless     bool
	Background   color.Color
	Interpolator draw.Interpolator
	Logger       *slog.Logger
}

// DefaultOptions returns 400px display width, JPEG quality 80, black
// background and Catmull-Rom resampling.
func DefaultOptions() Options {
	return Options{
		DisplayWidth: DefaultDisplayWidth,
		Quality:      DefaultQuality,
		Background:   color.Black,
		Interpolator: draw.CatmullRom,
	}
}

// Validate checks option ranges. Zero values are valid and mean default.
func (o Options) Validate() error {
	if o.Quality < 0 || o.Quality > 100 {
		return fmt.Errorf("crop: quality %d out of range 1..100", o.Quality)
	}
	if o.DisplayWidth < 0 || math.IsNaN(o.DisplayWidth) || math.IsInf(o.DisplayWidth, 0) {
		return fmt.Errorf("crop: display width %v must be positive", o.DisplayWidth)
	}
	return nil
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if !(o.DisplayWidth > 0) || math.IsInf(o.DisplayWidth, 0) {
		o.DisplayWidth = d.DisplayWidth
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = d.Quality
	}
	if o.Background == nil {
		o.Background = d.Background
	}
	if o.Interpolator == nil {
		o.Interpolator = d.Interpolator
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Preset names a frame shape.
type Preset string

const (
	PresetSquare   Preset = "1:1"
	PresetClassic  Preset = "4:3"
	PresetWide     Preset = "16:9"
	PresetOriginal Preset = "original"
)

// Presets lists the presets in menu order.
var Presets = []Preset{PresetSquare, PresetClassic, PresetWide, PresetOriginal}

// ApplyPreset returns the output size for p. The ratio presets keep width
// and derive the height; original uses the natural image size, shrunk to
// fit MaxOriginalDimension on both axes.
func ApplyPreset(p Preset, width int, natural image.Point) (int, int, error) {
	if p != PresetOriginal && width <= 0 {
		return 0, 0, fmt.Errorf("%w: width %d", ErrInvalidFrame, width)
	}
	w := float64(width)
	switch p {
	case PresetSquare:
		return width, width, nil
	case PresetClassic:
		return width, int(math.Round(w * 3 / 4)), nil
	case PresetWide:
		return width, int(math.Round(w * 9 / 16)), nil
	case PresetOriginal:
		if natural.X <= 0 || natural.Y <= 0 {
			return 0, 0, ErrNotLoaded
		}
		nw, nh := float64(natural.X), float64(natural.Y)
		if nw <= MaxOriginalDimension && nh <= MaxOriginalDimension {
			return natural.X, natural.Y, nil
		}
		ratio := math.Min(MaxOriginalDimension/nw, MaxOriginalDimension/nh)
		return int(math.Round(nw * ratio)), int(math.Round(nh * ratio)), nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrUnknownPreset, p)
}
