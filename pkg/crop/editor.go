package crop

import (
	"errors"
	"image"
	"math"

	"github.com/ha1tch/worldcanvas/pkg/geom"
)

// FallbackSize replaces a non-positive custom width or height.
const FallbackSize = 100

// Editor holds the live state of one crop session: the frame being
// edited, the loaded source and the pan gesture. It is driven from a
// single event loop.
type Editor struct {
	opts   Options
	frame  Frame
	preset Preset // empty for a custom size

	src     image.Image
	natural image.Point

	dragging  bool
	dragStart geom.Point // pointer - pan at pointer-down
}

// NewEditor starts a session with frame f. A zero frame means
// DefaultFrame.
func NewEditor(f Frame, opts Options) *Editor {
	if f == (Frame{}) {
		f = DefaultFrame()
	}
	if f.Scale == 0 {
		f.Scale = 1
	}
	return &Editor{opts: opts.withDefaults(), frame: f}
}

// Frame returns the current frame.
func (e *Editor) Frame() Frame { return e.frame }

// Preset returns the active preset, empty for a custom size.
func (e *Editor) Preset() Preset { return e.preset }

// Loaded reports whether a source image is present.
func (e *Editor) Loaded() bool { return e.src != nil }

// Source returns the loaded image, or nil.
func (e *Editor) Source() image.Image { return e.src }

// Load installs a decoded source. Pan and scale are reset; an active
// original preset is re-applied to the new natural size.
func (e *Editor) Load(img image.Image) {
	e.src = img
	e.natural = image.Point{}
	if img != nil {
		b := img.Bounds()
		e.natural = image.Pt(b.Dx(), b.Dy())
	}
	e.dragging = false
	e.Reset()
	if e.preset == PresetOriginal {
		_ = e.SetPreset(PresetOriginal)
	}
	e.opts.Logger.Debug("crop source loaded", "width", e.natural.X, "height", e.natural.Y)
}

// SetPreset applies p to the frame and resets pan and scale. The original
// preset without a loaded image keeps the current size and applies once
// an image is loaded.
func (e *Editor) SetPreset(p Preset) error {
	w, h, err := ApplyPreset(p, e.frame.OutputWidth, e.natural)
	switch {
	case errors.Is(err, ErrNotLoaded):
		w, h = e.frame.OutputWidth, e.frame.OutputHeight
	case err != nil:
		return err
	}
	e.preset = p
	e.frame.OutputWidth = w
	e.frame.OutputHeight = h
	e.Reset()
	return nil
}

// SetSize sets a custom output size. Non-positive values become
// FallbackSize.
func (e *Editor) SetSize(w, h int) {
	if w <= 0 {
		w = FallbackSize
	}
	if h <= 0 {
		h = FallbackSize
	}
	e.preset = ""
	e.frame.OutputWidth = w
	e.frame.OutputHeight = h
}

// Swap exchanges output width and height.
func (e *Editor) Swap() {
	e.frame.OutputWidth, e.frame.OutputHeight = e.frame.OutputHeight, e.frame.OutputWidth
}

// SetScale sets the zoom slider, clamped to [MinEditScale, MaxEditScale].
func (e *Editor) SetScale(s float64) {
	if math.IsNaN(s) {
		s = 1
	}
	e.frame.Scale = math.Max(MinEditScale, math.Min(MaxEditScale, s))
}

// Reset restores scale 1 and zero pan.
func (e *Editor) Reset() {
	e.frame.Scale = 1
	e.frame.Pan = geom.Point{}
}

// PointerDown starts panning the image. It is ignored until an image is
// loaded.
func (e *Editor) PointerDown(p geom.Point) {
	if !e.Loaded() {
		return
	}
	e.dragging = true
	e.dragStart = p.Sub(e.frame.Pan)
}

// PointerMove pans while the pointer is held.
func (e *Editor) PointerMove(p geom.Point) {
	if !e.dragging || !e.Loaded() {
		return
	}
	e.frame.Pan = p.Sub(e.dragStart)
}

// PointerUp ends the pan. Leaving the viewport ends it too.
func (e *Editor) PointerUp() {
	e.dragging = false
}

// DisplaySize is the live viewport size for the current frame.
func (e *Editor) DisplaySize() (w, h float64) {
	return DisplaySize(e.frame, e.opts.DisplayWidth)
}

// Confirm renders the final raster.
func (e *Editor) Confirm() (Raster, error) {
	if !e.Loaded() {
		return Raster{}, ErrNotLoaded
	}
	return Render(e.src, e.frame, e.opts)
}
