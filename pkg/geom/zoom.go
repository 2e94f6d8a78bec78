package geom

import "math"

// Bounds limits the camera scale.
type Bounds struct {
	Min float64
	Max float64
}

// DefaultBounds are the zoom limits shared by map and graph canvases.
var DefaultBounds = Bounds{Min: 0.2, Max: 5}

// DefaultZoomStep is the factor applied per wheel notch or toolbar press.
const DefaultZoomStep = 1.2

// Validate reports ErrDegenerateTransform when the bounds cannot hold a
// valid scale.
func (b Bounds) Validate() error {
	if !validScale(b.Min) || !validScale(b.Max) || b.Min > b.Max {
		return ErrDegenerateTransform
	}
	return nil
}

// Clamp limits s to [Min, Max]. Invalid bounds fall back to clamping s to
// MinScale only.
func (b Bounds) Clamp(s float64) float64 {
	s = ClampScale(s)
	if b.Validate() != nil {
		return s
	}
	return math.Max(b.Min, math.Min(b.Max, s))
}

// ZoomAt multiplies the camera scale by factor, clamped to bounds, keeping
// the content point under the screen-space anchor fixed.
func ZoomAt(c Camera, anchor Point, factor float64, b Bounds) Camera {
	c = c.Normalize()
	next := b.Clamp(c.Scale * factor)
	pinned := ToContent(anchor, c)
	return Camera{
		Scale:  next,
		Offset: anchor.Sub(pinned.Mul(next)),
	}
}

// Pan returns c with its offset set so that the pan started at anchor
// follows the pointer: offset = pointer - anchor.
func Pan(c Camera, pointer, anchor Point) Camera {
	c.Offset = pointer.Sub(anchor)
	return c
}

// Rect is an axis-aligned rectangle, Min inclusive, Max exclusive.
type Rect struct {
	Min, Max Point
}

// RectAround returns the square of half-size r centred on p.
func RectAround(p Point, r float64) Rect {
	return Rect{Min: Pt(p.X-r, p.Y-r), Max: Pt(p.X+r, p.Y+r)}
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}
