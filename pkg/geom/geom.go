// Package geom provides the coordinate algebra shared by every canvas:
// points, the pan/zoom camera, and the mapping between screen space and
// content space.
package geom

import (
	"errors"
	"math"
)

// MinScale is the smallest scale a camera is ever evaluated with.
// Non-positive, NaN and infinite scales are clamped to it.
const MinScale = 1e-6

// ErrDegenerateTransform reports a camera whose scale is not a finite
// positive number. Transform functions clamp instead of failing; Validate
// exposes the condition to callers that need to know.
var ErrDegenerateTransform = errors.New("geom: degenerate transform")

// Point is a 2D coordinate. Content-space points are unbounded and not
// tied to pixel density.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

// Div returns p divided by k.
func (p Point) Div(k float64) Point {
	return Point{p.X / k, p.Y / k}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Near reports whether p and q are within eps on both axes.
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Camera is the pan/zoom state of one canvas instance.
type Camera struct {
	Scale  float64
	Offset Point
}

// Identity returns the reset camera: scale 1, no offset.
func Identity() Camera {
	return Camera{Scale: 1}
}

// Validate returns ErrDegenerateTransform if the scale is unusable.
func (c Camera) Validate() error {
	if !validScale(c.Scale) {
		return ErrDegenerateTransform
	}
	return nil
}

// Normalize returns c with its scale clamped to MinScale when invalid.
func (c Camera) Normalize() Camera {
	c.Scale = ClampScale(c.Scale)
	return c
}

// ClampScale returns s, or MinScale when s is not a finite value above it.
func ClampScale(s float64) float64 {
	if !validScale(s) {
		return MinScale
	}
	return s
}

func validScale(s float64) bool {
	return s >= MinScale && !math.IsNaN(s) && !math.IsInf(s, 0)
}

// ToContent maps a screen point into content space.
func ToContent(screen Point, c Camera) Point {
	c = c.Normalize()
	return screen.Sub(c.Offset).Div(c.Scale)
}

// ToScreen maps a content point into screen space.
func ToScreen(content Point, c Camera) Point {
	c = c.Normalize()
	return content.Mul(c.Scale).Add(c.Offset)
}
