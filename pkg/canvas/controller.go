package canvas

import (
	"io"
	"log/slog"
	"math"

	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

// State is the interaction state of a Controller.
type State int

const (
	StateIdle State = iota
	StatePanning
	StateDragging
	StateLinking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePanning:
		return "panning"
	case StateDragging:
		return "dragging"
	case StateLinking:
		return "linking"
	}
	return "unknown"
}

// DefaultPickRadius is the hit radius used by Pick, in screen pixels.
const DefaultPickRadius = 12

// Options configures a Controller. Zero fields take defaults.
type Options struct {
	Bindings   Bindings
	Bounds     geom.Bounds
	ZoomStep   float64
	PickRadius float64

	// GraphKind is the kind given to nodes created on a graph canvas.
	// Nodes created on a map are always locations.
	GraphKind world.Kind

	Logger *slog.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Bindings:   DefaultBindings(),
		Bounds:     geom.DefaultBounds,
		ZoomStep:   geom.DefaultZoomStep,
		PickRadius: DefaultPickRadius,
		GraphKind:  world.KindPerson,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Bindings == (Bindings{}) {
		o.Bindings = d.Bindings
	}
	if o.Bounds.Validate() != nil {
		o.Bounds = d.Bounds
	}
	if !(o.ZoomStep > 1) || math.IsInf(o.ZoomStep, 0) {
		o.ZoomStep = d.ZoomStep
	}
	if !(o.PickRadius > 0) {
		o.PickRadius = d.PickRadius
	}
	if !o.GraphKind.Valid() {
		o.GraphKind = d.GraphKind
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Result reports what a completed gesture did. NodeID is the created or
// dragged node, EdgeID the created edge. Err holds a model failure that
// aborted the gesture; the model is unchanged in that case.
type Result struct {
	Gesture GestureKind
	NodeID  string
	EdgeID  string
	Err     error
}

// Controller executes pointer gestures against a Canvas. It never draws;
// hosts read the canvas state and Preview after each event.
type Controller struct {
	canvas *Canvas
	opts   Options
	log    *slog.Logger

	state   State
	pointer geom.Point // last screen position seen

	// panning
	panAnchor geom.Point // pointer - offset at pointer-down
	panFrom   geom.Point
	panStart  geom.Point
	moved     bool

	// dragging
	dragID     string
	dragOffset geom.Point // content space
	dragFrom   geom.Point

	// linking
	linkFrom string
}

// NewController returns a controller bound to c.
func NewController(c *Canvas, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		canvas: c,
		opts:   opts,
		log:    opts.Logger,
	}
}

// Canvas returns the controlled canvas.
func (c *Controller) Canvas() *Canvas { return c.canvas }

// State returns the current interaction state.
func (c *Controller) State() State { return c.state }

// Activate switches the canvas to another collection. Any gesture in
// progress is dropped without touching the previous collection.
func (c *Controller) Activate(g *world.Graph) {
	c.reset()
	c.canvas.Activate(g)
}

// PointerDown classifies and starts a gesture. A create gesture completes
// immediately and its Result is returned; the other gestures return a
// Result with only Gesture set. Presses while a gesture is active are
// ignored.
func (c *Controller) PointerDown(ev PointerEvent) Result {
	if c.state != StateIdle {
		return Result{}
	}
	g := c.canvas.Graph()
	c.pointer = ev.Position

	target := ev.Target
	if target != "" && (g == nil || !g.HasNode(target)) {
		target = ""
	}
	kind := Classify(target, ev.Button, ev.Modifiers, c.opts.Bindings)
	if kind == GestureLink && g.Type() == world.TypeMap {
		// maps carry no edges
		kind = GestureDrag
	}

	switch kind {
	case GestureLink:
		c.state = StateLinking
		c.linkFrom = target
		c.canvas.SelectNode(target)

	case GestureDrag:
		n, _ := g.Node(target)
		c.state = StateDragging
		c.dragID = target
		c.dragFrom = n.Position
		c.dragOffset = c.canvas.ToContent(ev.Position).Sub(n.Position)
		c.canvas.SelectNode(target)

	case GestureCreate:
		if g == nil {
			return Result{}
		}
		nodeKind := c.opts.GraphKind
		if g.Type() == world.TypeMap {
			nodeKind = world.KindLocation
		}
		id := g.AddNode(nodeKind, c.canvas.ToContent(ev.Position))
		c.canvas.SelectNode(id)
		c.log.Debug("node created", "collection", g.ID(), "node", id)
		return Result{Gesture: GestureCreate, NodeID: id}

	case GesturePan:
		cam := c.canvas.Camera()
		c.state = StatePanning
		c.panFrom = cam.Offset
		c.panStart = ev.Position
		c.panAnchor = ev.Position.Sub(cam.Offset)
		c.moved = false
	}

	c.log.Debug("gesture start", "gesture", kind, "target", target)
	return Result{Gesture: kind}
}

// PointerMove advances the active gesture.
func (c *Controller) PointerMove(p geom.Point) {
	c.pointer = p
	switch c.state {
	case StatePanning:
		if p != c.panStart {
			c.moved = true
		}
		c.canvas.SetCamera(geom.Pan(c.canvas.Camera(), p, c.panAnchor))

	case StateDragging:
		g := c.canvas.Graph()
		pos := c.canvas.ToContent(p).Sub(c.dragOffset)
		if g == nil || !g.MoveNode(c.dragID, pos) {
			c.log.Debug("drag target vanished", "node", c.dragID)
			c.reset()
		}
	}
}

// PointerUp completes the active gesture. Releasing a link over a second
// node creates one edge; releasing anywhere else drops it.
func (c *Controller) PointerUp(ev PointerEvent) Result {
	if c.state == StateIdle {
		return Result{}
	}
	c.PointerMove(ev.Position)

	var res Result
	switch c.state {
	case StatePanning:
		res = Result{Gesture: GesturePan}
		if !c.moved && ev.Button == ButtonPrimary {
			c.canvas.ClearSelection()
		}

	case StateDragging:
		res = Result{Gesture: GestureDrag, NodeID: c.dragID}

	case StateLinking:
		res = c.finishLink(ev.Target)
	}

	c.reset()
	return res
}

func (c *Controller) finishLink(target string) Result {
	res := Result{Gesture: GestureLink}
	g := c.canvas.Graph()
	if target == "" || g == nil {
		c.log.Debug("link dropped", "source", c.linkFrom)
		return res
	}
	id, err := g.AddEdge(c.linkFrom, target, "")
	if err != nil {
		c.log.Debug("link rejected", "source", c.linkFrom, "target", target, "err", err)
		res.Err = err
		return res
	}
	c.log.Debug("edge created", "edge", id, "source", c.linkFrom, "target", target)
	res.EdgeID = id
	return res
}

// Cancel aborts the active gesture. A drag puts the node back where it
// started and a pan restores the previous offset.
func (c *Controller) Cancel() {
	switch c.state {
	case StatePanning:
		cam := c.canvas.Camera()
		cam.Offset = c.panFrom
		c.canvas.SetCamera(cam)
	case StateDragging:
		if g := c.canvas.Graph(); g != nil {
			g.MoveNode(c.dragID, c.dragFrom)
		}
	}
	if c.state != StateIdle {
		c.log.Debug("gesture cancelled", "state", c.state)
	}
	c.reset()
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.dragID = ""
	c.linkFrom = ""
	c.moved = false
}

// Wheel zooms by ZoomStep^steps around anchor. Positive steps zoom in.
// It may be used in any state.
func (c *Controller) Wheel(anchor geom.Point, steps float64) {
	c.zoom(anchor, math.Pow(c.opts.ZoomStep, steps))
}

// ZoomIn zooms one step in around anchor.
func (c *Controller) ZoomIn(anchor geom.Point) {
	c.zoom(anchor, c.opts.ZoomStep)
}

// ZoomOut zooms one step out around anchor.
func (c *Controller) ZoomOut(anchor geom.Point) {
	c.zoom(anchor, 1/c.opts.ZoomStep)
}

func (c *Controller) zoom(anchor geom.Point, factor float64) {
	cam := geom.ZoomAt(c.canvas.Camera(), anchor, factor, c.opts.Bounds)
	c.canvas.SetCamera(cam)
	if c.state == StatePanning {
		// keep the pan anchored to the rescaled content
		c.panAnchor = c.pointer.Sub(cam.Offset)
	}
}

// ResetView restores the identity camera.
func (c *Controller) ResetView() {
	c.canvas.SetCamera(geom.Identity())
	if c.state == StatePanning {
		c.panAnchor = c.pointer
	}
}

// Preview returns the transient link line, in content space, while
// linking: from the source node to the live pointer.
func (c *Controller) Preview() (from, to geom.Point, ok bool) {
	if c.state != StateLinking {
		return geom.Point{}, geom.Point{}, false
	}
	g := c.canvas.Graph()
	if g == nil {
		return geom.Point{}, geom.Point{}, false
	}
	n, found := g.Node(c.linkFrom)
	if !found {
		return geom.Point{}, geom.Point{}, false
	}
	return n.Position, c.canvas.ToContent(c.pointer), true
}

// Pick returns the node under the screen point p using the configured
// pick radius.
func (c *Controller) Pick(p geom.Point) (string, bool) {
	return c.canvas.Pick(p, c.opts.PickRadius)
}
