package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

func newGraph(t *testing.T, typ world.CollectionType) *world.Graph {
	t.Helper()
	g, err := world.NewGraph(world.Collection{ID: "c-1", Type: typ}, world.WithIDs(world.Sequence()))
	require.NoError(t, err)
	return g
}

func newController(t *testing.T, g *world.Graph) *Controller {
	t.Helper()
	return NewController(New(g), Options{})
}

func primary(p geom.Point, target string) PointerEvent {
	return PointerEvent{Position: p, Button: ButtonPrimary, Target: target}
}

func TestLinkScenario(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	a := g.AddNode(world.KindPerson, geom.Pt(0, 0))
	b := g.AddNode(world.KindPerson, geom.Pt(100, 100))
	ctl := newController(t, g)

	down := primary(geom.Pt(0, 0), a)
	down.Modifiers = ModShift
	res := ctl.PointerDown(down)
	require.Equal(t, GestureLink, res.Gesture)
	require.Equal(t, StateLinking, ctl.State())

	ctl.PointerMove(geom.Pt(50, 40))
	assert.Empty(t, g.Edges(), "no mutation before release")
	from, to, ok := ctl.Preview()
	require.True(t, ok)
	assert.Equal(t, geom.Pt(0, 0), from)
	assert.Equal(t, geom.Pt(50, 40), to)

	res = ctl.PointerUp(primary(geom.Pt(100, 100), b))
	require.NoError(t, res.Err)
	require.NotEmpty(t, res.EdgeID)

	edges := g.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, a, edges[0].SourceID)
	assert.Equal(t, b, edges[0].TargetID)
	assert.Equal(t, StateIdle, ctl.State())
	_, _, ok = ctl.Preview()
	assert.False(t, ok)
}

func TestShiftDragOnMapMovesMarker(t *testing.T) {
	g := newGraph(t, world.TypeMap)
	a := g.AddNode(world.KindLocation, geom.Pt(0, 0))
	b := g.AddNode(world.KindLocation, geom.Pt(100, 100))
	ctl := newController(t, g)

	down := primary(geom.Pt(0, 0), a)
	down.Modifiers = ModShift
	res := ctl.PointerDown(down)
	assert.Equal(t, GestureDrag, res.Gesture)
	assert.Equal(t, StateDragging, ctl.State())

	res = ctl.PointerUp(primary(geom.Pt(100, 100), b))
	assert.Empty(t, res.EdgeID)
	assert.Empty(t, g.Edges())
	n, _ := g.Node(a)
	assert.Equal(t, geom.Pt(100, 100), n.Position)
}

func TestLinkReleasedOnEmptyCanvas(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	a := g.AddNode(world.KindPerson, geom.Pt(0, 0))
	g.AddNode(world.KindPerson, geom.Pt(100, 100))
	ctl := newController(t, g)

	down := primary(geom.Pt(0, 0), a)
	down.Modifiers = ModShift
	ctl.PointerDown(down)
	res := ctl.PointerUp(primary(geom.Pt(300, 300), ""))

	assert.Equal(t, GestureLink, res.Gesture)
	assert.Empty(t, res.EdgeID)
	assert.NoError(t, res.Err)
	assert.Empty(t, g.Edges())
}

func TestLinkReleasedOnSourceIsRejected(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	a := g.AddNode(world.KindPerson, geom.Pt(0, 0))
	ctl := newController(t, g)

	down := primary(geom.Pt(0, 0), a)
	down.Modifiers = ModShift
	ctl.PointerDown(down)
	res := ctl.PointerUp(primary(geom.Pt(2, 2), a))

	assert.ErrorIs(t, res.Err, world.ErrSelfLoop)
	assert.Empty(t, g.Edges())
	assert.Equal(t, StateIdle, ctl.State())
}

func TestPanScenario(t *testing.T) {
	ctl := newController(t, newGraph(t, world.TypeMap))

	res := ctl.PointerDown(primary(geom.Pt(50, 50), ""))
	require.Equal(t, GesturePan, res.Gesture)
	ctl.PointerMove(geom.Pt(65, 65))
	ctl.PointerUp(primary(geom.Pt(80, 80), ""))

	cam := ctl.Canvas().Camera()
	assert.Equal(t, geom.Pt(30, 30), cam.Offset)
	assert.Equal(t, 1.0, cam.Scale)
}

func TestPanKeepsContentUnderPointer(t *testing.T) {
	c := New(newGraph(t, world.TypeMap))
	c.SetCamera(geom.Camera{Scale: 2.5, Offset: geom.Pt(-40, 12)})
	ctl := NewController(c, Options{})

	start := geom.Pt(120, 90)
	pinned := c.ToContent(start)
	ctl.PointerDown(primary(start, ""))
	for _, p := range []geom.Point{{X: 130, Y: 80}, {X: 10, Y: 300}, {X: -50, Y: -20}} {
		ctl.PointerMove(p)
		assert.True(t, c.ToContent(p).Near(pinned, 1e-9), "content under %v drifted", p)
	}
	assert.Equal(t, 2.5, c.Camera().Scale)
}

func TestDragScenario(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	id := g.AddNode(world.KindItem, geom.Pt(10, 10))
	other := g.AddNode(world.KindItem, geom.Pt(0, 0))
	e, err := g.AddEdge(id, other, "holds")
	require.NoError(t, err)

	c := New(g)
	c.SetCamera(geom.Camera{Scale: 2, Offset: geom.Pt(5, 5)})
	ctl := NewController(c, Options{})

	res := ctl.PointerDown(primary(c.ToScreen(geom.Pt(10, 10)), id))
	require.Equal(t, GestureDrag, res.Gesture)

	target := geom.Pt(105, 33)
	ctl.PointerMove(target)
	res = ctl.PointerUp(primary(target, ""))

	assert.Equal(t, id, res.NodeID)
	n, _ := g.Node(id)
	assert.Equal(t, c.ToContent(target), n.Position)
	assert.Equal(t, geom.Pt(50, 14), n.Position)

	edge, ok := g.Edge(e)
	require.True(t, ok)
	assert.Equal(t, id, edge.SourceID)
	assert.Equal(t, 2, len(g.Nodes()))
}

func TestDragKeepsGrabOffset(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	id := g.AddNode(world.KindItem, geom.Pt(100, 100))
	ctl := newController(t, g)

	ctl.PointerDown(primary(geom.Pt(104, 97), id))
	ctl.PointerMove(geom.Pt(104, 97))
	n, _ := g.Node(id)
	assert.Equal(t, geom.Pt(100, 100), n.Position, "node must not jump to the pointer")

	ctl.PointerUp(primary(geom.Pt(124, 117), ""))
	n, _ = g.Node(id)
	assert.Equal(t, geom.Pt(120, 120), n.Position)
}

func TestCancelDragRestoresPosition(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	id := g.AddNode(world.KindEvent, geom.Pt(3, 4))
	ctl := newController(t, g)

	ctl.PointerDown(primary(geom.Pt(3, 4), id))
	ctl.PointerMove(geom.Pt(200, 150))
	n, _ := g.Node(id)
	require.Equal(t, geom.Pt(200, 150), n.Position)

	ctl.Cancel()
	n, _ = g.Node(id)
	assert.Equal(t, geom.Pt(3, 4), n.Position)
	assert.Equal(t, StateIdle, ctl.State())
}

func TestCancelPanRestoresOffset(t *testing.T) {
	c := New(newGraph(t, world.TypeMap))
	c.SetCamera(geom.Camera{Scale: 1, Offset: geom.Pt(7, 9)})
	ctl := NewController(c, Options{})

	ctl.PointerDown(primary(geom.Pt(0, 0), ""))
	ctl.PointerMove(geom.Pt(40, 40))
	ctl.Cancel()

	assert.Equal(t, geom.Pt(7, 9), c.Camera().Offset)
}

func TestDragTargetRemovedMidGesture(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	id := g.AddNode(world.KindEvent, geom.Pt(0, 0))
	ctl := newController(t, g)

	ctl.PointerDown(primary(geom.Pt(0, 0), id))
	require.True(t, g.RemoveNode(id))
	ctl.PointerMove(geom.Pt(10, 10))

	assert.Equal(t, StateIdle, ctl.State())
	assert.Empty(t, g.Nodes(), "a vanished node is never recreated")
	assert.Equal(t, Result{}, ctl.PointerUp(primary(geom.Pt(10, 10), "")))
}

func TestCreateOnMap(t *testing.T) {
	g := newGraph(t, world.TypeMap)
	c := New(g)
	c.SetCamera(geom.Camera{Scale: 2, Offset: geom.Pt(10, 20)})
	ctl := NewController(c, Options{})

	res := ctl.PointerDown(PointerEvent{Position: geom.Pt(110, 220), Button: ButtonSecondary})
	require.Equal(t, GestureCreate, res.Gesture)
	require.NotEmpty(t, res.NodeID)
	assert.Equal(t, StateIdle, ctl.State(), "create does not enter a drag state")

	n, ok := g.Node(res.NodeID)
	require.True(t, ok)
	assert.Equal(t, geom.Pt(50, 100), n.Position)
	assert.Equal(t, world.KindLocation, n.Kind)
	assert.Equal(t, Selection{Kind: SelectNode, ID: res.NodeID}, c.Selection())
}

func TestCreateOnGraphUsesConfiguredKind(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	ctl := NewController(New(g), Options{GraphKind: world.KindConcept})

	res := ctl.PointerDown(PointerEvent{Position: geom.Pt(1, 1), Button: ButtonSecondary})
	n, _ := g.Node(res.NodeID)
	assert.Equal(t, world.KindConcept, n.Kind)
}

func TestUnknownTargetIsTreatedAsCanvas(t *testing.T) {
	ctl := newController(t, newGraph(t, world.TypeGraph))
	res := ctl.PointerDown(primary(geom.Pt(0, 0), "n-ghost"))
	assert.Equal(t, GesturePan, res.Gesture)
}

func TestSelectionFollowsGestures(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	id := g.AddNode(world.KindPerson, geom.Pt(0, 0))
	ctl := newController(t, g)
	c := ctl.Canvas()

	ctl.PointerDown(primary(geom.Pt(0, 0), id))
	ctl.PointerUp(primary(geom.Pt(0, 0), id))
	assert.Equal(t, Selection{Kind: SelectNode, ID: id}, c.Selection())

	// pan gesture with movement keeps the selection
	ctl.PointerDown(primary(geom.Pt(50, 50), ""))
	ctl.PointerUp(primary(geom.Pt(60, 60), ""))
	assert.False(t, c.Selection().Empty())

	// plain click on the canvas clears it
	ctl.PointerDown(primary(geom.Pt(50, 50), ""))
	ctl.PointerUp(primary(geom.Pt(50, 50), ""))
	assert.True(t, c.Selection().Empty())
}

func TestActivateResetsCameraAndSelection(t *testing.T) {
	first := newGraph(t, world.TypeMap)
	id := first.AddNode(world.KindLocation, geom.Pt(0, 0))
	ctl := newController(t, first)
	c := ctl.Canvas()

	c.SelectNode(id)
	ctl.Wheel(geom.Pt(30, 30), 2)
	ctl.PointerDown(primary(geom.Pt(1, 1), ""))
	ctl.PointerMove(geom.Pt(90, 90))
	require.NotEqual(t, geom.Identity(), c.Camera())

	second := newGraph(t, world.TypeGraph)
	ctl.Activate(second)

	assert.Equal(t, geom.Identity(), c.Camera())
	assert.True(t, c.Selection().Empty())
	assert.Equal(t, StateIdle, ctl.State())
	assert.Same(t, second, c.Graph())
}

func TestWheelZoomsAroundCursor(t *testing.T) {
	c := New(newGraph(t, world.TypeGraph))
	c.SetCamera(geom.Camera{Scale: 1.3, Offset: geom.Pt(-20, 40)})
	ctl := NewController(c, Options{})

	anchor := geom.Pt(200, 150)
	pinned := c.ToContent(anchor)

	ctl.Wheel(anchor, 3)
	assert.InDelta(t, 1.3*1.2*1.2*1.2, c.Camera().Scale, 1e-9)
	assert.True(t, c.ToContent(anchor).Near(pinned, 1e-9))

	ctl.ZoomOut(anchor)
	assert.True(t, c.ToContent(anchor).Near(pinned, 1e-9))

	ctl.Wheel(anchor, 100)
	assert.Equal(t, geom.DefaultBounds.Max, c.Camera().Scale)
	ctl.Wheel(anchor, -100)
	assert.Equal(t, geom.DefaultBounds.Min, c.Camera().Scale)

	ctl.ResetView()
	assert.Equal(t, geom.Identity(), c.Camera())
}

func TestZoomDuringPanStaysAnchored(t *testing.T) {
	c := New(newGraph(t, world.TypeMap))
	ctl := NewController(c, Options{})

	ctl.PointerDown(primary(geom.Pt(10, 10), ""))
	ctl.PointerMove(geom.Pt(40, 40))
	ctl.ZoomIn(geom.Pt(40, 40))

	pinned := c.ToContent(geom.Pt(40, 40))
	ctl.PointerMove(geom.Pt(90, 20))
	assert.True(t, c.ToContent(geom.Pt(90, 20)).Near(pinned, 1e-9))
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{ZoomStep: 0.5, Bounds: geom.Bounds{Min: 3, Max: 1}}.withDefaults()
	assert.Equal(t, geom.DefaultZoomStep, o.ZoomStep)
	assert.Equal(t, geom.DefaultBounds, o.Bounds)
	assert.Equal(t, DefaultBindings(), o.Bindings)
	assert.Equal(t, float64(DefaultPickRadius), o.PickRadius)
	assert.NotNil(t, o.Logger)
}

func TestPick(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	low := g.AddNode(world.KindPerson, geom.Pt(0, 0))
	top := g.AddNode(world.KindPerson, geom.Pt(5, 0))
	far := g.AddNode(world.KindPerson, geom.Pt(100, 0))
	ctl := newController(t, g)

	id, ok := ctl.Pick(geom.Pt(2, 0))
	require.True(t, ok)
	assert.Equal(t, top, id, "later nodes are drawn on top")

	id, ok = ctl.Pick(geom.Pt(-8, 0))
	require.True(t, ok)
	assert.Equal(t, low, id)

	id, _ = ctl.Pick(geom.Pt(100, 10))
	assert.Equal(t, far, id)

	_, ok = ctl.Pick(geom.Pt(50, 50))
	assert.False(t, ok)
}
