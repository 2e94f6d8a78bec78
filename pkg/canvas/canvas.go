package canvas

import (
	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

// SelectionKind tells what a Selection points at.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectNode
	SelectEdge
)

// Selection is at most one selected node or edge.
type Selection struct {
	Kind SelectionKind
	ID   string
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return s.Kind == SelectNone
}

// Canvas is the state of one canvas instance: the active collection, the
// camera and the selection. The camera and selection are view state only
// and are never written back to the collection.
type Canvas struct {
	graph     *world.Graph
	camera    geom.Camera
	selection Selection
}

// New returns a canvas showing g, which may be nil.
func New(g *world.Graph) *Canvas {
	return &Canvas{graph: g, camera: geom.Identity()}
}

// Activate switches to another collection. The camera is reset to identity
// and the selection is cleared, even when g is the current graph.
func (c *Canvas) Activate(g *world.Graph) {
	c.graph = g
	c.camera = geom.Identity()
	c.selection = Selection{}
}

// Graph returns the active collection, or nil.
func (c *Canvas) Graph() *world.Graph { return c.graph }

// Camera returns the current camera.
func (c *Canvas) Camera() geom.Camera { return c.camera }

// SetCamera replaces the camera. Degenerate scales are clamped.
func (c *Canvas) SetCamera(cam geom.Camera) {
	c.camera = cam.Normalize()
}

// Selection returns the current selection. A selection whose entity no
// longer exists is cleared and reported as empty.
func (c *Canvas) Selection() Selection {
	if !c.selectionLive() {
		c.selection = Selection{}
	}
	return c.selection
}

// SelectNode selects a node; unknown ids clear the selection.
func (c *Canvas) SelectNode(id string) {
	c.selection = Selection{Kind: SelectNode, ID: id}
	if !c.selectionLive() {
		c.selection = Selection{}
	}
}

// SelectEdge selects an edge; unknown ids clear the selection.
func (c *Canvas) SelectEdge(id string) {
	c.selection = Selection{Kind: SelectEdge, ID: id}
	if !c.selectionLive() {
		c.selection = Selection{}
	}
}

// ClearSelection deselects.
func (c *Canvas) ClearSelection() {
	c.selection = Selection{}
}

func (c *Canvas) selectionLive() bool {
	if c.graph == nil {
		return false
	}
	switch c.selection.Kind {
	case SelectNode:
		return c.graph.HasNode(c.selection.ID)
	case SelectEdge:
		return c.graph.HasEdge(c.selection.ID)
	}
	return false
}

// ToContent converts a screen point with the current camera.
func (c *Canvas) ToContent(p geom.Point) geom.Point {
	return geom.ToContent(p, c.camera)
}

// ToScreen converts a content point with the current camera.
func (c *Canvas) ToScreen(p geom.Point) geom.Point {
	return geom.ToScreen(p, c.camera)
}

// Pick returns the topmost node whose position lies within radius screen
// pixels of p.
func (c *Canvas) Pick(p geom.Point, radius float64) (string, bool) {
	if c.graph == nil {
		return "", false
	}
	nodes := c.graph.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		s := c.ToScreen(nodes[i].Position)
		if s.Dist(p) <= radius {
			return nodes[i].ID, true
		}
	}
	return "", false
}
