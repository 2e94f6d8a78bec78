package world

import (
	"fmt"

	"github.com/ha1tch/worldcanvas/pkg/geom"
)

// Default labels for newly created entities.
const (
	DefaultNodeLabel   = "New node"
	DefaultMarkerLabel = "New location"
)

// Graph owns the nodes and edges of one collection and is the only way to
// mutate them. Every public operation leaves the collection valid: edges
// always reference live, distinct nodes.
//
// A Graph is owned by a single canvas instance and is not safe for
// concurrent use.
type Graph struct {
	coll     Collection
	newID    IDFunc
	onChange func(Collection)
}

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithIDs sets the id generator. The default is UUID.
func WithIDs(fn IDFunc) GraphOption {
	return func(g *Graph) {
		g.newID = fn
	}
}

// WithOnChange registers a callback that receives a copy of the collection
// after every committed mutation.
func WithOnChange(fn func(Collection)) GraphOption {
	return func(g *Graph) {
		g.onChange = fn
	}
}

// NewGraph takes a copy of c and validates it.
func NewGraph(c Collection, opts ...GraphOption) (*Graph, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("collection %q: %w", c.ID, err)
	}
	g := &Graph{
		coll:  c.Clone(),
		newID: UUID,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// ID returns the collection id.
func (g *Graph) ID() string { return g.coll.ID }

// Type returns the collection type.
func (g *Graph) Type() CollectionType { return g.coll.Type }

// Snapshot returns a deep copy of the collection.
func (g *Graph) Snapshot() Collection {
	return g.coll.Clone()
}

// Nodes returns a copy of the nodes, in drawing order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.coll.Nodes...)
}

// Edges returns a copy of the edges.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.coll.Edges...)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	if i := g.coll.NodeIndex(id); i >= 0 {
		return g.coll.Nodes[i], true
	}
	return Node{}, false
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	if i := g.coll.EdgeIndex(id); i >= 0 {
		return g.coll.Edges[i], true
	}
	return Edge{}, false
}

// HasNode reports whether id names a live node.
func (g *Graph) HasNode(id string) bool {
	return g.coll.NodeIndex(id) >= 0
}

// HasEdge reports whether id names a live edge.
func (g *Graph) HasEdge(id string) bool {
	return g.coll.EdgeIndex(id) >= 0
}

// Validate re-checks the collection invariants.
func (g *Graph) Validate() error {
	return g.coll.Validate()
}

// AddNode appends a node of the given kind at pos and returns its id.
func (g *Graph) AddNode(kind Kind, pos geom.Point) string {
	label := DefaultNodeLabel
	if g.coll.Type == TypeMap {
		label = DefaultMarkerLabel
	}
	n := Node{
		ID:       g.freshID(PrefixNode, g.HasNode),
		Position: pos,
		Label:    label,
		Kind:     kind,
	}
	nodes := append(g.Nodes(), n)
	if err := g.commit(nodes, g.coll.Edges); err != nil {
		// Unreachable: the id is fresh and edges are untouched.
		return ""
	}
	return n.ID
}

// NodePatch holds the fields to change on a node. Nil fields are left
// alone.
type NodePatch struct {
	Label       *string
	Description *string
	Kind        *Kind
	Style       *string
	Position    *geom.Point
}

// UpdateNode applies p to the node. It is a no-op returning false when the
// node does not exist.
func (g *Graph) UpdateNode(id string, p NodePatch) bool {
	i := g.coll.NodeIndex(id)
	if i < 0 {
		return false
	}
	nodes := g.Nodes()
	n := &nodes[i]
	if p.Label != nil {
		n.Label = *p.Label
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Kind != nil {
		n.Kind = *p.Kind
	}
	if p.Style != nil {
		n.Style = *p.Style
	}
	if p.Position != nil {
		n.Position = *p.Position
	}
	return g.commit(nodes, g.coll.Edges) == nil
}

// MoveNode sets the node position. Edges are unaffected.
func (g *Graph) MoveNode(id string, pos geom.Point) bool {
	return g.UpdateNode(id, NodePatch{Position: &pos})
}

// AppendDescription appends text to a node's description. It is the
// completion target for asynchronous text generation: if the node was
// removed in the meantime it returns false and changes nothing.
func (g *Graph) AppendDescription(id, text string) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	desc := n.Description
	if desc != "" && text != "" {
		desc += "\n\n"
	}
	desc += text
	return g.UpdateNode(id, NodePatch{Description: &desc})
}

// RemoveNode deletes the node and every edge that references it.
func (g *Graph) RemoveNode(id string) bool {
	if !g.HasNode(id) {
		return false
	}
	nodes := make([]Node, 0, len(g.coll.Nodes))
	for _, n := range g.coll.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	edges := make([]Edge, 0, len(g.coll.Edges))
	for _, e := range g.coll.Edges {
		if e.SourceID == id || e.TargetID == id {
			continue
		}
		edges = append(edges, e)
	}
	return g.commit(nodes, edges) == nil
}

// AddEdge links source to target. It fails with ErrSelfLoop when they are
// the same node and ErrInvalidReference when either is missing; the edge
// set is unchanged on failure.
func (g *Graph) AddEdge(sourceID, targetID, label string) (string, error) {
	if sourceID == targetID {
		return "", fmt.Errorf("%w: %q", ErrSelfLoop, sourceID)
	}
	if !g.HasNode(sourceID) {
		return "", fmt.Errorf("%w: source %q", ErrInvalidReference, sourceID)
	}
	if !g.HasNode(targetID) {
		return "", fmt.Errorf("%w: target %q", ErrInvalidReference, targetID)
	}
	e := Edge{
		ID:       g.freshID(PrefixEdge, g.HasEdge),
		SourceID: sourceID,
		TargetID: targetID,
		Label:    label,
	}
	edges := append(g.Edges(), e)
	if err := g.commit(g.coll.Nodes, edges); err != nil {
		return "", err
	}
	return e.ID, nil
}

// EdgePatch holds the fields to change on an edge.
type EdgePatch struct {
	Label *string
}

// UpdateEdge applies p to the edge; no-op returning false if absent.
func (g *Graph) UpdateEdge(id string, p EdgePatch) bool {
	i := g.coll.EdgeIndex(id)
	if i < 0 {
		return false
	}
	edges := g.Edges()
	if p.Label != nil {
		edges[i].Label = *p.Label
	}
	return g.commit(g.coll.Nodes, edges) == nil
}

// RemoveEdge deletes the edge.
func (g *Graph) RemoveEdge(id string) bool {
	i := g.coll.EdgeIndex(id)
	if i < 0 {
		return false
	}
	edges := append(g.Edges()[:i:i], g.coll.Edges[i+1:]...)
	return g.commit(g.coll.Nodes, edges) == nil
}

// commit validates the next state and installs it. On error the current
// state is kept.
func (g *Graph) commit(nodes []Node, edges []Edge) error {
	if err := validate(nodes, edges); err != nil {
		return err
	}
	g.coll.Nodes = nodes
	g.coll.Edges = edges
	if g.onChange != nil {
		g.onChange(g.coll.Clone())
	}
	return nil
}

func (g *Graph) freshID(prefix string, taken func(string) bool) string {
	for {
		id := g.newID(prefix)
		if !taken(id) {
			return id
		}
	}
}
