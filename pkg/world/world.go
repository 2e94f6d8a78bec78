// Package world provides the spatial collections of a fictional world
// (maps with markers, relation graphs with nodes and edges) and the
// operations that keep their references consistent.
package world

import (
	"errors"
	"fmt"

	"github.com/ha1tch/worldcanvas/pkg/geom"
)

var (
	// ErrInvalidReference is returned when an edge names a node that is
	// not in the collection.
	ErrInvalidReference = errors.New("world: invalid node reference")

	// ErrSelfLoop is returned when an edge would connect a node to itself.
	ErrSelfLoop = errors.New("world: self-loop edge")

	// ErrDuplicateID is returned when two nodes or two edges share an id.
	ErrDuplicateID = errors.New("world: duplicate id")
)

// Kind classifies a node.
type Kind string

const (
	KindPerson   Kind = "person"
	KindItem     Kind = "item"
	KindEvent    Kind = "event"
	KindConcept  Kind = "concept"
	KindLocation Kind = "location" // map markers
)

// Kinds lists the known node kinds in menu order.
var Kinds = []Kind{KindPerson, KindItem, KindEvent, KindConcept, KindLocation}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// CollectionType distinguishes maps from graphs.
type CollectionType string

const (
	TypeMap   CollectionType = "map"
	TypeGraph CollectionType = "graph"
)

// Node is a marker on a map or a node in a graph.
type Node struct {
	ID          string     `json:"id" yaml:"id"`
	Position    geom.Point `json:"position" yaml:"position"`
	Label       string     `json:"label" yaml:"label"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        Kind       `json:"kind" yaml:"kind"`
	Style       string     `json:"style,omitempty" yaml:"style,omitempty"` // #rrggbb, empty = derived from kind
}

// Color returns the node's display colour.
func (n Node) Color() string {
	if n.Style != "" {
		return n.Style
	}
	return KindColor(n.Kind)
}

// Edge links two nodes of the same collection.
type Edge struct {
	ID       string `json:"id" yaml:"id"`
	SourceID string `json:"sourceId" yaml:"sourceId"`
	TargetID string `json:"targetId" yaml:"targetId"`
	Label    string `json:"label" yaml:"label"`
}

// Collection is a map or a graph: the nodes and edges shown on one canvas.
type Collection struct {
	ID         string         `json:"id" yaml:"id"`
	Name       string         `json:"name" yaml:"name"`
	Type       CollectionType `json:"type" yaml:"type"`
	Width      int            `json:"width,omitempty" yaml:"width,omitempty"`
	Height     int            `json:"height,omitempty" yaml:"height,omitempty"`
	Color      string         `json:"color,omitempty" yaml:"color,omitempty"`
	Background string         `json:"backgroundImage,omitempty" yaml:"backgroundImage,omitempty"`
	Nodes      []Node         `json:"nodes" yaml:"nodes"`
	Edges      []Edge         `json:"edges" yaml:"edges"`
}

// Clone returns a deep copy of c.
func (c Collection) Clone() Collection {
	out := c
	out.Nodes = append(make([]Node, 0, len(c.Nodes)), c.Nodes...)
	out.Edges = append(make([]Edge, 0, len(c.Edges)), c.Edges...)
	return out
}

// NodeIndex returns the index of the node with the given id, or -1.
func (c *Collection) NodeIndex(id string) int {
	for i, n := range c.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// EdgeIndex returns the index of the edge with the given id, or -1.
func (c *Collection) EdgeIndex(id string) int {
	for i, e := range c.Edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks id uniqueness and that every edge references live,
// distinct nodes.
func (c *Collection) Validate() error {
	return validate(c.Nodes, c.Edges)
}

func validate(nodes []Node, edges []Edge) error {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if ids[n.ID] {
			return fmt.Errorf("%w: node %q", ErrDuplicateID, n.ID)
		}
		ids[n.ID] = true
	}

	seen := make(map[string]bool, len(edges))
	for _, e := range edges {
		if seen[e.ID] {
			return fmt.Errorf("%w: edge %q", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = true

		if !ids[e.SourceID] {
			return fmt.Errorf("%w: edge %q source %q", ErrInvalidReference, e.ID, e.SourceID)
		}
		if !ids[e.TargetID] {
			return fmt.Errorf("%w: edge %q target %q", ErrInvalidReference, e.ID, e.TargetID)
		}
		if e.SourceID == e.TargetID {
			return fmt.Errorf("%w: edge %q on %q", ErrSelfLoop, e.ID, e.SourceID)
		}
	}
	return nil
}
