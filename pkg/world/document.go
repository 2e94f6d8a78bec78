package world

import "fmt"

// Default sizes for new maps.
const (
	DefaultMapWidth  = 800
	DefaultMapHeight = 600
	DefaultMapColor  = "#1e293b"
)

// World is the part of a world document the spatial engine works with:
// its maps and its relation graphs. The rest of the document belongs to
// other collaborators.
type World struct {
	ID     string       `json:"id" yaml:"id"`
	Name   string       `json:"name" yaml:"name"`
	Maps   []Collection `json:"maps" yaml:"maps"`
	Graphs []Collection `json:"customGraphs" yaml:"customGraphs"`
}

// Collections returns maps followed by graphs.
func (w *World) Collections() []Collection {
	out := make([]Collection, 0, len(w.Maps)+len(w.Graphs))
	out = append(out, w.Maps...)
	return append(out, w.Graphs...)
}

// Collection returns the map or graph with the given id.
func (w *World) Collection(id string) (Collection, bool) {
	if p := w.find(id); p != nil {
		return p.Clone(), true
	}
	return Collection{}, false
}

func (w *World) find(id string) *Collection {
	for i := range w.Maps {
		if w.Maps[i].ID == id {
			return &w.Maps[i]
		}
	}
	for i := range w.Graphs {
		if w.Graphs[i].ID == id {
			return &w.Graphs[i]
		}
	}
	return nil
}

// Validate checks every collection and that collection ids are unique.
func (w *World) Validate() error {
	seen := make(map[string]bool)
	for _, c := range w.Collections() {
		if seen[c.ID] {
			return fmt.Errorf("%w: collection %q", ErrDuplicateID, c.ID)
		}
		seen[c.ID] = true
		if err := c.Validate(); err != nil {
			return fmt.Errorf("collection %q: %w", c.ID, err)
		}
	}
	return nil
}

// Replace merges a collection emitted by Graph change notifications. Only
// nodes and edges are taken from c, so a background stored while the
// graph was live survives. It returns false if the collection no longer
// exists.
func (w *World) Replace(c Collection) bool {
	p := w.find(c.ID)
	if p == nil {
		return false
	}
	c = c.Clone()
	p.Nodes = c.Nodes
	p.Edges = c.Edges
	return true
}

// AddMap appends an empty map and returns its id.
func (w *World) AddMap(name string, width, height int, ids IDFunc) string {
	if width <= 0 {
		width = DefaultMapWidth
	}
	if height <= 0 {
		height = DefaultMapHeight
	}
	c := Collection{
		ID:     w.freshID(PrefixMap, ids),
		Name:   name,
		Type:   TypeMap,
		Width:  width,
		Height: height,
		Color:  DefaultMapColor,
		Nodes:  []Node{},
		Edges:  []Edge{},
	}
	w.Maps = append(w.Maps, c)
	return c.ID
}

// AddGraph appends an empty graph and returns its id.
func (w *World) AddGraph(name string, ids IDFunc) string {
	c := Collection{
		ID:    w.freshID(PrefixGraph, ids),
		Name:  name,
		Type:  TypeGraph,
		Nodes: []Node{},
		Edges: []Edge{},
	}
	w.Graphs = append(w.Graphs, c)
	return c.ID
}

// Remove deletes a collection together with all of its nodes and edges.
func (w *World) Remove(id string) bool {
	for i := range w.Maps {
		if w.Maps[i].ID == id {
			w.Maps = append(w.Maps[:i:i], w.Maps[i+1:]...)
			return true
		}
	}
	for i := range w.Graphs {
		if w.Graphs[i].ID == id {
			w.Graphs = append(w.Graphs[:i:i], w.Graphs[i+1:]...)
			return true
		}
	}
	return false
}

// SetBackground stores a raster payload as a map background. It is the
// completion target of the crop pipeline and returns false when the map
// was removed while the image was being processed.
func (w *World) SetBackground(mapID, payload string) bool {
	p := w.find(mapID)
	if p == nil || p.Type != TypeMap {
		return false
	}
	p.Background = payload
	return true
}

func (w *World) freshID(prefix string, ids IDFunc) string {
	if ids == nil {
		ids = UUID
	}
	for {
		id := ids(prefix)
		if w.find(id) == nil {
			return id
		}
	}
}
