package canvas

import (
	"github.com/ha1tch/worldcanvas/pkg/world"
)

// Fields is the editable view of the current selection.
type Fields struct {
	Selection   Selection
	Label       string
	Description string // nodes only
	Kind        world.Kind
	Style       string
	SourceID    string // edges only
	TargetID    string
}

// Presenter exposes the selection of a canvas for editing. Every setter
// is a committed mutation on the graph; nothing is buffered.
type Presenter struct {
	canvas *Canvas
}

// NewPresenter returns a presenter for c.
func NewPresenter(c *Canvas) *Presenter {
	return &Presenter{canvas: c}
}

// Fields returns the fields of the selected entity, or false when nothing
// (live) is selected.
func (p *Presenter) Fields() (Fields, bool) {
	sel := p.canvas.Selection()
	g := p.canvas.Graph()
	switch sel.Kind {
	case SelectNode:
		n, _ := g.Node(sel.ID)
		return Fields{
			Selection:   sel,
			Label:       n.Label,
			Description: n.Description,
			Kind:        n.Kind,
			Style:       n.Style,
		}, true
	case SelectEdge:
		e, _ := g.Edge(sel.ID)
		return Fields{
			Selection: sel,
			Label:     e.Label,
			SourceID:  e.SourceID,
			TargetID:  e.TargetID,
		}, true
	}
	return Fields{}, false
}

// SetLabel sets the label of the selected node or edge.
func (p *Presenter) SetLabel(label string) bool {
	sel := p.canvas.Selection()
	g := p.canvas.Graph()
	switch sel.Kind {
	case SelectNode:
		return g.UpdateNode(sel.ID, world.NodePatch{Label: &label})
	case SelectEdge:
		return g.UpdateEdge(sel.ID, world.EdgePatch{Label: &label})
	}
	return false
}

// SetDescription sets the description of the selected node.
func (p *Presenter) SetDescription(text string) bool {
	id, ok := p.node()
	if !ok {
		return false
	}
	return p.canvas.Graph().UpdateNode(id, world.NodePatch{Description: &text})
}

// SetKind changes the kind of the selected node. Unknown kinds are
// refused.
func (p *Presenter) SetKind(k world.Kind) bool {
	id, ok := p.node()
	if !ok || !k.Valid() {
		return false
	}
	return p.canvas.Graph().UpdateNode(id, world.NodePatch{Kind: &k})
}

// SetStyle sets the colour of the selected node. An empty style reverts
// to the kind colour; anything else must parse as a hex colour.
func (p *Presenter) SetStyle(style string) bool {
	id, ok := p.node()
	if !ok {
		return false
	}
	if style != "" {
		if _, valid := world.ParseColor(style); !valid {
			return false
		}
	}
	return p.canvas.Graph().UpdateNode(id, world.NodePatch{Style: &style})
}

// Delete removes the selected entity (a node together with its edges)
// and clears the selection.
func (p *Presenter) Delete() bool {
	sel := p.canvas.Selection()
	g := p.canvas.Graph()
	var ok bool
	switch sel.Kind {
	case SelectNode:
		ok = g.RemoveNode(sel.ID)
	case SelectEdge:
		ok = g.RemoveEdge(sel.ID)
	}
	p.canvas.ClearSelection()
	return ok
}

func (p *Presenter) node() (string, bool) {
	sel := p.canvas.Selection()
	if sel.Kind != SelectNode {
		return "", false
	}
	return sel.ID, true
}
