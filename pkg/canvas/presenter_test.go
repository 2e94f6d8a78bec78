package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

func TestPresenterWritesThrough(t *testing.T) {
	var commits int
	g, err := world.NewGraph(world.Collection{ID: "g", Type: world.TypeGraph},
		world.WithIDs(world.Sequence()),
		world.WithOnChange(func(world.Collection) { commits++ }))
	require.NoError(t, err)
	id := g.AddNode(world.KindPerson, geom.Pt(0, 0))

	c := New(g)
	p := NewPresenter(c)
	_, ok := p.Fields()
	require.False(t, ok)

	c.SelectNode(id)
	commits = 0
	for _, partial := range []string{"M", "Ma", "Mar", "Mara"} {
		require.True(t, p.SetLabel(partial))
	}
	assert.Equal(t, 4, commits, "every keystroke is a committed mutation")

	require.True(t, p.SetDescription("A *quiet* scribe."))
	require.True(t, p.SetKind(world.KindConcept))
	require.True(t, p.SetStyle("#336699"))

	f, ok := p.Fields()
	require.True(t, ok)
	assert.Equal(t, "Mara", f.Label)
	assert.Equal(t, "A *quiet* scribe.", f.Description)
	assert.Equal(t, world.KindConcept, f.Kind)
	assert.Equal(t, "#336699", f.Style)

	n, _ := g.Node(id)
	assert.Equal(t, "Mara", n.Label, "no buffering between presenter and graph")
}

func TestPresenterRejectsBadValues(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	id := g.AddNode(world.KindPerson, geom.Pt(0, 0))
	c := New(g)
	c.SelectNode(id)
	p := NewPresenter(c)

	assert.False(t, p.SetKind("dragon"))
	assert.False(t, p.SetStyle("not a colour"))
	assert.True(t, p.SetStyle(""), "empty style reverts to the kind colour")

	n, _ := g.Node(id)
	assert.Equal(t, world.KindPerson, n.Kind)
}

func TestPresenterEdge(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	a := g.AddNode(world.KindPerson, geom.Pt(0, 0))
	b := g.AddNode(world.KindPerson, geom.Pt(1, 1))
	e, err := g.AddEdge(a, b, "")
	require.NoError(t, err)

	c := New(g)
	c.SelectEdge(e)
	p := NewPresenter(c)

	require.True(t, p.SetLabel("sibling"))
	assert.False(t, p.SetDescription("edges have none"))

	f, ok := p.Fields()
	require.True(t, ok)
	assert.Equal(t, "sibling", f.Label)
	assert.Equal(t, a, f.SourceID)
	assert.Equal(t, b, f.TargetID)

	require.True(t, p.Delete())
	assert.Empty(t, g.Edges())
	assert.Len(t, g.Nodes(), 2)
	assert.True(t, c.Selection().Empty())
}

func TestPresenterDeleteNodeCascades(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	a := g.AddNode(world.KindPerson, geom.Pt(0, 0))
	b := g.AddNode(world.KindPerson, geom.Pt(1, 1))
	_, err := g.AddEdge(a, b, "")
	require.NoError(t, err)

	c := New(g)
	c.SelectNode(a)
	p := NewPresenter(c)

	require.True(t, p.Delete())
	assert.Empty(t, g.Edges())
	assert.True(t, c.Selection().Empty())
	assert.False(t, p.Delete())
}

func TestSelectionOfVanishedEntityClears(t *testing.T) {
	g := newGraph(t, world.TypeGraph)
	id := g.AddNode(world.KindPerson, geom.Pt(0, 0))
	c := New(g)
	c.SelectNode(id)
	p := NewPresenter(c)

	g.RemoveNode(id)

	_, ok := p.Fields()
	assert.False(t, ok)
	assert.False(t, p.SetLabel("late edit"))
	assert.Empty(t, g.Nodes())
}

func TestSelectUnknownIDs(t *testing.T) {
	c := New(newGraph(t, world.TypeGraph))
	c.SelectNode("n-404")
	assert.True(t, c.Selection().Empty())
	c.SelectEdge("e-404")
	assert.True(t, c.Selection().Empty())

	empty := New(nil)
	empty.SelectNode("n-1")
	assert.True(t, empty.Selection().Empty())
	_, ok := empty.Pick(geom.Pt(0, 0), 10)
	assert.False(t, ok)
}
