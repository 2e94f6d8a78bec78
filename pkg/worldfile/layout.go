package worldfile

import (
	"math"

	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

// Circle used by the arrange command when none is given.
var DefaultArrangeCenter = geom.Pt(300, 250)

const DefaultArrangeRadius = 200

// CirclePositions returns n points evenly spaced on a circle, the first at
// the top, going clockwise on screen.
func CirclePositions(n int, center geom.Point, radius float64) []geom.Point {
	out := make([]geom.Point, n)
	for i := range out {
		angle := float64(i)/float64(n)*2*math.Pi - math.Pi/2
		out[i] = geom.Pt(center.X+radius*math.Cos(angle), center.Y+radius*math.Sin(angle))
	}
	return out
}

// Arrange moves every node of g onto a circle in node order. It returns
// the number of nodes moved.
func Arrange(g *world.Graph, center geom.Point, radius float64) int {
	nodes := g.Nodes()
	moved := 0
	for i, p := range CirclePositions(len(nodes), center, radius) {
		if g.MoveNode(nodes[i].ID, p) {
			moved++
		}
	}
	return moved
}
