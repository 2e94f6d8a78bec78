package worldfile

import (
	"sort"

	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

// LayeredOptions places layers top to bottom from Origin.
type LayeredOptions struct {
	Origin   geom.Point // centre of the first layer
	LayerGap float64    // vertical distance between layers
	NodeGap  float64    // horizontal distance between nodes in a layer
}

// DefaultLayeredOptions returns the spacing used by the arrange command.
func DefaultLayeredOptions() LayeredOptions {
	return LayeredOptions{
		Origin:   geom.Pt(300, 50),
		LayerGap: 100,
		NodeGap:  120,
	}
}

// adjacency is the edge set of a collection, deduplicated.
type adjacency struct {
	order    map[string]int
	forward  map[string][]string
	backward map[string][]string
}

func buildAdjacency(c world.Collection) *adjacency {
	a := &adjacency{
		order:    make(map[string]int, len(c.Nodes)),
		forward:  make(map[string][]string),
		backward: make(map[string][]string),
	}
	for i, n := range c.Nodes {
		a.order[n.ID] = i
	}
	seen := make(map[[2]string]bool)
	for _, e := range c.Edges {
		key := [2]string{e.SourceID, e.TargetID}
		if seen[key] {
			continue
		}
		seen[key] = true
		a.forward[e.SourceID] = append(a.forward[e.SourceID], e.TargetID)
		a.backward[e.TargetID] = append(a.backward[e.TargetID], e.SourceID)
	}
	return a
}

// LayeredPositions lays c out in layers following edge direction. Nodes
// without incoming edges start the first layer; every other node goes one
// layer below its nearest such source. Nodes only reachable through a
// cycle start from the first unplaced node in document order. Within a
// layer, nodes are ordered by the barycenter of their neighbours to cut
// crossings.
func LayeredPositions(c world.Collection, opts LayeredOptions) map[string]geom.Point {
	positions := make(map[string]geom.Point, len(c.Nodes))
	if len(c.Nodes) == 0 {
		return positions
	}
	a := buildAdjacency(c)

	layers := assignLayers(c.Nodes, a)
	for i := 0; i < 4; i++ {
		layers = reduceCrossings(layers, a)
	}

	for l, layer := range layers {
		y := opts.Origin.Y + float64(l)*opts.LayerGap
		mid := float64(len(layer)-1) / 2
		for i, id := range layer {
			positions[id] = geom.Pt(opts.Origin.X+(float64(i)-mid)*opts.NodeGap, y)
		}
	}
	return positions
}

func assignLayers(nodes []world.Node, a *adjacency) [][]string {
	layerOf := make(map[string]int, len(nodes))
	maxLayer := 0

	bfs := func(queue []string) {
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, next := range a.forward[current] {
				if _, visited := layerOf[next]; visited {
					continue
				}
				layerOf[next] = layerOf[current] + 1
				maxLayer = max(maxLayer, layerOf[next])
				queue = append(queue, next)
			}
		}
	}

	var roots []string
	for _, n := range nodes {
		if len(a.backward[n.ID]) == 0 {
			layerOf[n.ID] = 0
			roots = append(roots, n.ID)
		}
	}
	bfs(roots)

	// Cycles with no way in
	for _, n := range nodes {
		if _, ok := layerOf[n.ID]; !ok {
			layerOf[n.ID] = 0
			bfs([]string{n.ID})
		}
	}

	layers := make([][]string, maxLayer+1)
	for _, n := range nodes {
		l := layerOf[n.ID]
		layers[l] = append(layers[l], n.ID)
	}
	return layers
}

// reduceCrossings reorders each layer by the mean position of its
// neighbours in the previous layer, then sweeps back up using the next.
func reduceCrossings(layers [][]string, a *adjacency) [][]string {
	if len(layers) <= 1 {
		return layers
	}
	result := make([][]string, len(layers))
	pos := make(map[string]float64)
	for l, layer := range layers {
		result[l] = append([]string(nil), layer...)
		for i, id := range layer {
			pos[id] = float64(i)
		}
	}

	sortLayer := func(layer []string, neighbours map[string][]string) {
		bary := make(map[string]float64, len(layer))
		for _, id := range layer {
			sum, count := 0.0, 0
			for _, nb := range neighbours[id] {
				if p, ok := pos[nb]; ok {
					sum += p
					count++
				}
			}
			if count > 0 {
				bary[id] = sum / float64(count)
			} else {
				bary[id] = pos[id]
			}
		}
		sort.SliceStable(layer, func(i, j int) bool {
			bi, bj := bary[layer[i]], bary[layer[j]]
			if bi != bj {
				return bi < bj
			}
			return a.order[layer[i]] < a.order[layer[j]]
		})
		for i, id := range layer {
			pos[id] = float64(i)
		}
	}

	for l := 1; l < len(result); l++ {
		sortLayer(result[l], a.backward)
	}
	for l := len(result) - 2; l >= 0; l-- {
		sortLayer(result[l], a.forward)
	}
	return result
}

// countCrossings counts edge crossings between two adjacent layers.
func countCrossings(upper, lower []string, a *adjacency) int {
	posLower := make(map[string]int, len(lower))
	for i, id := range lower {
		posLower[id] = i
	}
	var edges [][2]int
	for i, from := range upper {
		for _, to := range a.forward[from] {
			if j, ok := posLower[to]; ok {
				edges = append(edges, [2]int{i, j})
			}
		}
	}
	crossings := 0
	for i := 0; i < len(edges); i++ {
		for j := i + 1; j < len(edges); j++ {
			e1, e2 := edges[i], edges[j]
			if (e1[0] < e2[0] && e1[1] > e2[1]) || (e1[0] > e2[0] && e1[1] < e2[1]) {
				crossings++
			}
		}
	}
	return crossings
}

// ArrangeLayered moves every node of g to its layered position. It
// returns the number of nodes moved.
func ArrangeLayered(g *world.Graph, opts LayeredOptions) int {
	positions := LayeredPositions(g.Snapshot(), opts)
	moved := 0
	for _, n := range g.Nodes() {
		if p, ok := positions[n.ID]; ok && g.MoveNode(n.ID, p) {
			moved++
		}
	}
	return moved
}
