package worldfile

import (
	"fmt"
	"strings"

	"github.com/ha1tch/worldcanvas/pkg/world"
)

// GenerateDOT converts a collection to Graphviz DOT. Node positions are
// emitted as pinned pos attributes (y flipped, DOT points up) so neato
// -n reproduces the canvas layout.
func GenerateDOT(c world.Collection, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph World {\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11, style=filled, fontcolor=white];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title == "" {
		title = c.Name
	}
	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	shape := "ellipse"
	if c.Type == world.TypeMap {
		shape = "box"
	}
	for _, n := range c.Nodes {
		attrs := []string{
			"shape=" + shape,
			fmt.Sprintf("label=\"%s\"", escapeDOT(n.Label)),
			fmt.Sprintf("fillcolor=\"%s\"", n.Color()),
			fmt.Sprintf("pos=\"%g,%g!\"", n.Position.X, -n.Position.Y),
		}
		if n.Kind != "" {
			attrs = append(attrs, fmt.Sprintf("tooltip=\"%s\"", escapeDOT(string(n.Kind))))
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" [%s];\n", escapeDOT(n.ID), strings.Join(attrs, ", ")))
	}
	if len(c.Nodes) > 0 {
		sb.WriteString("\n")
	}

	for _, e := range c.Edges {
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\"", escapeDOT(e.SourceID), escapeDOT(e.TargetID)))
		if e.Label != "" {
			sb.WriteString(fmt.Sprintf(" [label=\"%s\"]", escapeDOT(e.Label)))
		}
		sb.WriteString(";\n")
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
