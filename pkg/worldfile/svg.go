package worldfile

import (
	"fmt"
	"html"
	"image"
	"image/color"
	"io"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/markup"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

// SVGOptions controls SVG rendering.
type SVGOptions struct {
	Width      int    // canvas width in pixels
	Height     int    // canvas height in pixels
	Padding    int    // padding around the content
	NodeRadius int    // radius of node circles
	FontSize   int    // node label font size
	LabelSize  int    // edge label font size (0 = FontSize - 2)
	Title      string // diagram title

	// Background embeds a map's background raster when it has one.
	Background bool
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:      800,
		Height:     600,
		Padding:    40,
		NodeRadius: 14,
		FontSize:   12,
		Background: true,
	}
}

// RenderSVG writes c as a standalone SVG document. Positions are fitted
// to the view the same way RenderPNG fits them; node descriptions become
// hover titles.
func RenderSVG(c world.Collection, w io.Writer, opts SVGOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("worldfile: svg size %dx%d", opts.Width, opts.Height)
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 12
	}
	if opts.LabelSize <= 0 {
		opts.LabelSize = max(opts.FontSize-2, 8)
	}
	if opts.NodeRadius <= 0 {
		opts.NodeRadius = 14
	}

	top := opts.Padding
	if opts.Title != "" {
		top += opts.FontSize * 2
	}
	view := image.Rect(opts.Padding, top, opts.Width-opts.Padding, opts.Height-opts.Padding)
	cam := fitCamera(contentBounds(c), view)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<defs>
  <marker id="arrowhead" markerWidth="10" markerHeight="7" refX="9" refY="3.5" orient="auto">
    <polygon points="0 0, 10 3.5, 0 7" fill="%s"/>
  </marker>
</defs>
<style>
  .node { stroke-width: 2; }
  .node-label { font-family: sans-serif; font-size: %dpx; fill: %s; text-anchor: middle; }
  .edge { fill: none; stroke: %s; stroke-width: 1.5; marker-end: url(#arrowhead); }
  .edge-label { font-family: sans-serif; font-size: %dpx; fill: %s; text-anchor: middle; }
  .title { font-family: sans-serif; font-size: %dpx; font-weight: bold; text-anchor: middle; }
</style>
`, opts.Width, opts.Height, opts.Width, opts.Height,
		hexOf(colorEdge), opts.FontSize, hexOf(colorInk), hexOf(colorEdge), opts.LabelSize, hexOf(colorInk), opts.FontSize+4)

	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="%s"/>
`, opts.Width, opts.Height, hexOf(colorPaper))

	if c.Type == world.TypeMap && c.Width > 0 && c.Height > 0 {
		writeSVGMapFrame(&sb, c, cam, opts.Background)
	}

	radius := float64(opts.NodeRadius)
	positions := make(map[string]geom.Point, len(c.Nodes))
	for _, n := range c.Nodes {
		positions[n.ID] = geom.ToScreen(n.Position, cam)
	}

	// Edges first, under the nodes
	for _, e := range c.Edges {
		from, to := positions[e.SourceID], positions[e.TargetID]
		d := to.Sub(from)
		dist := math.Hypot(d.X, d.Y)
		if dist <= 2*radius {
			continue
		}
		u := d.Div(dist)
		start := from.Add(u.Mul(radius))
		end := to.Sub(u.Mul(radius + 2))
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" class="edge"/>
`, start.X, start.Y, end.X, end.Y)
		if e.Label != "" {
			mid := start.Add(end).Div(2)
			fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" class="edge-label">%s</text>
`, mid.X-u.Y*10, mid.Y+u.X*10, html.EscapeString(e.Label))
		}
	}

	for _, n := range c.Nodes {
		p := positions[n.ID]
		fill, ok := world.ParseColor(n.Color())
		if !ok {
			fill, _ = world.ParseColor(world.KindColor(n.Kind))
		}
		stroke := fill.BlendLab(colorful.Color{}, 0.35).Clamped()

		sb.WriteString("<g>\n")
		if n.Description != "" {
			fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(markup.Strip(n.Description)))
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" class="node" fill="%s" stroke="%s"/>
`, p.X, p.Y, radius, fill.Hex(), stroke.Hex())
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" class="node-label">%s</text>
`, p.X, p.Y+radius+float64(opts.FontSize)+2, html.EscapeString(n.Label))
		sb.WriteString("</g>\n")
	}

	if opts.Title != "" {
		fmt.Fprintf(&sb, `<text x="%d" y="%d" class="title">%s</text>
`, opts.Width/2, opts.Padding, html.EscapeString(opts.Title))
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeSVGMapFrame(sb *strings.Builder, c world.Collection, cam geom.Camera, background bool) {
	lo := geom.ToScreen(geom.Pt(0, 0), cam)
	hi := geom.ToScreen(geom.Pt(float64(c.Width), float64(c.Height)), cam)
	base := c.Color
	if _, ok := world.ParseColor(base); !ok {
		base = world.DefaultMapColor
	}
	fmt.Fprintf(sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, lo.X, lo.Y, hi.X-lo.X, hi.Y-lo.Y, base)
	if background && c.Background != "" {
		fmt.Fprintf(sb, `<image x="%.1f" y="%.1f" width="%.1f" height="%.1f" preserveAspectRatio="none" href="%s"/>
`, lo.X, lo.Y, hi.X-lo.X, hi.Y-lo.Y, html.EscapeString(c.Background))
	}
}

func hexOf(c color.Color) string {
	cc, _ := colorful.MakeColor(c)
	return cc.Hex()
}
