// Native PNG snapshots of a collection: nodes as discs in their colour,
// edges as arrows, labels in Go Regular.

package worldfile

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ha1tch/worldcanvas/pkg/crop"
	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Width      int
	Height     int
	Padding    int
	NodeRadius int
	FontSize   int
	Title      string

	// Background draws a map's background raster when it has one.
	Background bool
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Width:      800,
		Height:     600,
		Padding:    40,
		NodeRadius: 14,
		FontSize:   12,
		Background: true,
	}
}

// supersample is the factor the snapshot is drawn at before downsampling.
const supersample = 4

var (
	colorPaper = color.RGBA{248, 250, 252, 255} // #f8fafc
	colorInk   = color.RGBA{51, 65, 85, 255}    // #334155
	colorEdge  = color.RGBA{100, 116, 139, 255} // #64748b
)

type renderContext struct {
	img       *image.RGBA
	scale     float64
	lineWidth float64
	face      font.Face
	camera    geom.Camera
}

func newRenderContext(img *image.RGBA, fontSize int) (*renderContext, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(fontSize * supersample),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	return &renderContext{
		img:       img,
		scale:     supersample,
		lineWidth: supersample * 2,
		face:      face,
	}, nil
}

// RenderPNG draws a snapshot of c and writes it as PNG. The view is
// fitted to the nodes (and to the frame of a map).
func RenderPNG(c world.Collection, w io.Writer, opts PNGOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("worldfile: png size %dx%d", opts.Width, opts.Height)
	}
	img, err := renderSnapshot(c, opts)
	if err != nil {
		return err
	}

	final := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(final, final.Bounds(), img, img.Bounds(), draw.Over, nil)
	return png.Encode(w, final)
}

func renderSnapshot(c world.Collection, opts PNGOptions) (*image.RGBA, error) {
	width := opts.Width * supersample
	height := opts.Height * supersample
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorPaper), image.Point{}, draw.Src)

	ctx, err := newRenderContext(img, opts.FontSize)
	if err != nil {
		return nil, err
	}

	top := opts.Padding
	if opts.Title != "" {
		top += opts.FontSize * 2
	}
	view := image.Rect(opts.Padding, top, opts.Width-opts.Padding, opts.Height-opts.Padding)
	view = image.Rect(view.Min.X*supersample, view.Min.Y*supersample, view.Max.X*supersample, view.Max.Y*supersample)
	ctx.camera = fitCamera(contentBounds(c), view)

	if c.Type == world.TypeMap {
		drawMapFrame(ctx, c, opts.Background)
	}

	radius := float64(opts.NodeRadius * supersample)
	positions := make(map[string]geom.Point, len(c.Nodes))
	for _, n := range c.Nodes {
		positions[n.ID] = geom.ToScreen(n.Position, ctx.camera)
	}

	for _, e := range c.Edges {
		from, to := positions[e.SourceID], positions[e.TargetID]
		d := to.Sub(from)
		dist := math.Hypot(d.X, d.Y)
		if dist <= 2*radius {
			continue
		}
		u := d.Div(dist)
		start := from.Add(u.Mul(radius))
		end := to.Sub(u.Mul(radius + ctx.scale*2))
		drawArrowLine(ctx, start.X, start.Y, end.X, end.Y, colorEdge)
		if e.Label != "" {
			mid := start.Add(end).Div(2)
			drawTextCentered(ctx, int(mid.X-u.Y*10*ctx.scale), int(mid.Y+u.X*10*ctx.scale), e.Label, colorInk)
		}
	}

	for _, n := range c.Nodes {
		p := positions[n.ID]
		fill, ok := world.ParseColor(n.Color())
		if !ok {
			fill, _ = world.ParseColor(world.KindColor(n.Kind))
		}
		stroke := fill.BlendLab(colorful.Color{}, 0.35).Clamped()
		drawDisc(ctx, p.X, p.Y, radius, fill, stroke)
		drawTextCentered(ctx, int(p.X), int(p.Y+radius+float64(opts.FontSize)*ctx.scale), n.Label, colorInk)
	}

	if opts.Title != "" {
		drawTextCentered(ctx, width/2, opts.Padding*supersample, opts.Title, colorInk)
	}
	return img, nil
}

// contentBounds returns the content-space box to fit: all node positions,
// and for maps the map frame.
func contentBounds(c world.Collection) geom.Rect {
	var r geom.Rect
	first := true
	extend := func(p geom.Point) {
		if first {
			r = geom.Rect{Min: p, Max: p}
			first = false
			return
		}
		r.Min = geom.Pt(math.Min(r.Min.X, p.X), math.Min(r.Min.Y, p.Y))
		r.Max = geom.Pt(math.Max(r.Max.X, p.X), math.Max(r.Max.Y, p.Y))
	}
	if c.Type == world.TypeMap && c.Width > 0 && c.Height > 0 {
		extend(geom.Pt(0, 0))
		extend(geom.Pt(float64(c.Width), float64(c.Height)))
	}
	for _, n := range c.Nodes {
		extend(n.Position)
	}
	return r
}

// fitCamera returns the camera that shows content box b centred in view,
// as large as fits.
func fitCamera(b geom.Rect, view image.Rectangle) geom.Camera {
	bw := math.Max(b.Max.X-b.Min.X, 1)
	bh := math.Max(b.Max.Y-b.Min.Y, 1)
	vw := math.Max(float64(view.Dx()), 1)
	vh := math.Max(float64(view.Dy()), 1)

	s := math.Min(vw/bw, vh/bh)
	contentCentre := geom.Pt((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2)
	viewCentre := geom.Pt(float64(view.Min.X)+vw/2, float64(view.Min.Y)+vh/2)
	return geom.Camera{Scale: s, Offset: viewCentre.Sub(contentCentre.Mul(s))}
}

func drawMapFrame(ctx *renderContext, c world.Collection, background bool) {
	if c.Width <= 0 || c.Height <= 0 {
		return
	}
	lo := geom.ToScreen(geom.Pt(0, 0), ctx.camera)
	hi := geom.ToScreen(geom.Pt(float64(c.Width), float64(c.Height)), ctx.camera)
	frame := image.Rect(int(lo.X), int(lo.Y), int(hi.X), int(hi.Y))

	base, ok := world.ParseColor(c.Color)
	if !ok {
		base, _ = world.ParseColor(world.DefaultMapColor)
	}
	draw.Draw(ctx.img, frame, image.NewUniform(base), image.Point{}, draw.Src)

	if !background || c.Background == "" {
		return
	}
	bg, _, err := crop.DecodeDataURL(c.Background)
	if err != nil {
		// An unreadable background leaves the base colour.
		return
	}
	draw.CatmullRom.Scale(ctx.img, frame, bg, bg.Bounds(), draw.Over, nil)
}

// drawDisc draws a filled circle with an outline.
func drawDisc(ctx *renderContext, cx, cy, r float64, fill, stroke color.Color) {
	img := ctx.img
	outer := r * r
	inner := (r - ctx.lineWidth) * (r - ctx.lineWidth)
	for y := int(cy - r); y <= int(cy+r); y++ {
		for x := int(cx - r); x <= int(cx+r); x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			d := dx*dx + dy*dy
			switch {
			case d <= inner:
				img.Set(x, y, fill)
			case d <= outer:
				img.Set(x, y, stroke)
			}
		}
	}
}

// drawLine draws a line between two points with thickness from context.
func drawLine(ctx *renderContext, x1, y1, x2, y2 float64, c color.Color) {
	img := ctx.img
	halfThick := ctx.lineWidth / 2

	dx := x2 - x1
	dy := y2 - y1
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		for ty := -halfThick; ty <= halfThick; ty++ {
			for tx := -halfThick; tx <= halfThick; tx++ {
				img.Set(int(x1+tx), int(y1+ty), c)
			}
		}
		return
	}

	steps := math.Max(math.Abs(dx), math.Abs(dy))
	perpX := -dy / dist
	perpY := dx / dist
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		cx := x1 + dx*t
		cy := y1 + dy*t
		for offset := -halfThick; offset <= halfThick; offset += 0.5 {
			img.Set(int(cx+perpX*offset), int(cy+perpY*offset), c)
		}
	}
}

// drawArrowLine draws a line with a filled arrowhead at the end.
func drawArrowLine(ctx *renderContext, x1, y1, x2, y2 float64, c color.Color) {
	drawLine(ctx, x1, y1, x2, y2, c)

	dx := x2 - x1
	dy := y2 - y1
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		return
	}
	nx := dx / dist
	ny := dy / dist

	arrowLen := 8.0 * ctx.scale
	arrowWidth := 4.0 * ctx.scale
	ax1 := x2 - nx*arrowLen + ny*arrowWidth
	ay1 := y2 - ny*arrowLen - nx*arrowWidth
	ax2 := x2 - nx*arrowLen - ny*arrowWidth
	ay2 := y2 - ny*arrowLen + nx*arrowWidth

	for t := 0.0; t <= 1.0; t += 0.05 {
		drawLine(ctx, x2, y2, ax1+(ax2-ax1)*t, ay1+(ay2-ay1)*t, c)
	}
}

// drawTextCentered draws text horizontally centred on x with its
// baseline slightly below y.
func drawTextCentered(ctx *renderContext, x, y int, text string, c color.Color) {
	if text == "" {
		return
	}
	width := font.MeasureString(ctx.face, text).Ceil()
	ascent := ctx.face.Metrics().Ascent.Ceil()

	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: ctx.face,
		Dot: fixed.Point26_6{
			X: fixed.I(x - width/2),
			Y: fixed.I(y + int(float64(ascent)*0.15)),
		},
	}
	d.DrawString(text)
}
