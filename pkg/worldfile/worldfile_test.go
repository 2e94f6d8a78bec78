package worldfile

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

func pngDataURL(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func sampleWorld() *world.World {
	return &world.World{
		ID:   "w-1",
		Name: "Eldoria",
		Maps: []world.Collection{{
			ID:     "m-1",
			Name:   "Continent",
			Type:   world.TypeMap,
			Width:  800,
			Height: 600,
			Color:  world.DefaultMapColor,
			Nodes: []world.Node{
				{ID: "n-1", Position: geom.Pt(10, 20), Label: "Harbor", Kind: world.KindLocation},
				{ID: "n-2", Position: geom.Pt(300, 200), Label: "Keep", Kind: world.KindLocation, Style: "#ff0000"},
			},
			Edges: []world.Edge{
				{ID: "e-1", SourceID: "n-1", TargetID: "n-2", Label: "road"},
			},
		}},
		Graphs: []world.Collection{{
			ID:   "g-1",
			Name: "Court",
			Type: world.TypeGraph,
			Nodes: []world.Node{
				{ID: "n-3", Position: geom.Pt(0, 0), Label: "Queen", Description: "Rules **firmly**", Kind: world.KindPerson},
				{ID: "n-4", Position: geom.Pt(100, 0), Label: "Crown", Kind: world.KindItem},
			},
			Edges: []world.Edge{
				{ID: "e-2", SourceID: "n-3", TargetID: "n-4", Label: "wears"},
			},
		}},
	}
}

func checkSample(t *testing.T, w *world.World) {
	t.Helper()
	if w.Name != "Eldoria" {
		t.Errorf("name: got %q, want Eldoria", w.Name)
	}
	if len(w.Maps) != 1 || len(w.Graphs) != 1 {
		t.Fatalf("got %d maps %d graphs, want 1 and 1", len(w.Maps), len(w.Graphs))
	}
	m := w.Maps[0]
	if m.Width != 800 || m.Height != 600 || m.Type != world.TypeMap {
		t.Errorf("map: got %s %dx%d", m.Type, m.Width, m.Height)
	}
	if len(m.Nodes) != 2 || m.Nodes[1].Position != geom.Pt(300, 200) || m.Nodes[1].Style != "#ff0000" {
		t.Errorf("map nodes: got %+v", m.Nodes)
	}
	if len(m.Edges) != 1 || m.Edges[0].SourceID != "n-1" || m.Edges[0].TargetID != "n-2" || m.Edges[0].Label != "road" {
		t.Errorf("map edges: got %+v", m.Edges)
	}
	g := w.Graphs[0]
	if len(g.Nodes) != 2 || g.Nodes[0].Description != "Rules **firmly**" || g.Nodes[0].Kind != world.KindPerson {
		t.Errorf("graph nodes: got %+v", g.Nodes)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := ToJSON(sampleWorld(), true)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"customGraphs"`, `"sourceId"`, `"targetId"`, `"position"`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("json missing %s", key)
		}
	}

	w, err := ParseJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	checkSample(t, w)
}

func TestYAMLRoundTrip(t *testing.T) {
	data, err := ToYAML(sampleWorld())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("customGraphs:")) {
		t.Errorf("yaml missing customGraphs key:\n%s", data)
	}

	w, err := ParseYAML(data)
	if err != nil {
		t.Fatal(err)
	}
	checkSample(t, w)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{
			name: "dangling edge",
			json: `{"maps":[{"id":"m","type":"map","nodes":[{"id":"a"}],"edges":[{"id":"e","sourceId":"a","targetId":"b"}]}]}`,
			want: world.ErrInvalidReference,
		},
		{
			name: "self loop",
			json: `{"customGraphs":[{"id":"g","type":"graph","nodes":[{"id":"a"}],"edges":[{"id":"e","sourceId":"a","targetId":"a"}]}]}`,
			want: world.ErrSelfLoop,
		},
		{
			name: "duplicate collection",
			json: `{"maps":[{"id":"x","type":"map"}],"customGraphs":[{"id":"x","type":"graph"}]}`,
			want: world.ErrDuplicateID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.json))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ParseJSON([]byte("{")); err == nil {
		t.Error("expected syntax error")
	}
	if _, err := ParseYAML([]byte("maps: [")); err == nil {
		t.Error("expected yaml syntax error")
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"world.json", FormatJSON},
		{"world.JSON", FormatJSON},
		{"world.yaml", FormatYAML},
		{"world.yml", FormatYAML},
		{"world.wcz", FormatBundle},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("FormatOf(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
		}
	}
	if _, err := FormatOf("world.txt"); err == nil {
		t.Error("expected error for .txt")
	}
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"world.json", "world.yaml", "world.wcz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteFile(path, sampleWorld()); err != nil {
				t.Fatal(err)
			}
			w, err := ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			checkSample(t, w)
		})
	}
}

func TestWriteFileValidates(t *testing.T) {
	w := sampleWorld()
	w.Maps[0].Edges[0].TargetID = "gone"

	err := WriteFile(filepath.Join(t.TempDir(), "bad.json"), w)
	if !errors.Is(err, world.ErrInvalidReference) {
		t.Errorf("got %v, want ErrInvalidReference", err)
	}
}

func TestBundleStoresBackgroundsAsEntries(t *testing.T) {
	w := sampleWorld()
	bg := pngDataURL(t, 4, 3, color.RGBA{R: 255, A: 255})
	w.Maps[0].Background = bg

	var buf bytes.Buffer
	if err := WriteBundle(&buf, w); err != nil {
		t.Fatal(err)
	}
	if w.Maps[0].Background != bg {
		t.Error("WriteBundle modified the caller's world")
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["world.json"] || !names["backgrounds/m-1.png"] {
		t.Errorf("archive entries: %v", names)
	}

	got, err := ReadBundleBytes(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	checkSample(t, got)
	if got.Maps[0].Background != bg {
		t.Errorf("background not restored: %.40s", got.Maps[0].Background)
	}
}

func TestReadBundleErrors(t *testing.T) {
	if _, err := ReadBundleBytes([]byte("not a zip")); err == nil {
		t.Error("expected error for non-zip data")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, _ := zw.Create("world.json")
	fw.Write([]byte(`{"maps":[{"id":"m","type":"map","backgroundImage":"bundle:backgrounds/m.png"}]}`))
	zw.Close()
	if _, err := ReadBundleBytes(buf.Bytes()); err == nil || !strings.Contains(err.Error(), "missing") {
		t.Errorf("got %v, want missing background error", err)
	}

	buf.Reset()
	zw = zip.NewWriter(&buf)
	zw.Create("other.txt")
	zw.Close()
	if _, err := ReadBundleBytes(buf.Bytes()); err == nil {
		t.Error("expected error for archive without world.json")
	}
}

func TestGenerateDOT(t *testing.T) {
	w := sampleWorld()
	w.Maps[0].Nodes[0].Label = `The "Old" Harbor`

	dot := GenerateDOT(w.Maps[0], "")
	wants := []string{
		"digraph World {",
		`label="Continent";`,
		`shape=box`,
		`label="The \"Old\" Harbor"`,
		`pos="10,-20!"`,
		`fillcolor="#ff0000"`,
		`"n-1" -> "n-2" [label="road"];`,
	}
	for _, want := range wants {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}

	g := w.Graphs[0]
	g.Edges[0].Label = ""
	dot = GenerateDOT(g, "Royal court")
	if !strings.Contains(dot, `label="Royal court";`) || !strings.Contains(dot, "shape=ellipse") {
		t.Errorf("graph DOT:\n%s", dot)
	}
	if !strings.Contains(dot, `"n-3" -> "n-4";`) {
		t.Errorf("unlabelled edge should have no attributes:\n%s", dot)
	}
}

func TestEscapeDOT(t *testing.T) {
	if got := escapeDOT("a\\b\"c\nd"); got != `a\\b\"c\nd` {
		t.Errorf("got %s", got)
	}
}

func near(a, b geom.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestCirclePositions(t *testing.T) {
	got := CirclePositions(4, DefaultArrangeCenter, DefaultArrangeRadius)
	want := []geom.Point{geom.Pt(300, 50), geom.Pt(500, 250), geom.Pt(300, 450), geom.Pt(100, 250)}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Errorf("point %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if len(CirclePositions(0, DefaultArrangeCenter, 10)) != 0 {
		t.Error("expected no points for n=0")
	}
}

func TestArrange(t *testing.T) {
	var changes int
	g, err := world.NewGraph(sampleWorld().Graphs[0], world.WithOnChange(func(world.Collection) { changes++ }))
	if err != nil {
		t.Fatal(err)
	}
	if got := Arrange(g, geom.Pt(0, 0), 10); got != 2 {
		t.Errorf("moved %d, want 2", got)
	}
	if changes != 2 {
		t.Errorf("changes %d, want 2", changes)
	}
	a, _ := g.Node("n-3")
	b, _ := g.Node("n-4")
	if !near(a.Position, geom.Pt(0, -10)) || !near(b.Position, geom.Pt(0, 10)) {
		t.Errorf("positions: %v %v", a.Position, b.Position)
	}
	if len(g.Edges()) != 1 {
		t.Error("arrange must keep edges")
	}
}

func TestRenderPNG(t *testing.T) {
	w := sampleWorld()
	var buf bytes.Buffer
	opts := DefaultPNGOptions()
	opts.Width, opts.Height = 200, 150
	opts.Title = "Court"
	if err := RenderPNG(w.Graphs[0], &buf, opts); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 150 {
		t.Errorf("got %v, want 200x150", img.Bounds())
	}
}

func TestRenderPNGEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultPNGOptions()
	opts.Width, opts.Height = 50, 40
	if err := RenderPNG(world.Collection{Type: world.TypeGraph}, &buf, opts); err != nil {
		t.Fatal(err)
	}
}

func TestRenderPNGMapBackground(t *testing.T) {
	m := world.Collection{
		ID:     "m-1",
		Type:   world.TypeMap,
		Width:  100,
		Height: 100,
		Color:  "#000080",
	}
	m.Background = pngDataURL(t, 10, 10, color.RGBA{R: 255, A: 255})

	render := func(background bool) color.Color {
		var buf bytes.Buffer
		opts := DefaultPNGOptions()
		opts.Width, opts.Height = 200, 150
		opts.Background = background
		if err := RenderPNG(m, &buf, opts); err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatal(err)
		}
		return img.At(100, 75)
	}

	r, g, b, _ := render(true).RGBA()
	if r>>8 < 240 || g>>8 > 16 || b>>8 > 16 {
		t.Errorf("with background: got %d,%d,%d, want red", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = render(false).RGBA()
	if r>>8 > 16 || g>>8 > 16 || b>>8 < 112 || b>>8 > 144 {
		t.Errorf("without background: got %d,%d,%d, want navy", r>>8, g>>8, b>>8)
	}
}

func TestRenderPNGRejectsZeroSize(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPNG(sampleWorld().Maps[0], &buf, PNGOptions{}); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestRenderSVG(t *testing.T) {
	w := sampleWorld()
	var buf bytes.Buffer
	opts := DefaultSVGOptions()
	opts.Title = "Court & Crown"
	if err := RenderSVG(w.Graphs[0], &buf, opts); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("not well-formed: %v", err)
		}
	}
	for _, want := range []string{
		`width="800" height="600"`,
		`>Queen</text>`,
		`>wears</text>`,
		`<title>Rules firmly</title>`,
		`Court &amp; Crown`,
		`class="edge"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Count(out, "<circle") != 2 {
		t.Errorf("want 2 nodes, got %d", strings.Count(out, "<circle"))
	}
}

func TestRenderSVGMap(t *testing.T) {
	m := sampleWorld().Maps[0]
	m.Background = pngDataURL(t, 4, 3, color.RGBA{G: 255, A: 255})

	render := func(background bool) string {
		var buf bytes.Buffer
		opts := DefaultSVGOptions()
		opts.Background = background
		if err := RenderSVG(m, &buf, opts); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}

	out := render(true)
	if !strings.Contains(out, `fill="`+world.DefaultMapColor+`"`) {
		t.Error("map frame missing")
	}
	if !strings.Contains(out, `href="data:image/png;base64,`) {
		t.Error("background image missing")
	}
	if !strings.Contains(out, `fill="#ff0000"`) {
		t.Error("node style colour not used")
	}
	if strings.Contains(render(false), "<image") {
		t.Error("background embedded with Background off")
	}

	if err := RenderSVG(m, &bytes.Buffer{}, SVGOptions{}); err == nil {
		t.Error("expected error for zero size")
	}
}

func layeredCollection(edges ...[2]string) world.Collection {
	c := world.Collection{ID: "g-1", Type: world.TypeGraph}
	ids := map[string]bool{}
	add := func(id string) {
		if !ids[id] {
			ids[id] = true
			c.Nodes = append(c.Nodes, world.Node{ID: id, Kind: world.KindConcept})
		}
	}
	for _, e := range edges {
		add(e[0])
		add(e[1])
		c.Edges = append(c.Edges, world.Edge{ID: e[0] + e[1], SourceID: e[0], TargetID: e[1]})
	}
	return c
}

func TestLayeredPositions(t *testing.T) {
	c := layeredCollection([2]string{"a", "b"}, [2]string{"b", "c"})
	c.Nodes = append(c.Nodes, world.Node{ID: "d", Kind: world.KindConcept})

	got := LayeredPositions(c, DefaultLayeredOptions())
	want := map[string]geom.Point{
		"a": geom.Pt(240, 50),
		"d": geom.Pt(360, 50),
		"b": geom.Pt(300, 150),
		"c": geom.Pt(300, 250),
	}
	for id, p := range want {
		if !near(got[id], p) {
			t.Errorf("%s: got %v, want %v", id, got[id], p)
		}
	}
}

func TestLayeredPositionsCycle(t *testing.T) {
	c := layeredCollection([2]string{"a", "b"}, [2]string{"b", "a"})
	got := LayeredPositions(c, DefaultLayeredOptions())
	if got["a"].Y != 50 || got["b"].Y != 150 {
		t.Errorf("cycle layers: %v", got)
	}
	if len(LayeredPositions(world.Collection{}, DefaultLayeredOptions())) != 0 {
		t.Error("expected no positions for an empty collection")
	}
}

func TestReduceCrossings(t *testing.T) {
	// a->y and b->x cross when both layers keep document order
	c := layeredCollection([2]string{"a", "y"}, [2]string{"b", "x"})
	a := buildAdjacency(c)
	layers := [][]string{{"a", "b"}, {"x", "y"}}
	if countCrossings(layers[0], layers[1], a) != 1 {
		t.Fatal("expected one crossing before reordering")
	}
	layers = reduceCrossings(layers, a)
	if n := countCrossings(layers[0], layers[1], a); n != 0 {
		t.Errorf("%d crossings after reordering: %v", n, layers)
	}
}

func TestArrangeLayered(t *testing.T) {
	g, err := world.NewGraph(sampleWorld().Graphs[0])
	if err != nil {
		t.Fatal(err)
	}
	if got := ArrangeLayered(g, DefaultLayeredOptions()); got != 2 {
		t.Errorf("moved %d, want 2", got)
	}
	queen, _ := g.Node("n-3")
	crown, _ := g.Node("n-4")
	if !near(queen.Position, geom.Pt(300, 50)) || !near(crown.Position, geom.Pt(300, 150)) {
		t.Errorf("positions: %v %v", queen.Position, crown.Position)
	}
}
