package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/ha1tch/worldcanvas/pkg/canvas"
	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/world"
	"github.com/ha1tch/worldcanvas/pkg/worldfile"
)

// A terminal cell stands for a cellWidth x cellHeight block of screen
// pixels, so content coordinates keep the same units as in a browser.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

// cellPoint returns the screen point at the centre of cell (x, y).
func cellPoint(x, y int) geom.Point {
	return geom.Pt((float64(x)+0.5)*cellWidth, (float64(y)+0.5)*cellHeight)
}

// screenCell returns the cell containing screen point p.
func screenCell(p geom.Point) (int, int) {
	return int(math.Floor(p.X / cellWidth)), int(math.Floor(p.Y / cellHeight))
}

func (ed *Editor) canvasSize() (int, int) {
	w, h := ed.screen.Size()
	return w - ed.sidebarWidth, h - 2
}

func (ed *Editor) inCanvas(x, y int) bool {
	cw, ch := ed.canvasSize()
	return x >= 0 && x < cw && y >= 0 && y < ch
}

// nodeAt returns the node whose marker or label covers cell (x, y). Later
// nodes are drawn on top and win.
func (ed *Editor) nodeAt(x, y int) string {
	if ed.graph == nil {
		return ""
	}
	nodes := ed.graph.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		nx, ny := screenCell(ed.canvas.ToScreen(n.Position))
		if y == ny && x >= nx && x < nx+nodeWidth(n) {
			return n.ID
		}
	}
	if id, ok := ed.ctrl.Pick(cellPoint(x, y)); ok {
		return id
	}
	return ""
}

// nodeWidth is the width in cells of a drawn node: marker, space, label.
func nodeWidth(n world.Node) int {
	return 2 + runewidth.StringWidth(n.Label)
}

// edgeAt returns the edge whose label covers cell (x, y).
func (ed *Editor) edgeAt(x, y int) string {
	if ed.graph == nil {
		return ""
	}
	for _, e := range ed.graph.Edges() {
		if e.Label == "" {
			continue
		}
		lx, ly, ok := ed.edgeLabelCell(e)
		if ok && y == ly && x >= lx && x < lx+runewidth.StringWidth(e.Label) {
			return e.ID
		}
	}
	return ""
}

func (ed *Editor) edgeLabelCell(e world.Edge) (int, int, bool) {
	a, okA := ed.graph.Node(e.SourceID)
	b, okB := ed.graph.Node(e.TargetID)
	if !okA || !okB {
		return 0, 0, false
	}
	mid := ed.canvas.ToScreen(a.Position.Add(b.Position).Div(2))
	x, y := screenCell(mid)
	return x - runewidth.StringWidth(e.Label)/2, y, true
}

func modifiers(m tcell.ModMask) canvas.Modifiers {
	var mods canvas.Modifiers
	if m&tcell.ModShift != 0 {
		mods |= canvas.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= canvas.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= canvas.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		mods |= canvas.ModMeta
	}
	return mods
}

const buttonsMask = tcell.Button1 | tcell.Button2 | tcell.Button3

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	if ed.mode != ModeCanvas {
		return
	}
	x, y := ev.Position()
	buttons := ev.Buttons()
	p := cellPoint(x, y)

	if buttons&tcell.WheelUp != 0 {
		ed.ctrl.Wheel(p, 1)
		return
	}
	if buttons&tcell.WheelDown != 0 {
		ed.ctrl.Wheel(p, -1)
		return
	}

	held := buttons & buttonsMask
	switch {
	case ed.pressed == 0 && held != 0:
		ed.pointerDown(x, y, held, ev.Modifiers())
	case ed.pressed != 0 && held != 0:
		ed.ctrl.PointerMove(p)
	case ed.pressed != 0 && held == 0:
		ed.pointerUp(x, y)
	}
}

func (ed *Editor) pointerDown(x, y int, held tcell.ButtonMask, mod tcell.ModMask) {
	if !ed.inCanvas(x, y) {
		ed.sidebarClick(x, y)
		return
	}
	if ed.graph == nil {
		return
	}
	ed.quitArmed = false

	button := canvas.ButtonPrimary
	switch {
	case held&tcell.Button1 != 0:
	case held&tcell.Button2 != 0:
		button = canvas.ButtonSecondary
	case held&tcell.Button3 != 0:
		button = canvas.ButtonMiddle
	}
	ed.pressed = held
	ed.pressButton = button
	ed.pressX, ed.pressY = x, y
	ed.pressEdge = ed.edgeAt(x, y)

	res := ed.ctrl.PointerDown(canvas.PointerEvent{
		Position:  cellPoint(x, y),
		Button:    button,
		Modifiers: modifiers(mod),
		Target:    ed.nodeAt(x, y),
	})
	if res.Gesture == canvas.GestureCreate {
		ed.showMessage("Node created", MsgSuccess)
	}
}

func (ed *Editor) pointerUp(x, y int) {
	ed.pressed = 0
	res := ed.ctrl.PointerUp(canvas.PointerEvent{
		Position: cellPoint(x, y),
		Button:   ed.pressButton,
		Target:   ed.nodeAt(x, y),
	})

	switch {
	case res.Err != nil:
		ed.showMessage("Cannot link: "+res.Err.Error(), MsgError)
	case res.EdgeID != "":
		ed.showMessage("Edge created", MsgSuccess)
	case res.Gesture == canvas.GesturePan && ed.pressEdge != "" && x == ed.pressX && y == ed.pressY:
		ed.canvas.SelectEdge(ed.pressEdge)
	}
	ed.pressEdge = ""
}

// sidebarClick selects a collection from the sidebar list.
func (ed *Editor) sidebarClick(x, y int) {
	cw, _ := ed.canvasSize()
	if x <= cw {
		return
	}
	i := y - sidebarListTop
	if i >= 0 && i < len(ed.world.Collections()) {
		ed.activate(i)
	}
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	if ed.mode == ModeInput {
		ed.handleInputKey(ev)
		return false
	}
	return ed.handleCanvasKey(ev)
}

func (ed *Editor) handleInputKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
	case tcell.KeyEnter:
		ed.mode = ModeCanvas
		if ed.inputAction != nil {
			ed.inputAction(strings.TrimSpace(string(ed.inputBuffer)))
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(ed.inputBuffer) == 0 {
			return
		}
		ed.inputBuffer = ed.inputBuffer[:len(ed.inputBuffer)-1]
		ed.inputChanged()
	case tcell.KeyRune:
		ed.inputBuffer = append(ed.inputBuffer, ev.Rune())
		ed.inputChanged()
	}
}

func (ed *Editor) inputChanged() {
	if ed.inputLive != nil {
		ed.inputLive(string(ed.inputBuffer))
	}
}

func (ed *Editor) handleCanvasKey(ev *tcell.EventKey) bool {
	cw, ch := ed.canvasSize()
	centre := cellPoint(cw/2, ch/2)

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyCtrlS:
		ed.save()
		return false
	case tcell.KeyEscape:
		ed.ctrl.Cancel()
		ed.canvas.ClearSelection()
		return false
	case tcell.KeyTab:
		ed.activate(ed.current + 1)
		return false
	case tcell.KeyBacktab:
		ed.activate(ed.current - 1)
		return false
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		if ed.presenter.Delete() {
			ed.showMessage("Deleted", MsgSuccess)
		}
		return false
	case tcell.KeyEnter:
		ed.editLabel()
		return false
	case tcell.KeyLeft:
		ed.pan(4*cellWidth, 0)
		return false
	case tcell.KeyRight:
		ed.pan(-4*cellWidth, 0)
		return false
	case tcell.KeyUp:
		ed.pan(0, 2*cellHeight)
		return false
	case tcell.KeyDown:
		ed.pan(0, -2*cellHeight)
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		if ed.modified && !ed.quitArmed {
			ed.quitArmed = true
			ed.showMessage("Unsaved changes: press q again to quit", MsgError)
			return false
		}
		return true
	case 's':
		ed.save()
	case 'n':
		ed.addNodeAt(centre)
	case 'e':
		ed.editLabel()
	case 'd':
		ed.editDescription()
	case 'k':
		ed.cycleKind()
	case 'c':
		ed.editStyle()
	case '+', '=':
		ed.ctrl.ZoomIn(centre)
	case '-':
		ed.ctrl.ZoomOut(centre)
	case '0':
		ed.ctrl.ResetView()
	case 'a':
		if ed.graph != nil {
			moved := worldfile.Arrange(ed.graph, worldfile.DefaultArrangeCenter, worldfile.DefaultArrangeRadius)
			ed.showMessage(fmt.Sprintf("Arranged %d nodes", moved), MsgSuccess)
		}
	case 'l':
		if ed.graph != nil {
			moved := worldfile.ArrangeLayered(ed.graph, worldfile.DefaultLayeredOptions())
			ed.showMessage(fmt.Sprintf("Layered %d nodes", moved), MsgSuccess)
		}
	case 'b':
		ed.pickBackground()
	case 'm':
		ed.prompt("New map: ", "", func(name string) {
			if name == "" {
				return
			}
			ed.world.AddMap(name, ed.cfg.Editor.MapWidth, ed.cfg.Editor.MapHeight, nil)
			ed.modified = true
			ed.activate(len(ed.world.Maps) - 1)
		})
	case 'g':
		ed.prompt("New graph: ", "", func(name string) {
			if name == "" {
				return
			}
			ed.world.AddGraph(name, nil)
			ed.modified = true
			ed.activate(len(ed.world.Collections()) - 1)
		})
	case 'X':
		if c, ok := ed.collection(); ok {
			ed.prompt(fmt.Sprintf("Remove %s %q? (y/n): ", c.Type, c.Name), "", func(answer string) {
				if answer != "y" {
					return
				}
				ed.world.Remove(c.ID)
				delete(ed.backgrounds, c.ID)
				ed.modified = true
				ed.activate(ed.current)
			})
		}
	}
	return false
}

func (ed *Editor) pan(dx, dy float64) {
	cam := ed.canvas.Camera()
	cam.Offset = cam.Offset.Add(geom.Pt(dx, dy))
	ed.canvas.SetCamera(cam)
}

func (ed *Editor) addNodeAt(p geom.Point) {
	if ed.graph == nil {
		return
	}
	kind := ed.cfg.CanvasOptions(nil).GraphKind
	if ed.graph.Type() == world.TypeMap {
		kind = world.KindLocation
	}
	id := ed.graph.AddNode(kind, ed.canvas.ToContent(p))
	ed.canvas.SelectNode(id)
	ed.showMessage("Node created", MsgSuccess)
}

func (ed *Editor) editLabel() {
	f, ok := ed.presenter.Fields()
	if !ok {
		return
	}
	ed.liveEdit("Label: ", f.Label, func(s string) {
		ed.presenter.SetLabel(s)
	})
}

func (ed *Editor) editDescription() {
	f, ok := ed.presenter.Fields()
	if !ok || f.Selection.Kind != canvas.SelectNode {
		return
	}
	ed.liveEdit("Description: ", f.Description, func(s string) {
		ed.presenter.SetDescription(s)
	})
}

// editStyle commits on Enter only: partial hex values are not colours.
func (ed *Editor) editStyle() {
	f, ok := ed.presenter.Fields()
	if !ok || f.Selection.Kind != canvas.SelectNode {
		return
	}
	ed.prompt("Colour (#rrggbb, empty for kind): ", f.Style, func(s string) {
		if !ed.presenter.SetStyle(s) {
			ed.showMessage("Not a colour: "+s, MsgError)
		}
	})
}

func (ed *Editor) cycleKind() {
	f, ok := ed.presenter.Fields()
	if !ok || f.Selection.Kind != canvas.SelectNode {
		return
	}
	next := world.Kinds[0]
	for i, k := range world.Kinds {
		if k == f.Kind {
			next = world.Kinds[(i+1)%len(world.Kinds)]
		}
	}
	ed.presenter.SetKind(next)
}

func (ed *Editor) pickBackground() {
	c, ok := ed.collection()
	if !ok || c.Type != world.TypeMap {
		ed.showMessage("Backgrounds belong to maps", MsgError)
		return
	}
	ed.prompt("Background image: ", "", func(path string) {
		if path != "" {
			ed.startBackground(c.ID, path)
		}
	})
}
