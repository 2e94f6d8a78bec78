package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/ha1tch/worldcanvas/pkg/canvas"
	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/markup"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

// Styles
var (
	styleDefault   = tcell.StyleDefault
	styleTitle     = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorWhite)
	styleNode      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleNodeSel   = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	styleEdge      = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleEdgeSel   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLink      = tcell.StyleDefault.Foreground(tcell.NewRGBColor(200, 162, 200)) // Lilac
	styleFrame     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSidebar   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebarH  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleCurrent   = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo   = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError  = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSucces = tcell.StyleDefault.Foreground(tcell.ColorLime).Background(tcell.ColorNavy)
	styleHelp      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInput     = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// First sidebar row of the collection list.
const sidebarListTop = 3

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	ed.drawCanvas()
	ed.drawSidebar(w, h)
	if ed.mode == ModeInput {
		ed.drawInputBox(w, h)
	}
	ed.drawStatusBar(w, h)
}

func (ed *Editor) drawCanvas() {
	cw, ch := ed.canvasSize()
	if ed.graph == nil {
		ed.drawString(2, 1, "No maps or graphs. m: new map  g: new graph", styleHelp, cw)
		return
	}
	c, _ := ed.collection()
	if c.Type == world.TypeMap {
		ed.drawMapArea(c, cw, ch)
	}

	sel := ed.canvas.Selection()
	for _, e := range ed.graph.Edges() {
		a, okA := ed.graph.Node(e.SourceID)
		b, okB := ed.graph.Node(e.TargetID)
		if !okA || !okB {
			continue
		}
		style := styleEdge
		if sel.Kind == canvas.SelectEdge && sel.ID == e.ID {
			style = styleEdgeSel
		}
		ed.drawSegment(a.Position, b.Position, '·', style, cw, ch)
		if e.Label != "" {
			if lx, ly, ok := ed.edgeLabelCell(e); ok && ly >= 0 && ly < ch {
				ed.drawString(lx, ly, e.Label, style, cw)
			}
		}
	}

	if from, to, ok := ed.ctrl.Preview(); ok {
		ed.drawSegment(from, to, '∙', styleLink, cw, ch)
	}

	for _, n := range ed.graph.Nodes() {
		x, y := screenCell(ed.canvas.ToScreen(n.Position))
		if y < 0 || y >= ch || x >= cw || x+nodeWidth(n) <= 0 {
			continue
		}
		marker := styleNode.Foreground(tcell.GetColor(n.Color()))
		label := styleNode
		if sel.Kind == canvas.SelectNode && sel.ID == n.ID {
			label = styleNodeSel
		}
		if x >= 0 {
			ed.screen.SetContent(x, y, '●', nil, marker)
		}
		ed.drawString(x+2, y, n.Label, label, cw)
	}
}

// drawMapArea fills the cells inside the map frame with the map colour,
// or with the background image sampled at each cell centre.
func (ed *Editor) drawMapArea(c world.Collection, cw, ch int) {
	base := tcell.GetColor(c.Color)
	bg := ed.backgrounds[c.ID]
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			p := ed.canvas.ToContent(cellPoint(x, y))
			if p.X < 0 || p.Y < 0 || p.X >= float64(c.Width) || p.Y >= float64(c.Height) {
				continue
			}
			color := base
			if bg != nil {
				b := bg.Bounds()
				ix := b.Min.X + int(p.X*float64(b.Dx())/float64(c.Width))
				iy := b.Min.Y + int(p.Y*float64(b.Dy())/float64(c.Height))
				r, g, bl, _ := bg.At(ix, iy).RGBA()
				color = tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(bl>>8))
			}
			ed.screen.SetContent(x, y, ' ', nil, styleDefault.Background(color))
		}
	}
}

// drawSegment plots a content-space segment cell by cell.
func (ed *Editor) drawSegment(from, to geom.Point, r rune, style tcell.Style, cw, ch int) {
	x0, y0 := screenCell(ed.canvas.ToScreen(from))
	x1, y1 := screenCell(ed.canvas.ToScreen(to))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for steps := 0; steps <= dx-dy; steps++ {
		if x0 >= 0 && x0 < cw && y0 >= 0 && y0 < ch {
			_, _, st, _ := ed.screen.GetContent(x0, y0)
			ed.screen.SetContent(x0, y0, r, nil, style.Background(backgroundOf(st)))
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func backgroundOf(st tcell.Style) tcell.Color {
	_, bg, _ := st.Decompose()
	return bg
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (ed *Editor) drawSidebar(w, h int) {
	cw, _ := ed.canvasSize()
	for y := 0; y < h-2; y++ {
		ed.screen.SetContent(cw, y, '│', nil, styleBorder)
	}
	x := cw + 2
	ed.drawString(x, 0, ed.world.Name, styleTitle, w)
	ed.drawString(x, sidebarListTop-1, "Collections", styleSidebarH, w)

	row := sidebarListTop
	for i, c := range ed.world.Collections() {
		style := styleSidebar
		if ed.graph != nil && i == ed.current {
			style = styleCurrent
		}
		line := fmt.Sprintf("%-5s %s", c.Type, c.Name)
		ed.drawString(x, row, runewidth.FillRight(runewidth.Truncate(line, w-x-1, "…"), w-x-1), style, w)
		row++
	}

	f, ok := ed.presenter.Fields()
	if !ok {
		return
	}
	row++
	switch f.Selection.Kind {
	case canvas.SelectNode:
		ed.drawString(x, row, "Node", styleSidebarH, w)
		row++
		row = ed.drawField(x, row, w, "Label", f.Label)
		row = ed.drawField(x, row, w, "Kind", string(f.Kind))
		colour := f.Style
		if colour == "" {
			colour = world.KindColor(f.Kind) + " (kind)"
		}
		row = ed.drawField(x, row, w, "Colour", colour)
		if f.Description != "" {
			row++
			ed.drawDescription(x, row, w, h-3, f.Description)
		}
	case canvas.SelectEdge:
		ed.drawString(x, row, "Edge", styleSidebarH, w)
		row++
		row = ed.drawField(x, row, w, "Label", f.Label)
		row = ed.drawField(x, row, w, "From", ed.nodeLabel(f.SourceID))
		ed.drawField(x, row, w, "To", ed.nodeLabel(f.TargetID))
	}
}

func (ed *Editor) drawField(x, y, maxX int, name, value string) int {
	ed.drawString(x, y, name+":", styleHelp, maxX)
	ed.drawString(x+8, y, value, styleSidebar, maxX)
	return y + 1
}

func (ed *Editor) nodeLabel(id string) string {
	if n, ok := ed.graph.Node(id); ok {
		return n.Label
	}
	return id
}

// drawDescription word-wraps a description, rendering **bold** and
// *italic* spans.
func (ed *Editor) drawDescription(x0, y, maxX, maxY int, text string) {
	x := x0
	for _, span := range markup.Split(text) {
		style := styleSidebar
		switch span.Style {
		case markup.Bold:
			style = style.Bold(true)
		case markup.Italic:
			style = style.Italic(true)
		}
		for _, word := range strings.SplitAfter(span.Text, " ") {
			if strings.Contains(word, "\n") {
				// paragraph breaks restart the line
				for i, part := range strings.Split(word, "\n") {
					if i > 0 {
						x, y = x0, y+1
					}
					x = ed.drawWord(x0, &y, x, maxX, maxY, part, style)
				}
				continue
			}
			x = ed.drawWord(x0, &y, x, maxX, maxY, word, style)
		}
		if y >= maxY {
			return
		}
	}
}

func (ed *Editor) drawWord(x0 int, y *int, x, maxX, maxY int, word string, style tcell.Style) int {
	width := runewidth.StringWidth(word)
	if x+width > maxX && x > x0 {
		x, *y = x0, *y+1
	}
	if *y >= maxY {
		return x
	}
	return ed.drawString(x, *y, word, style, maxX)
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	fileInfo := filepath.Base(ed.filename)
	if ed.modified {
		fileInfo += " *"
	}
	ed.drawString(1, y, fileInfo, styleStatus, w)

	mode := ed.modeString()
	ed.drawString(w/2-len(mode)/2, y, mode, styleStatus, w)

	if ed.message != "" {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgSucces
		}
		if flashInverted(time.Duration(time.Now().UnixMilli()-ed.flashStart.Load()) * time.Millisecond) {
			style = style.Reverse(true)
		}
		ed.drawString(w-runewidth.StringWidth(ed.message)-2, y, ed.message, style, w)
	}

	y = h - 2
	ed.drawString(1, y, ed.helpString(), styleHelp, w)
}

// flashInverted reports whether a message shown elapsed ago is drawn
// inverted. New messages flash twice: normal, inverted, normal, inverted,
// 125ms each.
func flashInverted(elapsed time.Duration) bool {
	if elapsed < 0 || elapsed >= 500*time.Millisecond {
		return false
	}
	phase := elapsed / (125 * time.Millisecond)
	return phase == 1 || phase == 3
}

func (ed *Editor) drawInputBox(w, h int) {
	boxW := min(60, w-4)
	boxX := (w - boxW) / 2
	boxY := (h - 3) / 2

	ed.drawBox(boxX, boxY, boxW, 3, styleInput)
	x := ed.drawString(boxX+2, boxY+1, ed.inputPrompt, styleInput, boxX+boxW-1)
	input := string(ed.inputBuffer) + "_"
	// keep the end of long input visible
	for runewidth.StringWidth(input) > boxX+boxW-2-x && len(input) > 1 {
		_, size := utf8.DecodeRuneInString(input)
		input = input[size:]
	}
	ed.drawString(x, boxY+1, input, styleInput, boxX+boxW-1)
}

func (ed *Editor) drawBox(x, y, w, h int, style tcell.Style) {
	ed.screen.SetContent(x, y, '┌', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	ed.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)

	for i := x + 1; i < x+w-1; i++ {
		ed.screen.SetContent(i, y, '─', nil, styleBorder)
		ed.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}
	for i := y + 1; i < y+h-1; i++ {
		ed.screen.SetContent(x, i, '│', nil, styleBorder)
		ed.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			ed.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

// drawString draws s from x, advancing by each rune's cell width and
// stopping before maxX. It returns the next free column.
func (ed *Editor) drawString(x, y int, s string, style tcell.Style, maxX int) int {
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > maxX {
			break
		}
		if x >= 0 {
			ed.screen.SetContent(x, y, r, nil, style)
		}
		x += rw
	}
	return x
}

func (ed *Editor) modeString() string {
	if ed.mode == ModeInput {
		return "INPUT"
	}
	zoom := fmt.Sprintf("%.0f%%", ed.canvas.Camera().Scale*100)
	switch ed.ctrl.State() {
	case canvas.StatePanning:
		return "PAN " + zoom
	case canvas.StateDragging:
		return "MOVE " + zoom
	case canvas.StateLinking:
		return "LINK " + zoom
	}
	return zoom
}

func (ed *Editor) helpString() string {
	if ed.mode == ModeInput {
		return "Type text  Enter:Confirm  Esc:Cancel"
	}
	return "RClick:Add  Drag:Move  Shift+Drag:Link  Wheel:Zoom  Tab:Next  n:Node  e:Label  d:Desc  k:Kind  c:Colour  Del:Delete  a/l:Arrange  b:Background  m/g:New  s:Save  q:Quit"
}
