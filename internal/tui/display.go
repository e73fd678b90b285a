// Package tui renders the overlay onto a terminal with tcell. The terminal
// is treated as a viewport of virtual pixels, CellWidth by CellHeight per
// cell, so the same mapping and hit testing apply as for a pixel display.
package tui

import (
	"fmt"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/ziadkadry99/gazeoverlay/internal/geom"
	"github.com/ziadkadry99/gazeoverlay/internal/surface"
)

// Node kinds used by the demo scene.
const (
	KindButton = "button"
	KindField  = "input/text"
	KindLabel  = "span"
)

const indicatorRune = '●'

var (
	styleText      = tcell.StyleDefault
	styleButton    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHighlight = tcell.StyleDefault.Foreground(tcell.ColorYellow).Reverse(true)
	styleField     = tcell.StyleDefault.Underline(true)
	styleFocused   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Underline(true)
	styleIndicator = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Options configure a Display.
type Options struct {
	CellWidth      float64
	CellHeight     float64
	Marker         string
	TextInputKinds []string
}

// Display is a terminal Surface and Indicator. Apart from Editing, its
// methods must be called from the overlay's event loop.
type Display struct {
	*surface.Tree

	screen       tcell.Screen
	cellW, cellH float64

	point   *geom.Point
	field   *surface.Node
	status  *surface.Node
	buttons []*surface.Node
	enabled bool

	editing atomic.Bool
}

// NewDisplay builds the demo scene sized to an initialised screen.
func NewDisplay(screen tcell.Screen, opts Options) *Display {
	d := &Display{
		screen: screen,
		cellW:  opts.CellWidth,
		cellH:  opts.CellHeight,
	}
	cols, rows := screen.Size()
	d.Tree = surface.NewTree(d.viewport(cols, rows), opts.Marker, opts.TextInputKinds)
	d.build(opts.Marker)
	d.layout(cols, rows)
	return d
}

func (d *Display) viewport(cols, rows int) geom.Size {
	return geom.Size{Width: float64(cols) * d.cellW, Height: float64(rows) * d.cellH}
}

// build creates the scene: a grid of activatable buttons, each holding an
// unmarked caption, plus a text field and a status line.
func (d *Display) build(marker string) {
	title := &surface.Node{ID: "title", Kind: KindLabel, Label: "gazeoverlay: look at a button, press space; esc turns the overlay off"}
	d.Root.Append(title)

	for i := 1; i <= 6; i++ {
		id := fmt.Sprintf("button-%d", i)
		b := &surface.Node{
			ID:    id,
			Kind:  KindButton,
			Label: fmt.Sprintf("Button %d", i),
			Attrs: map[string]string{marker: ""},
		}
		b.OnActivate = func() { d.SetStatus("activated " + b.Label) }
		b.Append(&surface.Node{ID: id + "-caption", Kind: KindLabel, Label: b.Label})
		d.buttons = append(d.buttons, b)
		d.Root.Append(b)
	}

	d.field = &surface.Node{ID: "note", Kind: KindField}
	d.status = &surface.Node{ID: "status", Kind: KindLabel, Label: "overlay off"}
	d.Root.Append(d.field, d.status)
}

// layout positions every node for a cols x rows terminal.
func (d *Display) layout(cols, rows int) {
	cell := func(x, y, w, h int) geom.Rect {
		return geom.Rect{
			X:      float64(x) * d.cellW,
			Y:      float64(y) * d.cellH,
			Width:  float64(max(w, 0)) * d.cellW,
			Height: float64(max(h, 0)) * d.cellH,
		}
	}

	nodes := d.Root.Children()
	nodes[0].Bounds = cell(1, 0, cols-2, 1)

	const perRow, buttonH, gap = 3, 3, 2
	buttonW := (cols - 2 - gap*(perRow-1)) / perRow
	for i, b := range d.buttons {
		x := 1 + (i%perRow)*(buttonW+gap)
		y := 2 + (i/perRow)*(buttonH+1)
		b.Bounds = cell(x, y, buttonW, buttonH)
		b.Children()[0].Bounds = cell(x+1, y+1, buttonW-2, 1)
	}

	fieldY := 2 + 2*(buttonH+1) + 1
	d.field.Bounds = cell(1, fieldY, cols-2, 1)
	d.status.Bounds = cell(1, rows-1, cols-2, 1)
}

// Resize re-reads the terminal size and lays the scene out again.
func (d *Display) Resize() {
	cols, rows := d.screen.Size()
	d.Tree.Resize(d.viewport(cols, rows))
	d.layout(cols, rows)
}

// Show places the gaze indicator.
func (d *Display) Show(p geom.Point) { d.point = &p }

// Hide removes the gaze indicator.
func (d *Display) Hide() { d.point = nil }

// Indicator returns the indicator position, or nil when hidden.
func (d *Display) Indicator() *geom.Point { return d.point }

// SetEnabled updates the status line for an overlay state change.
func (d *Display) SetEnabled(enabled bool) {
	if enabled == d.enabled {
		return
	}
	d.enabled = enabled
	if enabled {
		d.SetStatus("overlay on")
	} else {
		d.SetStatus("overlay off")
	}
}

// SetStatus replaces the status line.
func (d *Display) SetStatus(s string) { d.status.Label = s }

// Status returns the status line.
func (d *Display) Status() string { return d.status.Label }

// Field returns the text field node.
func (d *Display) Field() *surface.Node { return d.field }

// Button returns the i-th button, counting from 1.
func (d *Display) Button(i int) *surface.Node { return d.buttons[i-1] }

// ToggleFocus moves keyboard focus onto or off the text field.
func (d *Display) ToggleFocus() {
	if d.Focused() == nil {
		d.Focus(d.field)
		d.editing.Store(true)
		return
	}
	d.Blur()
}

// Blur clears keyboard focus.
func (d *Display) Blur() {
	d.Focus(nil)
	d.editing.Store(false)
}

// Editing reports whether the text field has focus. Safe from any
// goroutine.
func (d *Display) Editing() bool { return d.editing.Load() }

// Type appends r to the text field when it has focus.
func (d *Display) Type(r rune) {
	if d.Focused() != surface.Element(d.field) {
		return
	}
	d.field.Label += string(r)
}

// Backspace deletes the last rune of the text field when it has focus.
func (d *Display) Backspace() {
	if d.Focused() != surface.Element(d.field) {
		return
	}
	if r := []rune(d.field.Label); len(r) > 0 {
		d.field.Label = string(r[:len(r)-1])
	}
}
