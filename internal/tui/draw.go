package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/ziadkadry99/gazeoverlay/internal/geom"
	"github.com/ziadkadry99/gazeoverlay/internal/surface"
)

// cellRect converts virtual-pixel bounds to whole cells.
func (d *Display) cellRect(r geom.Rect) (x, y, w, h int) {
	return int(r.X / d.cellW), int(r.Y / d.cellH), int(r.Width / d.cellW), int(r.Height / d.cellH)
}

// Draw repaints the whole screen.
func (d *Display) Draw() {
	d.screen.Clear()
	for _, n := range d.Root.Children() {
		switch n.Kind {
		case KindButton:
			d.drawButton(n)
		case KindField:
			d.drawField(n)
		default:
			style := styleText
			if n == d.status {
				style = styleStatus
			}
			x, y, w, _ := d.cellRect(n.Bounds)
			d.drawText(x, y, w, n.Label, style)
		}
	}
	if d.point != nil {
		cx, cy := int(d.point.X/d.cellW), int(d.point.Y/d.cellH)
		d.screen.SetContent(cx, cy, indicatorRune, nil, styleIndicator)
	}
	d.screen.Show()
}

func (d *Display) drawButton(n *surface.Node) {
	style := styleButton
	if d.IsMarked(n) {
		style = styleHighlight
	}
	x, y, w, h := d.cellRect(n.Bounds)
	if w < 2 || h < 2 {
		return
	}
	for i := x; i < x+w; i++ {
		for j := y; j < y+h; j++ {
			ch := ' '
			switch {
			case (i == x || i == x+w-1) && (j == y || j == y+h-1):
				ch = '+'
			case j == y || j == y+h-1:
				ch = '-'
			case i == x || i == x+w-1:
				ch = '|'
			}
			d.screen.SetContent(i, j, ch, nil, style)
		}
	}
	if caption := n.Children(); len(caption) > 0 {
		cx, cy, cw, _ := d.cellRect(caption[0].Bounds)
		d.drawText(cx, cy, cw, caption[0].Label, style)
	}
}

func (d *Display) drawField(n *surface.Node) {
	style := styleField
	prompt := "note: "
	if d.Focused() == surface.Element(n) {
		style = styleFocused
		prompt = "note> "
	}
	x, y, w, _ := d.cellRect(n.Bounds)
	text := prompt + n.Label
	for i := 0; i < w; i++ {
		d.screen.SetContent(x+i, y, ' ', nil, style)
	}
	d.drawText(x, y, w, text, style)
}

func (d *Display) drawText(x, y, w int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		if i >= w {
			return
		}
		d.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}
