package input

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ziadkadry99/gazeoverlay/internal/geom"
	"github.com/ziadkadry99/gazeoverlay/internal/surface"
)

const marker = "data-gaze-activatable"

type fixture struct {
	tree     *surface.Tree
	button   *surface.Node
	field    *surface.Node
	current  surface.Element
	disabled int
	err      error
	ctrl     *Controller
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{logs: &bytes.Buffer{}}
	f.tree = surface.NewTree(geom.Size{Width: 400, Height: 300}, marker, []string{"input", "textarea"})
	f.button = &surface.Node{ID: "ok", Kind: "button", Bounds: geom.Rect{Width: 100, Height: 40}, Attrs: map[string]string{marker: ""}}
	f.field = &surface.Node{ID: "name", Kind: "input", Bounds: geom.Rect{Y: 100, Width: 200, Height: 30}}
	f.tree.Root.Append(f.button, f.field)

	ctrl, err := New(Options{
		Elements: f.tree,
		Current:  func() surface.Element { return f.current },
		Disable: func(context.Context) error {
			f.disabled++
			return f.err
		},
		Logger: slog.New(slog.NewTextHandler(f.logs, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctrl.SetActive(true)
	f.ctrl = ctrl
	return f
}

func TestSpaceActivatesHighlightedTargetOnce(t *testing.T) {
	f := newFixture(t)
	f.current = f.button

	res := f.ctrl.HandleKey(context.Background(), KeyEvent{Key: KeySpace})
	if !res.Handled || !res.PreventDefault {
		t.Errorf("result = %+v, want handled and prevent default", res)
	}
	if got := f.tree.Activations(f.button); got != 1 {
		t.Errorf("activations = %d, want 1", got)
	}
}

func TestSpaceWithoutTargetIsNoop(t *testing.T) {
	f := newFixture(t)

	res := f.ctrl.HandleKey(context.Background(), KeyEvent{Key: KeySpace})
	if !res.PreventDefault {
		t.Error("space should still prevent scrolling")
	}
	if got := f.tree.Activations(f.button); got != 0 {
		t.Errorf("activations = %d, want 0", got)
	}
}

func TestEscapeDisables(t *testing.T) {
	f := newFixture(t)

	res := f.ctrl.HandleKey(context.Background(), KeyEvent{Key: KeyEscape})
	if !res.Handled || res.PreventDefault {
		t.Errorf("result = %+v", res)
	}
	if f.disabled != 1 {
		t.Errorf("disable calls = %d, want 1", f.disabled)
	}
}

func TestEscapeWriteFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.err = errors.New("disk full")

	res := f.ctrl.HandleKey(context.Background(), KeyEvent{Key: KeyEscape})
	if !res.Handled {
		t.Error("escape should be handled even when the write fails")
	}
	if !strings.Contains(f.logs.String(), "disk full") {
		t.Errorf("expected failure in logs, got %q", f.logs.String())
	}
}

func TestIgnoredEvents(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fixture)
		ev    func(*fixture) KeyEvent
	}{
		{
			name:  "inactive",
			setup: func(f *fixture) { f.ctrl.SetActive(false) },
			ev:    func(*fixture) KeyEvent { return KeyEvent{Key: KeySpace} },
		},
		{
			name:  "auto repeat",
			setup: func(*fixture) {},
			ev:    func(*fixture) KeyEvent { return KeyEvent{Key: KeySpace, Repeat: true} },
		},
		{
			name:  "origin is text input",
			setup: func(*fixture) {},
			ev:    func(f *fixture) KeyEvent { return KeyEvent{Key: KeySpace, Origin: f.field} },
		},
		{
			name:  "focused text input",
			setup: func(f *fixture) { f.tree.Focus(f.field) },
			ev:    func(*fixture) KeyEvent { return KeyEvent{Key: KeyEscape} },
		},
		{
			name:  "other key",
			setup: func(*fixture) {},
			ev:    func(*fixture) KeyEvent { return KeyEvent{Key: KeyOther} },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.current = f.button
			tt.setup(f)

			res := f.ctrl.HandleKey(context.Background(), tt.ev(f))
			if res != (Result{}) {
				t.Errorf("result = %+v, want zero", res)
			}
			if f.tree.Activations(f.button) != 0 || f.disabled != 0 {
				t.Error("ignored event had an effect")
			}
		})
	}
}

func TestFocusedButtonDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.current = f.button
	f.tree.Focus(f.button)

	f.ctrl.HandleKey(context.Background(), KeyEvent{Key: KeySpace})
	if f.tree.Activations(f.button) != 1 {
		t.Error("focus on a non-text element should not suppress activation")
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
		err  bool
	}{
		{"space", KeySpace, false},
		{" Escape ", KeyEscape, false},
		{"esc", KeyEscape, false},
		{"enter", KeyOther, true},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseKey(%q) = %v, %v", tt.in, got, err)
		}
	}
}
