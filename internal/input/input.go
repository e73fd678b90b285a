// Package input turns key presses into overlay actions while the overlay
// is enabled.
package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ziadkadry99/gazeoverlay/internal/surface"
)

// Key identifies the keys the overlay reacts to.
type Key int

const (
	KeyOther Key = iota
	KeySpace
	KeyEscape
)

func (k Key) String() string {
	switch k {
	case KeySpace:
		return "space"
	case KeyEscape:
		return "escape"
	default:
		return "other"
	}
}

// ParseKey maps a key name ("space", "escape") to a Key.
func ParseKey(name string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "space":
		return KeySpace, nil
	case "escape", "esc":
		return KeyEscape, nil
	}
	return KeyOther, fmt.Errorf("unknown key %q", name)
}

// KeyEvent is one key-down.
type KeyEvent struct {
	Key Key
	// Repeat is set for auto-repeat key-downs.
	Repeat bool
	// Origin is the element the event was delivered to. When nil the
	// surface's focused element is used instead.
	Origin surface.Element
}

// Result tells the key source what happened to an event.
type Result struct {
	Handled bool
	// PreventDefault asks the source to suppress the key's normal effect
	// (scrolling, for space).
	PreventDefault bool
}

// Elements is the part of a surface the controller needs.
type Elements interface {
	Classify(e surface.Element) surface.Class
	Focused() surface.Element
	Activate(e surface.Element)
}

// Options configure a Controller.
type Options struct {
	Elements Elements
	// Current returns the highlighted element, or nil.
	Current func() surface.Element
	// Disable clears the persisted enabled flag and notifies listeners.
	Disable func(ctx context.Context) error
	Logger  *slog.Logger
}

// Controller handles space and escape. It is not safe for concurrent use.
type Controller struct {
	elements Elements
	current  func() surface.Element
	disable  func(ctx context.Context) error
	logger   *slog.Logger
	active   bool
}

// New validates options and returns an inactive controller.
func New(opts Options) (*Controller, error) {
	if opts.Elements == nil {
		return nil, errors.New("elements are required")
	}
	if opts.Current == nil {
		return nil, errors.New("current target function is required")
	}
	if opts.Disable == nil {
		return nil, errors.New("disable function is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		elements: opts.Elements,
		current:  opts.Current,
		disable:  opts.Disable,
		logger:   logger,
	}, nil
}

// SetActive attaches or detaches the controller.
func (c *Controller) SetActive(active bool) { c.active = active }

// Active reports whether the controller is attached.
func (c *Controller) Active() bool { return c.active }

// HandleKey processes one key-down. Storage failures from escape are
// logged, never returned.
func (c *Controller) HandleKey(ctx context.Context, ev KeyEvent) Result {
	if !c.active || ev.Repeat || ev.Key == KeyOther {
		return Result{}
	}
	if c.fromTextInput(ev.Origin) {
		return Result{}
	}

	switch ev.Key {
	case KeySpace:
		if target := c.current(); target != nil {
			c.logger.Debug("activating gaze target", "target", target.ElementID())
			c.elements.Activate(target)
		}
		return Result{Handled: true, PreventDefault: true}
	case KeyEscape:
		if err := c.disable(ctx); err != nil {
			c.logger.Warn("failed to disable overlay", "err", err)
		}
		return Result{Handled: true}
	}
	return Result{}
}

func (c *Controller) fromTextInput(origin surface.Element) bool {
	if origin == nil {
		origin = c.elements.Focused()
	}
	if origin == nil {
		return false
	}
	return c.elements.Classify(origin).TextInput
}
