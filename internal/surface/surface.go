// Package surface is the boundary between the overlay engine and whatever UI
// runtime renders it. The engine only hit-tests, classifies, marks and
// activates elements through these interfaces.
package surface

import "github.com/ziadkadry99/gazeoverlay/internal/geom"

// Element is an opaque reference to a rendered UI element. Implementations
// must be comparable (normally pointers) because the highlight state is
// tracked by identity.
type Element interface {
	ElementID() string
}

// Class describes how the overlay may treat an element.
type Class struct {
	// Activatable is set when the element carries the activation marker.
	Activatable bool
	// TextInput is set for elements that take typed text.
	TextInput bool
}

// Surface is the capability set a UI runtime provides.
type Surface interface {
	// Viewport returns the current viewport size in pixels.
	Viewport() geom.Size
	// HitTest returns the topmost rendered element at p, or nil.
	HitTest(p geom.Point) Element
	// Parent returns e's parent, or nil at the root.
	Parent(e Element) Element
	Classify(e Element) Class
	// Focused returns the element holding keyboard focus, or nil.
	Focused() Element
	// Mark applies the highlight marker to e.
	Mark(e Element)
	// Unmark removes the highlight marker from e.
	Unmark(e Element)
	// Activate runs e's default action, as a click would.
	Activate(e Element)
}

// Indicator draws the gaze dot.
type Indicator interface {
	Show(p geom.Point)
	Hide()
}
