// Package highlight keeps at most one element marked as the current gaze
// target.
package highlight

import (
	"github.com/ziadkadry99/gazeoverlay/internal/surface"
)

// Marker applies and removes the visual highlight.
type Marker interface {
	Mark(e surface.Element)
	Unmark(e surface.Element)
}

// Manager owns the single highlighted element. It is not safe for
// concurrent use; the overlay calls it from its event loop only.
type Manager struct {
	marker  Marker
	current surface.Element
}

// New creates a Manager that marks elements through m.
func New(m Marker) *Manager {
	return &Manager{marker: m}
}

// Apply makes target the highlighted element. Re-applying the current
// target does nothing; a nil target clears the highlight. The previous
// element is always unmarked before the new one is marked. Apply reports
// whether anything changed.
func (m *Manager) Apply(target surface.Element) bool {
	if target == m.current {
		return false
	}
	if m.current != nil {
		m.marker.Unmark(m.current)
		m.current = nil
	}
	if target == nil {
		return true
	}
	m.marker.Mark(target)
	m.current = target
	return true
}

// Clear removes any highlight.
func (m *Manager) Clear() bool {
	return m.Apply(nil)
}

// Current returns the highlighted element, or nil.
func (m *Manager) Current() surface.Element {
	return m.current
}
