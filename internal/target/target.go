// Package target finds the gaze-activatable element under a screen point.
package target

import (
	"github.com/ziadkadry99/gazeoverlay/internal/geom"
	"github.com/ziadkadry99/gazeoverlay/internal/surface"
)

// Resolve hit-tests p and walks up to the nearest activatable ancestor,
// including the hit element itself. It returns nil when none exists.
func Resolve(s surface.Surface, p geom.Point) surface.Element {
	for e := s.HitTest(p); e != nil; e = s.Parent(e) {
		if s.Classify(e).Activatable {
			return e
		}
	}
	return nil
}
