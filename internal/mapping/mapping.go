// Package mapping converts backend gaze samples into clamped viewport points.
package mapping

import (
	"github.com/ziadkadry99/gazeoverlay/internal/gaze"
	"github.com/ziadkadry99/gazeoverlay/internal/geom"
	"github.com/ziadkadry99/gazeoverlay/internal/settings"
)

// DefaultMargin keeps the point away from viewport edges, where elements
// are rarely targetable reliably.
const DefaultMargin = 12

// Mapper maps samples with a fixed edge margin.
type Mapper struct {
	Margin float64
}

// Map returns the screen point for sample s. A calibrated position is used
// only when calibration is known; otherwise the normalized pupil position
// is scaled to the viewport. ok is false when there is no usable signal.
func (m Mapper) Map(s gaze.Sample, cal *settings.Calibration, viewport geom.Size) (p geom.Point, ok bool) {
	switch {
	case s.CalibratedPosition != nil && cal != nil:
		p = geom.Point{
			X: s.CalibratedPosition.X * (viewport.Width / cal.Width),
			Y: s.CalibratedPosition.Y * (viewport.Height / cal.Height),
		}
	case s.NormalizedPupil != nil:
		p = geom.Point{
			X: s.NormalizedPupil.X * viewport.Width,
			Y: s.NormalizedPupil.Y * viewport.Height,
		}
	default:
		return geom.Point{}, false
	}

	if !p.Finite() {
		return geom.Point{}, false
	}

	return geom.Point{
		X: geom.Clamp(p.X, m.Margin, viewport.Width-m.Margin),
		Y: geom.Clamp(p.Y, m.Margin, viewport.Height-m.Margin),
	}, true
}

// Map uses DefaultMargin.
func Map(s gaze.Sample, cal *settings.Calibration, viewport geom.Size) (geom.Point, bool) {
	return Mapper{Margin: DefaultMargin}.Map(s, cal, viewport)
}
