// Package gaze talks to the eye-tracking backend.
package gaze

import (
	"encoding/json"
	"math"
)

// Kind classifies which fields a sample carries.
type Kind string

const (
	KindCalibrated Kind = "calibrated"
	KindNormalized Kind = "normalized"
	KindEmpty      Kind = "empty"
)

// Vector is an (x, y) pair reported by the backend. A missing or null
// component decodes to NaN so the mapper treats it as no signal.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v *Vector) UnmarshalJSON(b []byte) error {
	var raw struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v.X, v.Y = math.NaN(), math.NaN()
	if raw.X != nil {
		v.X = *raw.X
	}
	if raw.Y != nil {
		v.Y = *raw.Y
	}
	return nil
}

// Sample is one /api/gaze response.
type Sample struct {
	CalibratedPosition *Vector `json:"calibrated_position,omitempty"`
	NormalizedPupil    *Vector `json:"normalized_pupil,omitempty"`
}

// Kind reports the highest-priority field present.
func (s Sample) Kind() Kind {
	switch {
	case s.CalibratedPosition != nil:
		return KindCalibrated
	case s.NormalizedPupil != nil:
		return KindNormalized
	default:
		return KindEmpty
	}
}
