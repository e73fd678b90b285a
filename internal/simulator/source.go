// Package simulator serves a synthetic eye-tracking backend so the overlay
// can run without real hardware.
package simulator

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ziadkadry99/gazeoverlay/internal/config"
	"github.com/ziadkadry99/gazeoverlay/internal/gaze"
)

// Options configure a Source.
type Options struct {
	Mode config.SimulatorMode
	// Width and Height are the calibration space for calibrated positions.
	Width  float64
	Height float64
	// Period is the time for one full trip around the path.
	Period time.Duration
	// FailEvery makes every n-th request fail. Zero never fails.
	FailEvery int
	Clock     func() time.Time
}

// Source produces samples along a Lissajous path.
type Source struct {
	opts  Options
	start time.Time

	mu    sync.Mutex
	count int
}

// NewSource validates options and returns a source whose path starts now.
func NewSource(opts Options) (*Source, error) {
	switch opts.Mode {
	case config.ModeCalibrated, config.ModeNormalized, config.ModeMixed, config.ModeEmpty:
	default:
		return nil, fmt.Errorf("unknown mode %q", opts.Mode)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errors.New("width and height must be positive")
	}
	if opts.Period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if opts.FailEvery < 0 {
		return nil, errors.New("fail every must not be negative")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Source{opts: opts, start: opts.Clock()}, nil
}

// Next returns the sample for the current request. ok is false when this
// request should fail.
func (s *Source) Next() (sample gaze.Sample, ok bool) {
	s.mu.Lock()
	s.count++
	n := s.count
	s.mu.Unlock()

	if s.opts.FailEvery > 0 && n%s.opts.FailEvery == 0 {
		return gaze.Sample{}, false
	}
	return s.At(s.opts.Clock().Sub(s.start)), true
}

// At returns the sample at elapsed time t along the path.
func (s *Source) At(t time.Duration) gaze.Sample {
	nx, ny := lissajous(float64(t) / float64(s.opts.Period))

	var out gaze.Sample
	switch s.opts.Mode {
	case config.ModeCalibrated:
		out.CalibratedPosition = &gaze.Vector{X: nx * s.opts.Width, Y: ny * s.opts.Height}
	case config.ModeNormalized:
		out.NormalizedPupil = &gaze.Vector{X: nx, Y: ny}
	case config.ModeMixed:
		out.CalibratedPosition = &gaze.Vector{X: nx * s.opts.Width, Y: ny * s.opts.Height}
		out.NormalizedPupil = &gaze.Vector{X: nx, Y: ny}
	}
	return out
}

// Requests returns how many samples have been requested.
func (s *Source) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// lissajous maps a phase in cycles to a point in [0.05, 0.95]^2 using a
// 3:2 frequency ratio.
func lissajous(cycles float64) (x, y float64) {
	theta := 2 * math.Pi * cycles
	return 0.5 + 0.45*math.Sin(3*theta+math.Pi/2), 0.5 + 0.45*math.Sin(2*theta)
}
