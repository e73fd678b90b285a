// Package poll samples the gaze backend at a fixed cadence while the
// overlay is enabled.
//
// A Loop is single-flight: a tick that fires while the previous fetch is
// still outstanding is skipped. Every fetch is tagged with the generation
// that started it, and a completion whose generation is no longer current
// (because the loop was stopped, or stopped and restarted) is discarded.
//
// Loop methods and all callbacks run on the caller's event loop. Only the
// fetch itself runs on another goroutine, and its result is handed back
// through Options.Post.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ziadkadry99/gazeoverlay/internal/gaze"
)

// Scheduler invokes fn every d until stop is called. Implementations must
// deliver fn on the same goroutine that drives the Loop.
type Scheduler interface {
	Every(d time.Duration, fn func()) (stop func())
}

// Options configure a Loop.
type Options struct {
	Interval  time.Duration
	Fetcher   gaze.Fetcher
	Scheduler Scheduler
	// Post hands a fetch completion back to the event loop.
	Post func(func()) bool
	// Endpoint returns the backend base URL, or "" when none is configured.
	Endpoint func() string

	OnSample          func(gaze.Sample)
	OnNoSignal        func()
	OnMissingEndpoint func()

	Logger *slog.Logger
}

// Stats count what the loop has done since it was created.
type Stats struct {
	Ticks    int
	Skipped  int
	Fetches  int
	Failures int
	Stale    int
}

// Loop drives periodic sampling.
type Loop struct {
	opts   Options
	logger *slog.Logger

	ctx     context.Context
	running bool
	busy    bool
	gen     uint64
	stop    func()
	stats   Stats
}

// New validates options and returns a stopped loop.
func New(opts Options) (*Loop, error) {
	if opts.Interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if opts.Scheduler == nil {
		return nil, errors.New("scheduler is required")
	}
	if opts.Post == nil {
		return nil, errors.New("post function is required")
	}
	if opts.Endpoint == nil {
		return nil, errors.New("endpoint function is required")
	}
	if opts.OnSample == nil {
		opts.OnSample = func(gaze.Sample) {}
	}
	if opts.OnNoSignal == nil {
		opts.OnNoSignal = func() {}
	}
	if opts.OnMissingEndpoint == nil {
		opts.OnMissingEndpoint = func() {}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{opts: opts, logger: logger}, nil
}

// Start begins sampling: one cycle runs immediately and then one per
// interval. ctx bounds in-flight fetches and should live as long as the
// process, not the enable period. Starting a running loop does nothing.
func (l *Loop) Start(ctx context.Context) {
	if l.running {
		return
	}
	l.running = true
	l.gen++
	l.ctx = ctx
	gen := l.gen

	l.tick(gen)
	if !l.running || l.gen != gen {
		return
	}
	l.stop = l.opts.Scheduler.Every(l.opts.Interval, func() { l.tick(gen) })
}

// Stop cancels the timer, clears the busy flag and emits no-signal. An
// outstanding fetch is left to finish; its result is discarded. Stopping a
// stopped loop does nothing.
func (l *Loop) Stop() {
	if !l.running {
		return
	}
	l.running = false
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
	l.busy = false
	l.gen++
	l.opts.OnNoSignal()
}

// Running reports whether the loop is started.
func (l *Loop) Running() bool { return l.running }

// Busy reports whether a fetch for the current generation is outstanding.
func (l *Loop) Busy() bool { return l.busy }

// Stats returns a copy of the loop counters.
func (l *Loop) Stats() Stats { return l.stats }

func (l *Loop) tick(gen uint64) {
	l.stats.Ticks++
	if !l.running || gen != l.gen {
		return
	}
	if l.busy {
		l.stats.Skipped++
		l.logger.Debug("poll tick skipped, fetch outstanding")
		return
	}

	endpoint := l.opts.Endpoint()
	if endpoint == "" {
		l.logger.Warn("poll tick without backend endpoint, stopping")
		l.Stop()
		l.opts.OnMissingEndpoint()
		return
	}

	l.busy = true
	l.stats.Fetches++
	ctx := l.ctx
	go func() {
		sample, err := l.opts.Fetcher.Fetch(ctx, endpoint)
		l.opts.Post(func() { l.complete(gen, sample, err) })
	}()
}

func (l *Loop) complete(gen uint64, sample gaze.Sample, err error) {
	if !l.running || gen != l.gen {
		l.stats.Stale++
		l.logger.Debug("stale gaze sample discarded", "generation", gen)
		return
	}
	l.busy = false
	if err != nil {
		l.stats.Failures++
		l.logger.Debug("gaze fetch failed", "err", err)
		l.opts.OnNoSignal()
		return
	}
	l.opts.OnSample(sample)
}
