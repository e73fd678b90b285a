// Package overlay wires settings, polling, mapping, targeting, highlighting
// and key handling into one controller that owns the enable/disable
// lifecycle.
//
// All controller state lives on a single event loop. Settings signals,
// storage changes, fetch completions, timer ticks and key presses are all
// posted onto it, so no two of them ever interleave.
package overlay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/gazeoverlay/internal/broadcast"
	"github.com/ziadkadry99/gazeoverlay/internal/eventloop"
	"github.com/ziadkadry99/gazeoverlay/internal/gaze"
	"github.com/ziadkadry99/gazeoverlay/internal/geom"
	"github.com/ziadkadry99/gazeoverlay/internal/highlight"
	"github.com/ziadkadry99/gazeoverlay/internal/input"
	"github.com/ziadkadry99/gazeoverlay/internal/kv"
	"github.com/ziadkadry99/gazeoverlay/internal/mapping"
	"github.com/ziadkadry99/gazeoverlay/internal/poll"
	"github.com/ziadkadry99/gazeoverlay/internal/settings"
	"github.com/ziadkadry99/gazeoverlay/internal/surface"
	"github.com/ziadkadry99/gazeoverlay/internal/target"
)

const queueSize = 64

// State is what the overlay currently shows.
type State struct {
	Instance  string      `json:"instance"`
	Enabled   bool        `json:"enabled"`
	Point     *geom.Point `json:"point,omitempty"`
	Target    string      `json:"target,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Options configure a Controller.
type Options struct {
	Settings *settings.Store
	// Bus and Channel carry in-process settings-changed signals.
	Bus     *broadcast.Bus
	Channel string
	// Changes carries external storage changes. May be nil.
	Changes <-chan kv.Change

	Surface   surface.Surface
	Indicator surface.Indicator
	Fetcher   gaze.Fetcher
	// Scheduler drives poll ticks. Nil uses the controller's event loop.
	Scheduler poll.Scheduler
	Interval  time.Duration
	Margin    float64

	Logger *slog.Logger
	// OnState is called on the event loop after every visible change.
	OnState func(State)
}

// Controller is one overlay instance.
type Controller struct {
	settings  *settings.Store
	bus       *broadcast.Bus
	channel   string
	changes   <-chan kv.Change
	surface   surface.Surface
	indicator surface.Indicator
	logger    *slog.Logger
	onState   func(State)

	loop      *eventloop.Loop
	poll      *poll.Loop
	input     *input.Controller
	highlight *highlight.Manager
	mapper    mapping.Mapper

	ctx      context.Context
	current  settings.Settings
	enabled  bool
	state    State
	tornDown bool
}

// New validates options and builds a controller. Nothing happens until Run.
func New(opts Options) (*Controller, error) {
	if opts.Settings == nil {
		return nil, errors.New("settings store is required")
	}
	if opts.Bus == nil || opts.Channel == "" {
		return nil, errors.New("broadcast bus and channel are required")
	}
	if opts.Surface == nil || opts.Indicator == nil {
		return nil, errors.New("surface and indicator are required")
	}
	if opts.Margin < 0 {
		return nil, errors.New("margin must not be negative")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		settings:  opts.Settings,
		bus:       opts.Bus,
		channel:   opts.Channel,
		changes:   opts.Changes,
		surface:   opts.Surface,
		indicator: opts.Indicator,
		onState:   opts.OnState,
		loop:      eventloop.New(queueSize),
		highlight: highlight.New(opts.Surface),
		mapper:    mapping.Mapper{Margin: opts.Margin},
		ctx:       context.Background(),
		state:     State{Instance: uuid.NewString()},
	}
	c.logger = logger.With("instance", c.state.Instance)

	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = c.loop
	}
	p, err := poll.New(poll.Options{
		Interval:          opts.Interval,
		Fetcher:           opts.Fetcher,
		Scheduler:         scheduler,
		Post:              c.loop.Post,
		Endpoint:          func() string { return c.current.BackendURL },
		OnSample:          c.onSample,
		OnNoSignal:        c.clearSignal,
		OnMissingEndpoint: c.disable,
		Logger:            c.logger,
	})
	if err != nil {
		return nil, err
	}
	c.poll = p

	in, err := input.New(input.Options{
		Elements: opts.Surface,
		Current:  c.highlight.Current,
		Disable:  c.settings.Disable,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, err
	}
	c.input = in
	return c, nil
}

// Instance returns the controller's unique ID.
func (c *Controller) Instance() string { return c.state.Instance }

// Run loads settings, starts listening for changes and runs the event loop
// until ctx is cancelled. Cancellation tears the overlay down.
func (c *Controller) Run(ctx context.Context) error {
	sub := c.bus.Subscribe(c.channel)
	defer sub.Close()

	c.loop.Post(func() {
		c.ctx = ctx
		c.reload()
	})

	go c.forward(ctx, sub)

	err := c.loop.Run(ctx)
	c.teardown()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// forward turns settings signals into reloads on the event loop.
func (c *Controller) forward(ctx context.Context, sub *broadcast.Subscription) {
	keys := c.settings.Keys()
	changes := c.changes
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.C:
			if !ok {
				return
			}
			c.loop.Post(c.reload)
		case ch, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if keys.Has(ch.Key) {
				c.loop.Post(c.reload)
			}
		}
	}
}

// HandleKey delivers a key press to the input controller and waits for
// the result. It must not be called from the event loop.
func (c *Controller) HandleKey(ctx context.Context, ev input.KeyEvent) (input.Result, error) {
	var res input.Result
	err := c.loop.Call(ctx, func() { res = c.input.HandleKey(c.ctx, ev) })
	return res, err
}

// Do runs fn on the event loop without waiting.
func (c *Controller) Do(fn func()) bool { return c.loop.Post(fn) }

// Refresh asks the controller to re-read settings.
func (c *Controller) Refresh() bool { return c.loop.Post(c.reload) }

// Snapshot returns the current state.
func (c *Controller) Snapshot(ctx context.Context) (State, error) {
	var s State
	err := c.loop.Call(ctx, func() { s = c.snapshot() })
	return s, err
}

// PollStats returns the poll loop counters.
func (c *Controller) PollStats(ctx context.Context) (poll.Stats, error) {
	var st poll.Stats
	err := c.loop.Call(ctx, func() { st = c.poll.Stats() })
	return st, err
}

// Done is closed once Run has returned.
func (c *Controller) Done() <-chan struct{} { return c.loop.Done() }

func (c *Controller) snapshot() State {
	s := c.state
	if s.Point != nil {
		p := *s.Point
		s.Point = &p
	}
	return s
}

func (c *Controller) reload() {
	if c.tornDown {
		return
	}
	c.current = c.settings.Load(c.ctx)
	effective := c.current.Effective()
	if effective == c.enabled {
		return
	}
	if effective {
		c.enable()
	} else {
		c.disable()
	}
}

func (c *Controller) enable() {
	c.logger.Info("overlay enabled", "backend_url", c.current.BackendURL)
	c.enabled = true
	c.input.SetActive(true)
	c.state.Enabled = true
	c.publish()
	c.poll.Start(c.ctx)
}

// disable stops polling and clears everything visible. Calling it while
// already disabled does nothing.
func (c *Controller) disable() {
	if !c.enabled {
		return
	}
	c.logger.Info("overlay disabled")
	c.enabled = false
	c.poll.Stop()
	c.input.SetActive(false)
	c.highlight.Clear()
	c.indicator.Hide()
	c.state.Enabled = false
	c.state.Point = nil
	c.state.Target = ""
	c.publish()
}

func (c *Controller) teardown() {
	if c.tornDown {
		return
	}
	c.disable()
	c.tornDown = true
}

func (c *Controller) onSample(s gaze.Sample) {
	p, ok := c.mapper.Map(s, c.current.Calibration, c.surface.Viewport())
	if !ok {
		c.clearSignal()
		return
	}

	c.indicator.Show(p)
	el := target.Resolve(c.surface, p)
	if c.highlight.Apply(el) {
		c.logger.Debug("highlight changed", "target", elementID(el))
	}
	c.state.Point = &p
	c.state.Target = elementID(el)
	c.publish()
}

func (c *Controller) clearSignal() {
	c.indicator.Hide()
	c.highlight.Apply(nil)
	if c.state.Point == nil && c.state.Target == "" {
		return
	}
	c.state.Point = nil
	c.state.Target = ""
	c.publish()
}

func (c *Controller) publish() {
	c.state.UpdatedAt = time.Now()
	if c.onState != nil {
		c.onState(c.snapshot())
	}
}

func elementID(e surface.Element) string {
	if e == nil {
		return ""
	}
	return e.ElementID()
}
