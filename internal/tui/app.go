package tui

import (
	"context"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/ziadkadry99/gazeoverlay/internal/input"
)

// Overlay is the part of the overlay controller the terminal drives.
type Overlay interface {
	HandleKey(ctx context.Context, ev input.KeyEvent) (input.Result, error)
	Do(fn func()) bool
}

// App routes terminal events. Keys go to the overlay first; whatever the
// overlay leaves unhandled gets its normal terminal meaning.
type App struct {
	screen  tcell.Screen
	display *Display
	overlay Overlay
	logger  *slog.Logger
}

// NewApp creates an App.
func NewApp(screen tcell.Screen, display *Display, ov Overlay, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{screen: screen, display: display, overlay: ov, logger: logger}
}

// Run reads terminal events until ctx is cancelled or the user quits.
func (a *App) Run(ctx context.Context) {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	a.redraw()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok || !a.HandleEvent(ctx, ev) {
				return
			}
		}
	}
}

// HandleEvent processes one terminal event and reports whether to keep
// running.
func (a *App) HandleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ctx, ev.Key(), ev.Rune(), ev.Modifiers())
	case *tcell.EventResize:
		a.screen.Sync()
		a.overlay.Do(func() {
			a.display.Resize()
			a.display.Draw()
		})
	}
	return true
}

func (a *App) handleKey(ctx context.Context, key tcell.Key, r rune, mod tcell.ModMask) bool {
	switch {
	case key == tcell.KeyCtrlC:
		return false
	case key == tcell.KeyTab:
		a.update(a.display.ToggleFocus)
	case key == tcell.KeyEscape:
		if res := a.send(ctx, input.KeyEscape); !res.Handled {
			a.update(a.display.Blur)
		}
	case key == tcell.KeyBackspace || key == tcell.KeyBackspace2:
		a.update(a.display.Backspace)
	case key == tcell.KeyRune && r == ' ':
		if res := a.send(ctx, input.KeySpace); !res.PreventDefault {
			a.update(func() { a.display.Type(' ') })
		}
	case key == tcell.KeyRune && r == 'q' && mod&tcell.ModAlt == 0 && !a.display.Editing():
		return false
	case key == tcell.KeyRune:
		a.update(func() { a.display.Type(r) })
	}
	return true
}

func (a *App) send(ctx context.Context, k input.Key) input.Result {
	res, err := a.overlay.HandleKey(ctx, input.KeyEvent{Key: k})
	if err != nil {
		a.logger.Debug("key not delivered", "key", k.String(), "err", err)
	}
	a.redraw()
	return res
}

// update runs fn on the overlay loop and repaints.
func (a *App) update(fn func()) {
	a.overlay.Do(func() {
		fn()
		a.display.Draw()
	})
}

func (a *App) redraw() { a.overlay.Do(a.display.Draw) }
