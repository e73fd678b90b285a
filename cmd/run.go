package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/gazeoverlay/internal/broadcast"
	"github.com/ziadkadry99/gazeoverlay/internal/gaze"
	"github.com/ziadkadry99/gazeoverlay/internal/kv"
	"github.com/ziadkadry99/gazeoverlay/internal/overlay"
	"github.com/ziadkadry99/gazeoverlay/internal/server"
	"github.com/ziadkadry99/gazeoverlay/internal/tui"
)

var (
	runServe   bool
	runPort    int
	runLogFile string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the overlay on the terminal",
	Long: `Runs the gaze overlay on a terminal demo scene. The overlay turns on when
the stored settings have a backend URL and the enabled flag; use
'gazeoverlay settings' from another shell to change them while it runs.

Keys: space activates the highlighted button, esc turns the overlay off,
tab moves focus to the text field, q or ctrl-c quits.`,
	RunE: runOverlay,
}

func init() {
	runCmd.Flags().BoolVar(&runServe, "serve", false, "start the status server (overrides server.enabled)")
	runCmd.Flags().IntVar(&runPort, "port", 0, "status server port (default from config)")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "log file (default overlay.log next to the settings database)")
	rootCmd.AddCommand(runCmd)
}

func runOverlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the scene, so logs go to a file.
	logPath := runLogFile
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(cfg.Storage.DBPath), "overlay.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger, err := newLogger(cfg, logFile)
	if err != nil {
		return err
	}

	bus := broadcast.NewBus()
	store, err := openStorage(cfg, bus, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	watcher, err := kv.NewWatcher(store.kv, store.db.Path(), settingsKeys(cfg).List(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("settings watcher stopped", "err", err)
		}
	}()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initialising terminal: %w", err)
	}
	defer screen.Fini()

	display := tui.NewDisplay(screen, tui.Options{
		CellWidth:      float64(cfg.Surface.CellWidth),
		CellHeight:     float64(cfg.Surface.CellHeight),
		Marker:         cfg.Overlay.ActivationMarker,
		TextInputKinds: cfg.Overlay.TextInputKinds,
	})
	hub := server.NewHub(logger)

	ov, err := overlay.New(overlay.Options{
		Settings:  store.settings,
		Bus:       bus,
		Channel:   cfg.Broadcast.Channel,
		Changes:   watcher.Changes(),
		Surface:   display,
		Indicator: display,
		Fetcher:   gaze.NewClient(cfg.BackendTimeout()),
		Interval:  cfg.PollInterval(),
		Margin:    cfg.Overlay.Margin,
		Logger:    logger,
		OnState: func(s overlay.State) {
			display.SetEnabled(s.Enabled)
			display.Draw()
			hub.Publish(s)
		},
	})
	if err != nil {
		return err
	}

	runErr := make(chan error, 1)
	go func() { runErr <- ov.Run(ctx) }()

	if runServe || cfg.Server.Enabled {
		port := cfg.Server.Port
		if runPort != 0 {
			port = runPort
		}
		srv := server.New(server.Config{Port: port, AllowAll: cfg.Server.AllowAll}, ov, hub, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("overlay running", "instance", ov.Instance(), "db", store.db.Path())
	tui.NewApp(screen, display, ov, logger).Run(ctx)

	cancel()
	return <-runErr
}
