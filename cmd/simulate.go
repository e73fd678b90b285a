package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/gazeoverlay/internal/config"
	"github.com/ziadkadry99/gazeoverlay/internal/gaze"
	"github.com/ziadkadry99/gazeoverlay/internal/simulator"
)

var (
	simPort      int
	simMode      string
	simFailEvery int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Serve a synthetic eye-tracking backend",
	Long: `Serves GET /api/gaze with samples that trace a slow figure across the
screen, so the overlay can be tried without tracking hardware. Point the
overlay at it with 'gazeoverlay settings set-backend http://localhost:8000'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg, os.Stderr)
		if err != nil {
			return err
		}

		sc := cfg.Simulator
		if cmd.Flags().Changed("port") {
			sc.Port = simPort
		}
		if cmd.Flags().Changed("mode") {
			sc.Mode = config.SimulatorMode(simMode)
		}
		if cmd.Flags().Changed("fail-every") {
			sc.FailEvery = simFailEvery
		}

		src, err := simulator.NewSource(simulator.Options{
			Mode:      sc.Mode,
			Width:     sc.Width,
			Height:    sc.Height,
			Period:    time.Duration(sc.PeriodMS) * time.Millisecond,
			FailEvery: sc.FailEvery,
		})
		if err != nil {
			return err
		}

		addr := fmt.Sprintf(":%d", sc.Port)
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           simulator.NewRouter(src),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down simulator...")
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			httpServer.Shutdown(shutdownCtx)
		}()

		logger.Info("gaze simulator listening", "addr", addr, "path", gaze.Path, "mode", sc.Mode, "fail_every", sc.FailEvery)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simPort, "port", 8000, "listen port")
	simulateCmd.Flags().StringVar(&simMode, "mode", string(config.ModeMixed), "sample fields: calibrated, normalized, mixed or empty")
	simulateCmd.Flags().IntVar(&simFailEvery, "fail-every", 0, "fail every n-th request with 503 (0 never fails)")
	rootCmd.AddCommand(simulateCmd)
}
