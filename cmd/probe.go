package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/gazeoverlay/internal/gaze"
	"github.com/ziadkadry99/gazeoverlay/internal/logging"
	"github.com/ziadkadry99/gazeoverlay/internal/progress"
)

var (
	probeCount int
	probeURL   string
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Sample the backend and report what it returns",
	Long: `Requests a number of gaze samples from the backend at the poll interval
and prints how many were calibrated, normalized, empty or failed. The
backend URL comes from the stored settings unless --url is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if probeCount <= 0 {
			return errors.New("--count must be positive")
		}

		url := probeURL
		if url == "" {
			store, err := openStorage(cfg, nil, logging.Discard())
			if err != nil {
				return err
			}
			url = store.settings.Load(context.Background()).BackendURL
			store.Close()
		}
		if url == "" {
			return fmt.Errorf("%w: pass --url or run `gazeoverlay settings set-backend`", gaze.ErrNoEndpoint)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reporter := progress.NewReporter(os.Stderr)
		reporter.Start(probeCount)
		client := gaze.NewClient(cfg.BackendTimeout())
		sum, err := gaze.Probe(ctx, client, url, probeCount, cfg.PollInterval(), func(r gaze.ProbeResult) {
			msg := fmt.Sprintf("%s %s", r.Kind, r.Latency.Round(time.Millisecond))
			if r.Err != nil {
				msg = "failed: " + r.Err.Error()
			}
			reporter.Update(r.Index+1, msg)
		})
		reporter.Finish(fmt.Sprintf("%d requests: %d calibrated, %d normalized, %d empty, %d failed",
			sum.Total, sum.Calibrated, sum.Normalized, sum.Empty, sum.Failed))
		return err
	},
}

func init() {
	probeCmd.Flags().IntVar(&probeCount, "count", 20, "number of samples to request")
	probeCmd.Flags().StringVar(&probeURL, "url", "", "backend base URL (default from settings)")
	rootCmd.AddCommand(probeCmd)
}
