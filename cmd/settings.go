package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/gazeoverlay/internal/logging"
	"github.com/ziadkadry99/gazeoverlay/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the persisted overlay settings",
	Long: `Reads and writes the backend URL, calibration and enabled flag shared by
every overlay using the same settings database. A running overlay notices
changes within a moment.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored and effective settings",
	RunE:  runSettingsShow,
}

var settingsSetBackendCmd = &cobra.Command{
	Use:   "set-backend <url>",
	Short: "Set the eye-tracking backend base URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(ctx context.Context, s *settings.Store) error {
			return s.SetBackendURL(ctx, args[0])
		})
	},
}

var settingsSetCalibrationCmd = &cobra.Command{
	Use:   "set-calibration <width> <height>",
	Short: "Set the calibration space used for calibrated positions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("width: %w", err)
		}
		h, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("height: %w", err)
		}
		return withSettings(func(ctx context.Context, s *settings.Store) error {
			return s.SetCalibration(ctx, &settings.Calibration{Width: w, Height: h})
		})
	},
}

var settingsClearCalibrationCmd = &cobra.Command{
	Use:   "clear-calibration",
	Short: "Remove the stored calibration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(ctx context.Context, s *settings.Store) error {
			return s.SetCalibration(ctx, nil)
		})
	},
}

var settingsEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Turn the overlay on",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(ctx context.Context, s *settings.Store) error {
			if err := s.SetEnabled(ctx, true); err != nil {
				return err
			}
			if !s.Load(ctx).HasBackend() {
				fmt.Fprintln(os.Stderr, "Warning: no backend URL set; the overlay stays off until one is configured")
			}
			return nil
		})
	},
}

var settingsDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Turn the overlay off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(ctx context.Context, s *settings.Store) error {
			return s.Disable(ctx)
		})
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetBackendCmd)
	settingsCmd.AddCommand(settingsSetCalibrationCmd)
	settingsCmd.AddCommand(settingsClearCalibrationCmd)
	settingsCmd.AddCommand(settingsEnableCmd)
	settingsCmd.AddCommand(settingsDisableCmd)
	rootCmd.AddCommand(settingsCmd)
}

// withSettings opens the settings store, runs fn and closes it again.
func withSettings(fn func(ctx context.Context, s *settings.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	store, err := openStorage(cfg, nil, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(context.Background(), store.settings)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStorage(cfg, nil, logging.Discard())
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	raw, err := store.kv.All(ctx)
	if err != nil {
		return err
	}
	resolved := store.settings.Load(ctx)

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%s\n", k, raw[k])
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("Database:     %s\n", store.db.Path())
	fmt.Printf("Backend URL:  %s\n", orNone(resolved.BackendURL))
	if resolved.Calibration != nil {
		fmt.Printf("Calibration:  %gx%g\n", resolved.Calibration.Width, resolved.Calibration.Height)
	} else {
		fmt.Printf("Calibration:  %s\n", orNone(""))
	}
	fmt.Printf("Enabled flag: %t\n", resolved.Enabled)
	fmt.Printf("Effective:    %t\n", resolved.Effective())
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
