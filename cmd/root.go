package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gazeoverlay",
	Short: "Gaze-pointer overlay driven by a remote eye tracker",
	Long: `gazeoverlay polls an eye-tracking backend, maps each gaze sample onto the
screen, highlights the gaze-activatable element under the point and lets a
single key press activate it. Settings are shared with other processes
through a small SQLite store.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".gazeoverlay.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
