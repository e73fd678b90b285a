package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/gazeoverlay/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize gazeoverlay configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the overlay and writes the config file (default .gazeoverlay.yml).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
