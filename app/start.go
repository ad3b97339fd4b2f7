package app

import (
	"github.com/spf13/cobra"

	"github.com/StoryBB/permissions/internal/daemon"
)

var devMode bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the permission api",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if devMode {
			cfg.DevMode = true
		}

		d, err := daemon.New(cmd.Context(), &cfg)
		if err != nil {
			return err
		}

		return d.Start()
	},
}

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd)
}
