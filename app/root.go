// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/StoryBB/permissions/internal/config"
	"github.com/StoryBB/permissions/internal/logger"
)

var (
	configPath string // directory holding main.toml
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "storybb-permissions",
	Short: "StoryBB permissions manages and evaluates forum permissions",
	Long: `StoryBB permissions stores the forum-wide and board permissions of membergroups,
answers permission checks and serves an admin api to change them.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		if cfg, err = config.ReadConfig(configPath); err != nil {
			return err
		}

		return logger.Init(cfg.Log)
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory of main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
