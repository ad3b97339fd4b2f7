package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/StoryBB/permissions/internal/daemon"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the tables and install the default groups, profiles and permissions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := daemon.Open(cmd.Context(), &cfg); err != nil {
			return err
		}

		_, err := fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")

		return err
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}
