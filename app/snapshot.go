package app

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/StoryBB/permissions/internal/daemon"
	"github.com/StoryBB/permissions/internal/permission"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write every group's permissions as yaml, to stdout without a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := daemon.Open(cmd.Context(), &cfg)
		if err != nil {
			return err
		}

		snap, err := permission.Export(cmd.Context(), conn)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()

		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}

			defer func() { _ = f.Close() }()

			w = f
		}

		return snap.Write(w)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the permissions of the groups listed in a yaml snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}

		defer func() { _ = f.Close() }()

		snap, err := permission.ReadSnapshot(f)
		if err != nil {
			return err
		}

		conn, err := daemon.Open(cmd.Context(), &cfg)
		if err != nil {
			return err
		}

		perms, closeCache, err := daemon.NewService(&cfg, conn)
		if err != nil {
			return err
		}

		defer func() { _ = closeCache() }()

		report, err := perms.Import(cmd.Context(), permission.Operator(), snap)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows, skipped %d\n", len(report.Applied), len(report.Skipped))

		return err
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(exportCmd, importCmd)
}
