package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/StoryBB/permissions/internal/daemon"
	"github.com/StoryBB/permissions/internal/db/controller/membergroup"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/permission"
)

var (
	propagateParents []int
	propagateProfile int
)

var propagateCmd = &cobra.Command{
	Use:   "propagate",
	Short: "Rewrite inheriting groups from their parents",
	Long: `Rewrite the rows of every inheriting group with a copy of its parent's rows.
Without --parents every parent is processed. --profile limits the run to the board rows of one profile.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		conn, err := daemon.Open(ctx, &cfg)
		if err != nil {
			return err
		}

		perms, closeCache, err := daemon.NewService(&cfg, conn)
		if err != nil {
			return err
		}

		defer func() { _ = closeCache() }()

		parents := make([]models.GroupID, 0, len(propagateParents))
		for _, p := range propagateParents {
			parents = append(parents, models.GroupID(p))
		}

		if len(parents) == 0 {
			if parents, err = membergroup.Parents(ctx, conn); err != nil {
				return err
			}
		}

		cover := permission.CoverEverything()
		if propagateProfile > 0 {
			cover = permission.CoverProfile(models.ProfileID(propagateProfile))
		}

		report, err := perms.Propagate(ctx, parents, cover)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "propagated to %d groups %v\n", len(report.Propagated), report.Propagated)

		return err
	},
}

func init() { //nolint: gochecknoinits
	propagateCmd.Flags().IntSliceVar(&propagateParents, "parents", nil, "parent group ids")
	propagateCmd.Flags().IntVar(&propagateProfile, "profile", 0, "only rewrite the board rows of this profile")

	rootCmd.AddCommand(propagateCmd)
}
