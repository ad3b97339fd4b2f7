package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/StoryBB/permissions/internal/daemon"
	"github.com/StoryBB/permissions/internal/db/controller/member"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/permission"
)

// ErrCheckSubject is returned when check gets both or neither of --member and --groups.
var ErrCheckSubject = errors.New("exactly one of --member and --groups is required")

var (
	checkMember uint64
	checkGroups []int
	checkBoard  int
)

var checkCmd = &cobra.Command{
	Use:   "check <permission>",
	Short: "Check whether a member or a group set holds a permission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (checkMember == 0) == (len(checkGroups) == 0) {
			return ErrCheckSubject
		}

		name := args[0]
		if _, ok := permission.CategoryOf(name); !ok {
			return fmt.Errorf("%w: %s", permission.ErrUnknownPermission, name)
		}

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

		var board *uint

		if checkBoard > 0 {
			b := uint(checkBoard)
			board = &b
		}

		var allowed bool

		if checkMember != 0 {
			m, err := member.NewProvider(conn).Get(ctx, checkMember)
			if err != nil {
				return err
			}

			allowed, err = perms.Evaluator().Allowed(ctx, permission.SubjectFor(m), name, board)
			if err != nil {
				return err
			}
		} else {
			groups := make([]models.GroupID, 0, len(checkGroups))
			for _, g := range checkGroups {
				groups = append(groups, models.GroupID(g))
			}

			allowed, err = perms.Evaluator().AllowedGroups(ctx, groups, name, board)
			if err != nil {
				return err
			}
		}

		verdict := "denied"
		if allowed {
			verdict = "allowed"
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), verdict)

		return err
	},
}

func init() { //nolint: gochecknoinits
	checkCmd.Flags().Uint64Var(&checkMember, "member", 0, "member id")
	checkCmd.Flags().IntSliceVar(&checkGroups, "groups", nil, "group set, e.g. -1 or 0,4")
	checkCmd.Flags().IntVar(&checkBoard, "board", 0, "board id, forum-wide when zero")

	rootCmd.AddCommand(checkCmd)
}
