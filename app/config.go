package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/StoryBB/permissions/internal/config"
)

const redacted = "********"

var dumpJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := cfg
		for _, secret := range []*string{&c.DB.Password, &c.Cache.Redis.Password, &c.Admin.Password} {
			if *secret != "" {
				*secret = redacted
			}
		}

		dump := config.DumpConfig
		if dumpJSON {
			dump = config.DumpConfigJSON
		}

		out, err := dump(&c)
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), out)

		return err
	},
}

func init() { //nolint: gochecknoinits
	configCmd.Flags().BoolVar(&dumpJSON, "json", false, "print json instead of toml")

	rootCmd.AddCommand(configCmd)
}
