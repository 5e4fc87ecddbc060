package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/worxli/kaffi/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "kaffid %s (%s)\n", version.Version, version.Commit)
			return nil
		},
	}
}
