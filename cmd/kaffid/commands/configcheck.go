package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/worxli/kaffi/internal/config"
)

func configCheckCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config OK: mdb=%s legi=%s ampel=%s log.level=%s\n",
				cfg.MDB.Dial, cfg.Legi.Dial, cfg.Ampel.Host, cfg.Log.Level)
			return nil
		},
	})

	return configCmd
}
