package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/worxli/kaffi/byteio"
	"github.com/worxli/kaffi/internal/config"
	"github.com/worxli/kaffi/internal/diag"
)

func probeCmd() *cobra.Command {
	var link string
	var command string
	var list bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Send a raw diagnostic command over the MDB or RFID link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set := diag.MDBCommands
			if link == "rfid" {
				set = diag.RFIDCommands
			}

			if list {
				fmt.Fprint(cmd.OutOrStdout(), set.String())
				return nil
			}

			c, ok := set[command]
			if !ok {
				return fmt.Errorf("unknown %s command %q", link, command)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			dial := cfg.MDB.Dial
			if link == "rfid" {
				dial = cfg.Legi.Dial
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			io, err := byteio.Open(ctx, 2*time.Second, dial)
			if err != nil {
				return fmt.Errorf("open %s: %w", dial, err)
			}
			defer io.Close()

			prober := diag.NewProber(io)
			result := prober.Run(ctx, c)
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			if result.Err != nil {
				slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("probe failed", "error", result.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&link, "link", "mdb", "which link to probe: mdb or rfid")
	cmd.Flags().StringVar(&command, "command", "poll", "named command to send (see --list)")
	cmd.Flags().BoolVar(&list, "list", false, "list the available commands for --link and exit")

	return cmd
}
