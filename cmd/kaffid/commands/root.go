package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configPath is the -config flag shared by every subcommand that needs it.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "kaffid",
	Short: "On-device coffee machine authorization daemon",
	Long: "kaffid authorizes coffee/beverage dispenses by reading RFID cards,\n" +
		"checking entitlement against membership services over HTTP, and driving\n" +
		"the vending controller over the MDB serial protocol.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (YAML)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCheckCmd())
	rootCmd.AddCommand(probeCmd())
	rootCmd.AddCommand(shellCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
