package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// shellCommands lists the available commands for the interactive shell help output.
var shellCommands = []struct {
	name string
	desc string
}{
	{"config check", "Load and validate the configuration file"},
	{"probe --link mdb --command reset", "Send a raw diagnostic command"},
	{"version", "Print build information"},
	{"help", "Show this help message"},
	{"exit / quit", "Leave the interactive shell"},
}

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive kaffid shell",
		Long:  "Launches a simple REPL that accepts kaffid subcommands. Type 'help', 'exit', or 'quit'.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			printShellBanner()
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("kaffid> ")

			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())

				switch {
				case line == "exit" || line == "quit":
					return nil
				case line == "help" || line == "?":
					printShellHelp()
				case line != "":
					args := strings.Fields(line)
					rootCmd.SetArgs(args)

					if err := rootCmd.Execute(); err != nil {
						fmt.Fprintln(os.Stderr, "Error:", err)
					}
				}

				fmt.Print("kaffid> ")
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			return nil
		},
	}
}

func printShellBanner() {
	fmt.Println("kaffid interactive shell. Type 'help' for available commands, 'exit' to quit.")
	fmt.Println()
}

func printShellHelp() {
	fmt.Println("Available commands:")
	fmt.Println()
	for _, cmd := range shellCommands {
		fmt.Printf("  %-38s %s\n", cmd.name, cmd.desc)
	}
	fmt.Println()
}
