package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"juno/config"
)

// newCommandCmd creates the "juno cmd" subcommand: it writes the player's
// standing directive to the command file a running commander watches.
func newCommandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cmd <text>",
		Short: "Send a standing directive to a running commander",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Default().CommandFile
			text := strings.Join(args, " ")
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Command written to %s: %s\n", path, text)
			return nil
		},
	}
}
