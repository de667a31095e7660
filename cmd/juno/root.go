package main

import (
	"github.com/spf13/cobra"

	"juno/config"
)

// newRootCmd creates the root juno command with all subcommands attached.
// Running juno without a subcommand opens the interactive console.
func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "juno",
		Short:         "OpenRA strategic commander",
		Long:          "juno commands an OpenRA Red Alert army over the game's JSON RPC,\ncoordinating strategic, tactical and economy agents.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			commander, err := NewCommander(cfg)
			if err != nil {
				return err
			}
			runConsole(commander, cmd.InOrStdin(), cmd.OutOrStdout())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "juno.yaml", "path to the optional config file")

	cmd.AddCommand(
		newCommandCmd(),
	)

	return cmd
}
