package config

import (
	"nathanbeddoewebdev/xostats/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage xostats configuration",
		Long: "View and modify persistent xostats settings.\n\n" +
			"Configuration is stored at ~/.config/xostats/config.json.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
