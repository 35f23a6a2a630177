package config

import (
	"chaintrail/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage chaintrail configuration",
		Long: "View and modify persistent chaintrail settings.\n\n" +
			"Configuration is stored at ~/.config/chaintrail/config.json.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
