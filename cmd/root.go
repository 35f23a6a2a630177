package cmd

import (
	"os"

	configcmd "chaintrail/cmd/commands/config"
	"chaintrail/cmd/commands/export"
	"chaintrail/cmd/commands/list"
	"chaintrail/cmd/commands/record"
	"chaintrail/cmd/commands/status"
	tuicmd "chaintrail/cmd/commands/tui"
	"chaintrail/cmd/commands/verify"
	"chaintrail/internal/storage"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "chaintrail",
		Short: "A tamper-evident audit ledger for governed actions",
		Long: `chaintrail records governed actions (model invocations, tool calls,
policy and safety checks, configuration changes) into an append-only,
hash-chained audit ledger that can be verified for integrity and queried
for compliance.

Entries are stored locally in ~/.config/chaintrail/audit.db. Each entry
embeds a digest of its predecessor, so any modification of a stored entry
is detected by verification.

Quick start:
  chaintrail record --type execution --action "run task"   # record an event
  chaintrail list                                          # view recent entries
  chaintrail verify                                        # verify chain integrity
  chaintrail export trail.json                             # export the full ledger`,
	}

	cmd.AddCommand(record.NewCommand())
	cmd.AddCommand(list.NewCommand())
	cmd.AddCommand(verify.NewCommand())
	cmd.AddCommand(export.NewCommand())
	cmd.AddCommand(status.NewCommand())
	cmd.AddCommand(tuicmd.NewCommand())
	cmd.AddCommand(configcmd.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	storage.RegisterBuiltins()

	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
