package tui

import (
	"chaintrail/internal/audit"
	"chaintrail/internal/config"
	"chaintrail/internal/storage"
	ledgertui "chaintrail/internal/tui"

	"github.com/spf13/cobra"
)

// NewCommand returns the "tui" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the audit ledger interactively",
		Long: `Open an interactive browser for the audit ledger: navigate entries,
inspect individual fields, and see the chain verification verdict.

Examples:
  chaintrail tui`,
		RunE:         runTUI,
		SilenceUsage: true,
	}

	return cmd
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.StorageBackend(), cfg.DatabasePath)
	if err != nil {
		return err
	}
	ledger, err := audit.Open(store)
	if err != nil {
		store.Close()
		return err
	}
	defer ledger.Close()

	return ledgertui.Run(ledger)
}
