package status

import (
	"fmt"
	"text/tabwriter"

	"chaintrail/internal/audit"
	"chaintrail/internal/config"
	"chaintrail/internal/database"
	"chaintrail/internal/storage"

	"github.com/spf13/cobra"
)

// NewCommand returns the "status" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show ledger status and chain integrity",
		Long: `Show the configured backend, entry count, chain tip, and the result
of a full integrity verification.

Examples:
  chaintrail status`,
		RunE:         runStatus,
		SilenceUsage: true,
	}

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dbPath := cfg.DatabasePath
	if dbPath == "" && cfg.StorageBackend() == "sqlite" {
		dbPath, err = database.DefaultPath()
		if err != nil {
			return err
		}
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

	valid, verifyErr := ledger.Verify()
	chain := "valid"
	if !valid {
		chain = fmt.Sprintf("BROKEN (%v)", verifyErr)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Backend:\t%s\n", cfg.StorageBackend())
	if dbPath != "" {
		fmt.Fprintf(w, "Database:\t%s\n", dbPath)
	}
	fmt.Fprintf(w, "Entries:\t%d\n", ledger.Len())
	fmt.Fprintf(w, "Chain tip:\t%s\n", ledger.Tip())
	fmt.Fprintf(w, "Chain:\t%s\n", chain)
	w.Flush()

	if !valid {
		return fmt.Errorf("integrity verification failed")
	}
	return nil
}
