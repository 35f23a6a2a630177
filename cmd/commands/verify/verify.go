package verify

import (
	"errors"
	"fmt"
	"os"

	"chaintrail/internal/audit"
	"chaintrail/internal/config"
	"chaintrail/internal/storage"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

// NewCommand returns the "verify" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the integrity of the audit chain",
		Long: `Walk the full audit chain from the genesis entry, checking each
entry's linkage to its predecessor and recomputing its hash.

A detected break is reported with the failing index and preserved as
evidence; chaintrail never repairs a broken chain.

Examples:
  chaintrail verify`,
		RunE:         runVerify,
		SilenceUsage: true,
	}

	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
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

	accessible := os.Getenv("ACCESSIBLE") != ""

	var valid bool
	var verifyErr error
	spinErr := spinner.New().
		Title(fmt.Sprintf("Verifying %d entries...", ledger.Len())).
		Accessible(accessible).
		Output(cmd.ErrOrStderr()).
		Action(func() {
			valid, verifyErr = ledger.Verify()
		}).
		Run()
	if spinErr != nil {
		return spinErr
	}

	if valid {
		fmt.Fprintf(cmd.OutOrStdout(), "Chain valid: %d entries, tip %s\n", ledger.Len(), ledger.Tip())
		return nil
	}

	var integrityErr *audit.IntegrityError
	if errors.As(verifyErr, &integrityErr) {
		fmt.Fprintf(cmd.ErrOrStderr(), "CHAIN BROKEN: %v\n", integrityErr)
		fmt.Fprintln(cmd.ErrOrStderr(), "The ledger has been preserved unmodified as evidence.")
		return fmt.Errorf("integrity verification failed")
	}
	return verifyErr
}
