package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"chaintrail/internal/audit"
	"chaintrail/internal/config"
	"chaintrail/internal/storage"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewCommand returns the "export" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Export the full audit ledger to a JSON file",
		Long: `Write the full ordered entry sequence to a file as a JSON array.
Array order equals append order; reloading an export and verifying it
reproduces the verdict of the live ledger.

Examples:
  chaintrail export trail.json
  chaintrail export trail.json --force`,
		Args:         cobra.ExactArgs(1),
		RunE:         runExport,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("force", false, "Overwrite the target file if it exists")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		if _, err := os.Stat(path); err == nil {
			ok, err := confirmOverwrite(path)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("export aborted, %s already exists (use --force to overwrite)", path)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

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

	if err := ledger.Export(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", ledger.Len(), path)
	return nil
}

// confirmOverwrite asks the user before replacing an existing file. In a
// non-interactive session the answer is always no; --force is required.
func confirmOverwrite(path string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, nil
	}

	accessible := os.Getenv("ACCESSIBLE") != ""
	confirm := false
	confirmField := huh.NewConfirm().
		Title(fmt.Sprintf("%s already exists. Overwrite?", path)).
		Affirmative("Yes, overwrite").
		Negative("Cancel").
		Value(&confirm)

	err := huh.NewForm(huh.NewGroup(confirmField)).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirm, nil
}
