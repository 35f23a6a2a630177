package config

import (
	"fmt"
	"strconv"
	"strings"

	"chaintrail/internal/config"
	"chaintrail/internal/storage"
	"chaintrail/internal/util"

	"github.com/spf13/cobra"
)

// SetCommand returns the "config set" command.
func SetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a persistent configuration value.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  chaintrail config set backend sqlite\n" +
			"  chaintrail config set default-limit 50",
		Args: cobra.ExactArgs(2),
		Run:  runSet,
	}

	return cmd
}

// validators maps key names to optional pre-save validation functions.
// Keys not present in this map have no extra validation.
var validators = map[string]func(cmd *cobra.Command, value string) error{
	"backend":       validateBackend,
	"default-limit": validateLimit,
}

func runSet(cmd *cobra.Command, args []string) {
	key := util.NormalizeKey(args[0])
	value := args[1]

	spec := config.Lookup(key)
	if spec == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: unknown configuration key %q\n", args[0])
		fmt.Fprintf(cmd.ErrOrStderr(), "Valid keys: %s\n", strings.Join(config.KeyNames(), ", "))
		return
	}

	if validate, ok := validators[spec.Name]; ok {
		if err := validate(cmd, value); err != nil {
			return // validate already printed the error
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	spec.Set(cfg, strings.TrimSpace(value))
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %q\n", spec.Name, strings.TrimSpace(value))
}

// validateBackend checks that the given name is a registered storage backend.
func validateBackend(cmd *cobra.Command, name string) error {
	normalized := util.NormalizeKey(name)
	known := storage.List()
	for _, b := range known {
		if b == normalized {
			return nil
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: unknown backend %q\n", name)
	fmt.Fprintf(cmd.ErrOrStderr(), "Registered backends: %v\n", known)
	return fmt.Errorf("unknown backend %q", name)
}

// validateLimit checks that the value is a positive integer.
func validateLimit(cmd *cobra.Command, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: default-limit must be a positive integer, got %q\n", value)
		return fmt.Errorf("invalid limit %q", value)
	}
	return nil
}
