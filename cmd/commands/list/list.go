package list

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"chaintrail/internal/audit"
	"chaintrail/internal/config"
	"chaintrail/internal/storage"

	"github.com/spf13/cobra"
)

// NewCommand returns the "list" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent audit entries",
		Long: `List audit entries in append order. Filters combine conjunctively;
--limit keeps the most recent matches.

Examples:
  chaintrail list
  chaintrail list --limit 50
  chaintrail list --type safety_check --actor agent-1
  chaintrail list --since 24h
  chaintrail list --since 2026-08-01T00:00:00Z -o json`,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 0, "Number of entries to display (default from config)")
	cmd.Flags().String("type", "", "Filter by event type")
	cmd.Flags().String("actor", "", "Filter by actor")
	cmd.Flags().String("since", "", "Only entries after this time (RFC3339) or within this duration (e.g. 24h, 30d)")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit == 0 {
		limit = cfg.ListLimit()
	}
	if limit < 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	filter := audit.Filter{Limit: limit}

	if typeFlag, _ := cmd.Flags().GetString("type"); typeFlag != "" {
		eventType, err := audit.ParseEventType(typeFlag)
		if err != nil {
			return err
		}
		filter.Type = eventType
	}
	filter.Actor, _ = cmd.Flags().GetString("actor")

	if sinceFlag, _ := cmd.Flags().GetString("since"); sinceFlag != "" {
		since, err := parseSince(sinceFlag)
		if err != nil {
			return err
		}
		filter.Since = since
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

	entries, err := ledger.Entries(filter)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "json" {
		if entries == nil {
			entries = []audit.Entry{}
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}
	if output != "table" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No audit entries found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tACTOR\tACTION\tOUTCOME\tRESOURCE\tHASH")
	fmt.Fprintln(w, "----\t----\t-----\t------\t-------\t--------\t----")
	for _, entry := range entries {
		resource := entry.Resource
		if resource == "" {
			resource = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.EventType,
			entry.Actor,
			entry.Action,
			entry.Outcome,
			resource,
			entry.EntryHash,
		)
	}
	w.Flush()
	return nil
}

// parseSince accepts an absolute RFC3339 time, a Go duration, or a day
// count suffixed with "d" (e.g. 30d), the latter two measured back from now.
func parseSince(input string) (time.Time, error) {
	input = strings.TrimSpace(input)

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t.UTC(), nil
	}

	if before, ok := strings.CutSuffix(input, "d"); ok {
		days, err := strconv.Atoi(before)
		if err == nil {
			if days < 0 {
				return time.Time{}, fmt.Errorf("duration must be positive")
			}
			return time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour), nil
		}
	}

	d, err := time.ParseDuration(input)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: expected RFC3339 time or duration", input)
	}
	if d < 0 {
		return time.Time{}, fmt.Errorf("duration must be positive")
	}
	return time.Now().UTC().Add(-d), nil
}
