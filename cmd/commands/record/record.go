package record

import (
	"encoding/json"
	"fmt"
	"strings"

	"chaintrail/internal/audit"
	"chaintrail/internal/config"
	"chaintrail/internal/storage"

	"github.com/spf13/cobra"
)

// NewCommand returns the "record" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record an audit event",
		Long: `Record a governed action as a new entry in the audit chain.

Raw --input and --output content is reduced to privacy-preserving
summaries (content hash and length) before it reaches the ledger; the
raw content itself is never stored.

Valid event types: ` + eventTypesHelp() + `

Examples:
  chaintrail record --type execution --action "run task" --actor agent-1 --actor-type agent
  chaintrail record --type tool_invocation --action invoke --resource "tool:search" --input "query text"
  chaintrail record --type safety_check --action check --outcome blocked --meta rule=content-policy`,
		RunE:         runRecord,
		SilenceUsage: true,
	}

	cmd.Flags().String("type", "", "Event type (required)")
	cmd.Flags().String("action", "", "Action performed (required)")
	cmd.Flags().String("resource", "", "Resource affected")
	cmd.Flags().String("outcome", "", "Outcome (default: success)")
	cmd.Flags().String("actor", "", "Actor identity (default: system)")
	cmd.Flags().String("actor-type", "", "Actor class, e.g. system, user, agent (default: internal)")
	cmd.Flags().String("input", "", "Raw input content; summarized before storage")
	cmd.Flags().String("output", "", "Raw output content; summarized before storage")
	cmd.Flags().StringArray("meta", nil, "Metadata key=value pair (repeatable)")
	cmd.Flags().StringP("output-format", "o", "text", "Output format: text or json")

	return cmd
}

func runRecord(cmd *cobra.Command, args []string) error {
	typeFlag, _ := cmd.Flags().GetString("type")
	eventType, err := audit.ParseEventType(typeFlag)
	if err != nil {
		return fmt.Errorf("%w (valid: %s)", err, eventTypesHelp())
	}

	action, _ := cmd.Flags().GetString("action")
	if strings.TrimSpace(action) == "" {
		return fmt.Errorf("--action is required")
	}

	metaFlags, _ := cmd.Flags().GetStringArray("meta")
	metadata, err := parseMetadata(metaFlags)
	if err != nil {
		return err
	}

	resource, _ := cmd.Flags().GetString("resource")
	outcome, _ := cmd.Flags().GetString("outcome")
	actor, _ := cmd.Flags().GetString("actor")
	actorType, _ := cmd.Flags().GetString("actor-type")
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")

	ev := audit.Event{
		Type:      eventType,
		Action:    action,
		Resource:  resource,
		Outcome:   outcome,
		Actor:     actor,
		ActorType: actorType,
		Metadata:  metadata,
	}
	if input != "" {
		ev.InputSummary = audit.SummarizeInput(input)
	}
	if output != "" {
		ev.OutputSummary = audit.SummarizeOutput(output)
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

	entry, err := ledger.Record(ev)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("output-format")
	if format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(entry)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s (%s) hash=%s\n",
		entry.EventType, entry.EventID, entry.Outcome, entry.EntryHash)
	return nil
}

// parseMetadata converts repeated key=value flags into an entry metadata map.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --meta %q, expected key=value", pair)
		}
		metadata[strings.TrimSpace(key)] = value
	}
	return metadata, nil
}

func eventTypesHelp() string {
	types := audit.EventTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
