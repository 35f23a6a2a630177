package audit

import (
	"encoding/json"
	"fmt"
	"os"
)

// Export writes the full ordered entry sequence to path as a JSON array,
// one object per entry with all Entry fields, array order equal to append
// order. The ledger is never mutated.
func (l *Ledger) Export(path string) error {
	l.mu.RLock()
	entries, err := l.store.ReadAll()
	l.mu.RUnlock()
	if err != nil {
		return &StorageError{Op: "read", Err: err}
	}

	if entries == nil {
		entries = []Entry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("audit: failed to marshal export: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("audit: failed to write %s: %w", path, err)
	}
	return nil
}

// LoadExport reads an exported ledger file back into an ordered entry
// sequence. Reloading an export into a fresh store and verifying it
// reproduces the verdict of the original ledger.
func LoadExport(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to read %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("audit: failed to parse %s: %w", path, err)
	}
	return entries, nil
}
