package audit_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"chaintrail/internal/audit"
	"chaintrail/internal/storage"

	"github.com/google/go-cmp/cmp"
)

func TestExport_RoundTrip(t *testing.T) {
	ledger := newLedger(t)

	events := []audit.Event{
		{Type: audit.EventExecution, Action: "execute", Actor: "agent-1",
			Metadata: map[string]string{"task": "42"}},
		{Type: audit.EventToolInvocation, Action: "invoke", Resource: "tool:search",
			InputSummary: audit.SummarizeInput("query"), OutputSummary: audit.SummarizeOutput("result")},
		{Type: audit.EventSafetyCheck, Action: "check", Outcome: audit.OutcomeBlocked},
	}
	for _, ev := range events {
		if _, err := ledger.Record(ev); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "trail.json")
	if err := ledger.Export(path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	loaded, err := audit.LoadExport(path)
	if err != nil {
		t.Fatalf("LoadExport failed: %v", err)
	}

	original, err := ledger.Entries(audit.Filter{})
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if diff := cmp.Diff(original, loaded); diff != "" {
		t.Errorf("export round-trip mismatch (-original +loaded):\n%s", diff)
	}

	// Reloading into a fresh ledger must reproduce the verdict and
	// bit-identical entry hashes.
	reloadedStore := storage.NewMemory()
	for i := range loaded {
		if err := reloadedStore.Append(&loaded[i]); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	reloaded, err := audit.Open(reloadedStore)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reloaded.Close()

	valid, verifyErr := reloaded.Verify()
	if !valid || verifyErr != nil {
		t.Fatalf("Verify on reloaded ledger = (%v, %v), want (true, nil)", valid, verifyErr)
	}
	for i := range loaded {
		if loaded[i].EntryHash != original[i].EntryHash {
			t.Errorf("entry %d hash changed across round-trip: %q != %q",
				i, loaded[i].EntryHash, original[i].EntryHash)
		}
	}
}

func TestExport_ReproducesInvalidVerdict(t *testing.T) {
	valid, err := tamper(t, 1, func(e *audit.Entry) { e.Action = "tampered" })
	if valid {
		t.Fatalf("expected invalid verdict, got valid (err=%v)", err)
	}
}

func TestExport_EmptyLedger(t *testing.T) {
	ledger := newLedger(t)

	path := filepath.Join(t.TempDir(), "trail.json")
	if err := ledger.Export(path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var entries []audit.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("exported file is not a JSON array: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty array, got %d entries", len(entries))
	}

	loaded, err := audit.LoadExport(path)
	if err != nil {
		t.Fatalf("LoadExport failed: %v", err)
	}
	if valid, verifyErr := verdictOf(loaded); !valid || verifyErr != nil {
		t.Errorf("empty export verdict = (%v, %v), want (true, nil)", valid, verifyErr)
	}
}

func verdictOf(entries []audit.Entry) (bool, error) {
	return audit.VerifyEntries(entries)
}

func TestExport_DoesNotMutateLedger(t *testing.T) {
	ledger := newLedger(t)
	recordN(t, ledger, 2)
	tip := ledger.Tip()

	path := filepath.Join(t.TempDir(), "trail.json")
	if err := ledger.Export(path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if ledger.Tip() != tip {
		t.Error("export changed the chain tip")
	}
	if ledger.Len() != 2 {
		t.Errorf("export changed the entry count: %d", ledger.Len())
	}
}
