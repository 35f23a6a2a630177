package storage

import (
	"slices"
	"testing"

	"chaintrail/internal/audit"
)

func resetRegistry(t *testing.T) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)
}

func TestRegistry_OpenBuiltins(t *testing.T) {
	resetRegistry(t)
	RegisterBuiltins()

	names := List()
	slices.Sort(names)
	want := []string{"memory", "sqlite"}
	if !slices.Equal(names, want) {
		t.Fatalf("List = %v, want %v", names, want)
	}

	store, err := Open("memory", "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*Memory); !ok {
		t.Errorf("expected *Memory, got %T", store)
	}
}

func TestRegistry_UnknownBackend(t *testing.T) {
	resetRegistry(t)
	RegisterBuiltins()

	if _, err := Open("postgres", ""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestRegistry_NameNormalization(t *testing.T) {
	resetRegistry(t)
	Register("  Custom ", func(string) (audit.Store, error) {
		return NewMemory(), nil
	})

	store, err := Open("custom", "")
	if err != nil {
		t.Fatalf("Open with normalized name failed: %v", err)
	}
	defer store.Close()
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	resetRegistry(t)
	factory := func(string) (audit.Store, error) { return NewMemory(), nil }
	Register("memory", factory)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("memory", factory)
}
