package storage

import (
	"fmt"
	"sync"

	"chaintrail/internal/audit"
	"chaintrail/internal/util"
)

// Factory builds a store. The path argument is backend-specific: the SQLite
// backend treats an empty path as "use the default database location"; the
// memory backend ignores it.
type Factory func(path string) (audit.Store, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds a named backend factory. Registering a duplicate or empty
// name panics; backends are wired once at startup.
func Register(name string, factory Factory) {
	normalizedName := util.NormalizeKey(name)
	if normalizedName == "" {
		panic("storage: empty backend name")
	}
	if factory == nil {
		panic("storage: nil factory")
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[normalizedName]; exists {
		panic(fmt.Sprintf("storage: backend %q already registered", name))
	}

	registry[normalizedName] = factory
}

// Open builds a store for the named backend.
func Open(name, path string) (audit.Store, error) {
	normalizedName := util.NormalizeKey(name)
	mu.RLock()
	factory, ok := registry[normalizedName]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("storage: unknown backend %q", name)
	}

	return factory(path)
}

// List returns the names of all registered backends.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Reset clears the backend registry. Intended for use in tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = map[string]Factory{}
}

// RegisterBuiltins wires the memory and sqlite backends. Called once from
// the CLI entry point.
func RegisterBuiltins() {
	Register("memory", func(string) (audit.Store, error) {
		return NewMemory(), nil
	})
	Register("sqlite", func(path string) (audit.Store, error) {
		if path == "" {
			return OpenSQLite()
		}
		return OpenSQLiteAt(path)
	})
}
