// Package storage provides the persistence backends behind the audit
// ledger: an ephemeral in-memory store and a durable SQLite store, selected
// through an explicit registry.
package storage

import (
	"sync"

	"chaintrail/internal/audit"
)

// Memory is an ephemeral store. Entries live only for the process lifetime;
// it is used for tests and short-lived sessions.
type Memory struct {
	mu      sync.Mutex
	entries []audit.Entry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Append stores a copy of the entry, insulating the store from later
// mutation of the caller's value.
func (m *Memory) Append(entry *audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, copyEntry(*entry))
	return nil
}

// ReadAll returns all entries in append order.
func (m *Memory) ReadAll() ([]audit.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audit.Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = copyEntry(e)
	}
	return out, nil
}

// Query returns entries matching the filter in append order, keeping the
// most recent Limit matches when a limit is set.
func (m *Memory) Query(f audit.Filter) ([]audit.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []audit.Entry
	for _, e := range m.entries {
		if f.Type != "" && e.EventType != f.Type {
			continue
		}
		if f.Actor != "" && e.Actor != f.Actor {
			continue
		}
		if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
			continue
		}
		matched = append(matched, copyEntry(e))
	}

	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[len(matched)-f.Limit:]
	}
	return matched, nil
}

// LastHash returns the entry_hash of the most recent entry, or "" when the
// store is empty.
func (m *Memory) LastHash() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return "", nil
	}
	return m.entries[len(m.entries)-1].EntryHash, nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }

func copyEntry(e audit.Entry) audit.Entry {
	if e.Metadata != nil {
		meta := make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			meta[k] = v
		}
		e.Metadata = meta
	}
	return e
}
