package audit

import (
	"sync"
	"time"
)

// Store is the persistence boundary behind the ledger. Implementations must
// not acknowledge an Append until the entry is durably recorded (or stored,
// for ephemeral backends), and must return entries from ReadAll and Query in
// append order.
type Store interface {
	Append(entry *Entry) error
	ReadAll() ([]Entry, error)
	Query(f Filter) ([]Entry, error)
	LastHash() (string, error)
	Len() (int, error)
	Close() error
}

// Filter narrows an Entries query. Conditions compose conjunctively; zero
// values mean "no condition". Limit > 0 bounds the result to the most
// recent Limit matches, still returned in append order.
type Filter struct {
	Type  EventType
	Actor string
	Since time.Time
	Limit int
}

// Ledger is the append-only, hash-chained sequence of audit entries.
//
// Record is a critical section: one append at a time across the whole
// ledger, because each append reads the current chain tip and writes a new
// one. Reads take a shared lock so they observe a consistent snapshot and
// never a half-completed append.
type Ledger struct {
	mu    sync.RWMutex
	store Store
	tip   string
	count int
}

// Open creates a ledger over the given store, reconstructing the chain tip
// from the last persisted entry. An empty store starts at the genesis
// sentinel.
func Open(store Store) (*Ledger, error) {
	tip, err := store.LastHash()
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	if tip == "" {
		tip = GenesisHash
	}
	count, err := store.Len()
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	return &Ledger{store: store, tip: tip, count: count}, nil
}

// Record validates the event, builds an entry linked to the current chain
// tip, appends it durably, and advances the tip. The append is atomic:
// either the entry is stored and the tip advances, or neither happens.
func (l *Ledger) Record(ev Event) (*Entry, error) {
	if err := ev.validate(); err != nil {
		return nil, err
	}
	ev.applyDefaults()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := newEntry(ev, l.tip, time.Now())
	if err := l.store.Append(entry); err != nil {
		return nil, &StorageError{Op: "append", Err: err}
	}
	l.tip = entry.EntryHash
	l.count++
	return entry, nil
}

// Entries returns entries matching the filter in append order. When
// f.Limit > 0, the most recent Limit matches are returned.
func (l *Ledger) Entries(f Filter) ([]Entry, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, &ValidationError{Field: "event_type", Reason: "unknown value " + string(f.Type)}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	entries, err := l.store.Query(f)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	return entries, nil
}

// Verify walks the full chain from the genesis entry, checking each entry's
// linkage to its predecessor and recomputing its hash. It stops at the
// first break and reports it as an *IntegrityError; an intact chain returns
// (true, nil). Cost is O(n) in the number of entries.
func (l *Ledger) Verify() (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries, err := l.store.ReadAll()
	if err != nil {
		return false, &StorageError{Op: "read", Err: err}
	}
	return VerifyEntries(entries)
}

// VerifyEntries checks chain integrity over an ordered entry sequence. The
// linkage check runs first (the genesis entry must carry the sentinel),
// then the entry hash is independently recomputed from the canonical
// fields. Resource, metadata, and the summaries are outside the canonical
// set, so mutations to those fields are not detectable by design; the
// verdict covers the hashed fields only.
func VerifyEntries(entries []Entry) (bool, error) {
	prev := GenesisHash
	for i := range entries {
		e := &entries[i]
		if e.PreviousHash != prev {
			return false, &IntegrityError{Index: i, Kind: BreakChainLink, Expected: prev, Got: e.PreviousHash}
		}
		if computed := computeEntryHash(e); computed != e.EntryHash {
			return false, &IntegrityError{Index: i, Kind: BreakHashMismatch, Expected: computed, Got: e.EntryHash}
		}
		prev = e.EntryHash
	}
	return true, nil
}

// Len returns the number of entries in the ledger.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Tip returns the entry_hash of the most recently appended entry, or the
// genesis sentinel for an empty ledger.
func (l *Ledger) Tip() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tip
}

// Close flushes and releases the underlying store. The ledger must not be
// used afterwards.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Close()
}
