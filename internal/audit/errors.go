package audit

import "fmt"

// ValidationError reports a rejected Event before any mutation of the
// ledger. No entry is recorded when validation fails.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("audit: invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps a persistence failure. The ledger never reports a
// successful record without a durable write, so callers of Record see this
// error whenever the backend rejects or loses an append.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit: storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// BreakKind distinguishes the two ways a chain can fail verification.
type BreakKind int

const (
	// BreakChainLink means an entry's previous_hash does not match the
	// recorded entry_hash of its predecessor.
	BreakChainLink BreakKind = iota

	// BreakHashMismatch means an entry's stored entry_hash does not match
	// the hash recomputed from its canonical fields.
	BreakHashMismatch
)

// IntegrityError reports the first verification failure found while walking
// the chain. It is never auto-repaired: a broken chain is evidence.
type IntegrityError struct {
	Index    int
	Kind     BreakKind
	Expected string
	Got      string
}

func (e *IntegrityError) Error() string {
	switch e.Kind {
	case BreakChainLink:
		return fmt.Sprintf("chain broken at index %d: expected previous_hash %s, got %s", e.Index, e.Expected, e.Got)
	default:
		return fmt.Sprintf("hash mismatch at index %d: computed %s, stored %s", e.Index, e.Expected, e.Got)
	}
}
