package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// entryHashLen is the stored width of an entry hash: a SHA-256 hex
	// digest truncated to 16 characters.
	entryHashLen = 16

	// GenesisHash is the previous_hash sentinel carried by the first entry
	// in the chain.
	GenesisHash = "0000000000000000"
)

// canonicalEntry is the fixed field set hashed for chain integrity. Field
// names are sorted so the serialized form is stable; resource, metadata,
// and the summaries are deliberately excluded (see VerifyEntries).
type canonicalEntry struct {
	Action       string `json:"action"`
	Actor        string `json:"actor"`
	EventID      string `json:"event_id"`
	EventType    string `json:"event_type"`
	Outcome      string `json:"outcome"`
	PreviousHash string `json:"previous_hash"`
	Timestamp    string `json:"timestamp"`
}

// newEntry assembles a complete entry from caller-supplied fields plus the
// chain linkage metadata. The caller holds the ledger write lock; the entry
// must not be modified after this returns.
func newEntry(ev Event, previousHash string, now time.Time) *Entry {
	entry := &Entry{
		EventID:       uuid.NewString(),
		EventType:     ev.Type,
		Timestamp:     now.UTC(),
		Actor:         ev.Actor,
		ActorType:     ev.ActorType,
		Action:        ev.Action,
		Resource:      ev.Resource,
		Outcome:       ev.Outcome,
		InputSummary:  ev.InputSummary,
		OutputSummary: ev.OutputSummary,
		Metadata:      cloneMetadata(ev.Metadata),
		PreviousHash:  previousHash,
	}
	entry.EntryHash = computeEntryHash(entry)
	return entry
}

// computeEntryHash derives the truncated SHA-256 digest of an entry's
// canonical fields. It is a pure function of the entry: recomputing it for
// a stored entry and comparing against entry_hash detects tampering.
func computeEntryHash(e *Entry) string {
	payload, _ := json.Marshal(canonicalEntry{
		Action:       e.Action,
		Actor:        e.Actor,
		EventID:      e.EventID,
		EventType:    string(e.EventType),
		Outcome:      e.Outcome,
		PreviousHash: e.PreviousHash,
		Timestamp:    e.Timestamp.UTC().Format(time.RFC3339Nano),
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])[:entryHashLen]
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
