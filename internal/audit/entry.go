// Package audit implements a local, tamper-evident audit ledger.
//
// Every governed action is recorded as an immutable Entry in an append-only
// hash chain: each entry embeds a digest of its predecessor, so any silent
// modification of a stored entry breaks verification. Raw inputs and outputs
// never enter the ledger; callers summarize them first (see SummarizeInput
// and SummarizeOutput).
package audit

import (
	"fmt"
	"strings"
	"time"
)

// EventType classifies an auditable event. The set is closed; unknown
// values are rejected at the recording boundary.
type EventType string

const (
	EventExecution           EventType = "execution"
	EventToolInvocation      EventType = "tool_invocation"
	EventPolicyCheck         EventType = "policy_check"
	EventSafetyCheck         EventType = "safety_check"
	EventConfigurationChange EventType = "configuration_change"
	EventError               EventType = "error"
	EventSystem              EventType = "system"
)

// Common outcome values. Outcome is free-form; these cover the usual cases.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeBlocked = "blocked"
)

// Default actor identity applied when a caller records without one.
const (
	DefaultActor     = "system"
	DefaultActorType = "internal"
)

// EventTypes returns all valid event types in declaration order.
func EventTypes() []EventType {
	return []EventType{
		EventExecution,
		EventToolInvocation,
		EventPolicyCheck,
		EventSafetyCheck,
		EventConfigurationChange,
		EventError,
		EventSystem,
	}
}

// Valid reports whether t is a member of the closed event type set.
func (t EventType) Valid() bool {
	switch t {
	case EventExecution, EventToolInvocation, EventPolicyCheck,
		EventSafetyCheck, EventConfigurationChange, EventError, EventSystem:
		return true
	}
	return false
}

// ParseEventType converts a string to an EventType, matching
// case-insensitively after trimming whitespace.
func ParseEventType(s string) (EventType, error) {
	t := EventType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{Field: "event_type", Reason: fmt.Sprintf("unknown value %q", s)}
	}
	return t, nil
}

// Entry is a single record in the audit chain. Entries are immutable once
// appended; a stored entry whose hash no longer matches its fields indicates
// external tampering, never ledger error.
type Entry struct {
	EventID       string            `json:"event_id"`
	EventType     EventType         `json:"event_type"`
	Timestamp     time.Time         `json:"timestamp"`
	Actor         string            `json:"actor"`
	ActorType     string            `json:"actor_type"`
	Action        string            `json:"action"`
	Resource      string            `json:"resource"`
	Outcome       string            `json:"outcome"`
	InputSummary  string            `json:"input_summary"`
	OutputSummary string            `json:"output_summary"`
	Metadata      map[string]string `json:"metadata"`
	PreviousHash  string            `json:"previous_hash"`
	EntryHash     string            `json:"entry_hash"`
}

// Event carries the caller-supplied fields for one recorded action.
// Zero-value Outcome, Actor, and ActorType receive defaults at record time.
type Event struct {
	Type          EventType
	Action        string
	Resource      string
	Outcome       string
	Actor         string
	ActorType     string
	InputSummary  string
	OutputSummary string
	Metadata      map[string]string
}

func (ev *Event) validate() error {
	if !ev.Type.Valid() {
		return &ValidationError{Field: "event_type", Reason: fmt.Sprintf("unknown value %q", string(ev.Type))}
	}
	if strings.TrimSpace(ev.Action) == "" {
		return &ValidationError{Field: "action", Reason: "must not be empty"}
	}
	return nil
}

func (ev *Event) applyDefaults() {
	if ev.Outcome == "" {
		ev.Outcome = OutcomeSuccess
	}
	if ev.Actor == "" {
		ev.Actor = DefaultActor
	}
	if ev.ActorType == "" {
		ev.ActorType = DefaultActorType
	}
}
