package valueobject

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// CollectionCaseStatus – immutable value object
// ---------------------------------------------------------------------------

// CollectionCaseStatus is the lifecycle stage of a collection case.
type CollectionCaseStatus struct {
	value string
}

var (
	CollectionCaseStatusOpen       = CollectionCaseStatus{value: "open"}
	CollectionCaseStatusInProgress = CollectionCaseStatus{value: "in_progress"}
	CollectionCaseStatusPromise    = CollectionCaseStatus{value: "promise"}
	CollectionCaseStatusClosed     = CollectionCaseStatus{value: "closed"}
)

// NewCollectionCaseStatus parses a raw case status.
func NewCollectionCaseStatus(s string) (CollectionCaseStatus, error) {
	for _, v := range []CollectionCaseStatus{
		CollectionCaseStatusOpen, CollectionCaseStatusInProgress,
		CollectionCaseStatusPromise, CollectionCaseStatusClosed,
	} {
		if v.value == s {
			return v, nil
		}
	}
	return CollectionCaseStatus{}, fmt.Errorf("invalid collection case status: %q", s)
}

func (s CollectionCaseStatus) String() string { return s.value }
func (s CollectionCaseStatus) IsZero() bool   { return s.value == "" }

// Equal returns true when both statuses match.
func (s CollectionCaseStatus) Equal(other CollectionCaseStatus) bool {
	return s.value == other.value
}

// ---------------------------------------------------------------------------
// Priority
// ---------------------------------------------------------------------------

// Priority orders collection work.
type Priority struct {
	value string
}

var (
	PriorityLow    = Priority{value: "low"}
	PriorityMedium = Priority{value: "medium"}
	PriorityHigh   = Priority{value: "high"}
)

// NewPriority parses a raw priority; empty defaults to medium.
func NewPriority(s string) (Priority, error) {
	switch s {
	case "":
		return PriorityMedium, nil
	case PriorityLow.value:
		return PriorityLow, nil
	case PriorityMedium.value:
		return PriorityMedium, nil
	case PriorityHigh.value:
		return PriorityHigh, nil
	}
	return Priority{}, fmt.Errorf("invalid priority: %q", s)
}

func (p Priority) String() string            { return p.value }
func (p Priority) Equal(other Priority) bool { return p.value == other.value }

// ---------------------------------------------------------------------------
// ActionKind
// ---------------------------------------------------------------------------

// ActionKind is the channel of a collection action.
type ActionKind struct {
	value string
}

var (
	ActionKindCall     = ActionKind{value: "call"}
	ActionKindEmail    = ActionKind{value: "email"}
	ActionKindSMS      = ActionKind{value: "sms"}
	ActionKindWhatsApp = ActionKind{value: "whatsapp"}
	ActionKindVisit    = ActionKind{value: "visit"}
	ActionKindReminder = ActionKind{value: "reminder"}
	ActionKindNote     = ActionKind{value: "note"}
)

var validActionKinds = []ActionKind{
	ActionKindCall, ActionKindEmail, ActionKindSMS, ActionKindWhatsApp,
	ActionKindVisit, ActionKindReminder, ActionKindNote,
}

// NewActionKind parses a raw action kind.
func NewActionKind(s string) (ActionKind, error) {
	for _, k := range validActionKinds {
		if k.value == s {
			return k, nil
		}
	}
	return ActionKind{}, fmt.Errorf("invalid collection action kind: %q", s)
}

func (k ActionKind) String() string              { return k.value }
func (k ActionKind) Equal(other ActionKind) bool { return k.value == other.value }
