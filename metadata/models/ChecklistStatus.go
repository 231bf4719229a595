package models

import "fmt"

// ChecklistStatus is the lifecycle state of a checklist
type ChecklistStatus string

// The closed set of checklist statuses
const (
	ChecklistStatusDraft    ChecklistStatus = "draft"
	ChecklistStatusActive   ChecklistStatus = "active"
	ChecklistStatusArchived ChecklistStatus = "archived"
)

// checklistTransitions enumerates every legal status move. Anything absent,
// including a transition to the current status, is illegal.
var checklistTransitions = map[ChecklistStatus]ChecklistStatus{
	ChecklistStatusDraft:    ChecklistStatusActive,
	ChecklistStatusActive:   ChecklistStatusArchived,
	ChecklistStatusArchived: ChecklistStatusActive,
}

// ParseChecklistStatus converts a raw string to a ChecklistStatus, rejecting
// values outside the closed set
func ParseChecklistStatus(s string) (ChecklistStatus, error) {
	switch ChecklistStatus(s) {
	case ChecklistStatusDraft, ChecklistStatusActive, ChecklistStatusArchived:
		return ChecklistStatus(s), nil
	}
	return "", fmt.Errorf("status must be one of draft, active, archived; got %q", s)
}

// CanTransitionTo reports whether moving from this status to the target is a
// legal lifecycle transition
func (s ChecklistStatus) CanTransitionTo(target ChecklistStatus) bool {
	next, ok := checklistTransitions[s]
	return ok && next == target
}

// String returns the stored representation
func (s ChecklistStatus) String() string {
	return string(s)
}
