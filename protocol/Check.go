package protocol

import "time"

// Check is the verification record of one rule within one checklist. It is
// owned exclusively by its checklist and removed with it, never independently.
type Check struct {
	// ID is the unique identifier for this check in the engine.
	ID string `json:"id"`
	// CreatedDate is the timestamp of when the check was created.
	CreatedDate time.Time `json:"createdDate"`
	// CreatedBy is the user that created this check.
	CreatedBy string `json:"createdBy"`
	// ModifiedDate is the timestamp of when the check was modified or created.
	ModifiedDate time.Time `json:"modifiedDate"`
	// ModifiedBy is the user that last modified this check.
	ModifiedBy string `json:"modifiedBy"`
	// ChecklistID identifies the owning checklist.
	ChecklistID string `json:"checklistId"`
	// RuleID references the rule being verified. The rule may since have been
	// deactivated; the reference stays resolvable regardless.
	RuleID string `json:"ruleId"`
	// RuleCode is the code of the referenced rule.
	RuleCode string `json:"ruleCode"`
	// RuleTitle is the title of the referenced rule.
	RuleTitle string `json:"ruleTitle"`
	// Status is the verification state. One of pending, passed, failed,
	// not_applicable.
	Status string `json:"status"`
	// Notes holds auditor remarks.
	Notes string `json:"notes,omitempty"`
	// Evidence references supporting material recorded by the auditor.
	Evidence string `json:"evidence,omitempty"`
	// CheckedBy is the actor that last verified this check, present whenever
	// status is not pending.
	CheckedBy string `json:"checkedBy,omitempty"`
	// CheckedAt is when the check was last verified.
	CheckedAt *time.Time `json:"checkedAt,omitempty"`
}
