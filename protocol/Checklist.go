package protocol

import "time"

// Checklist is a named audit built from a snapshot of active rules at
// creation time. Membership is fixed once created; later rule edits never
// change an in-flight checklist.
type Checklist struct {
	// ID is the unique identifier for this checklist in the engine.
	ID string `json:"id"`
	// CreatedDate is the timestamp of when the checklist was created.
	CreatedDate time.Time `json:"createdDate"`
	// CreatedBy is the user that created this checklist.
	CreatedBy string `json:"createdBy"`
	// ModifiedDate is the timestamp of when the checklist was modified or created.
	ModifiedDate time.Time `json:"modifiedDate"`
	// ModifiedBy is the user that last modified this checklist.
	ModifiedBy string `json:"modifiedBy"`
	// Name is the given name for the audit.
	Name string `json:"name"`
	// Description is an abstract of the audit scope.
	Description string `json:"description,omitempty"`
	// Status is the lifecycle state. One of draft, active, archived.
	Status string `json:"status"`
	// Counts is the derived tally of check statuses within this checklist.
	Counts StatusCounts `json:"counts"`
}
