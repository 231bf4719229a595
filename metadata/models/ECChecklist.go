package models

// ECChecklist is a named bundle of checks generated from a selection of
// active rules at creation time. Membership is fixed once created; later rule
// edits never change an in-flight checklist.
type ECChecklist struct {
	ECCommonMeta
	// Name is the caller supplied name for this audit
	Name string `db:"name"`
	// Description is an optional abstract of the audit scope
	Description NullString `db:"description"`
	// Status is the lifecycle state. Legal moves are draft to active, active
	// to archived, and archived to active only.
	Status ChecklistStatus `db:"status"`
	// Checks is the set of verification records owned by this checklist,
	// populated on retrieval
	Checks []ECCheck
	// Counts is the derived status tally, populated on retrieval and never
	// stored
	Counts StatusCounts
}

// ECChecklistResultset encapsulates the ECChecklist defined herein as an
// array with resultset metric information to expose page size, page number,
// total rows, and page count information when retrieving from the database
type ECChecklistResultset struct {
	Resultset
	Checklists []ECChecklist
}
