package protocol

// ChecklistResultset encapsulates the Checklist defined herein as an array
// with resultset metric information to expose page size, page number, total
// rows, and page count information when retrieving from the data store
type ChecklistResultset struct {
	// Resultset contains meta information about the resultset
	Resultset
	// Checklists contains the list of checklists in this (page of) results.
	Checklists []Checklist `json:"checklists,omitempty"`
}
