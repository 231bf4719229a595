package protocol

// RuleResultset encapsulates the Rule defined herein as an array with
// resultset metric information to expose page size, page number, total rows,
// and page count information when retrieving from the data store
type RuleResultset struct {
	// Resultset contains meta information about the resultset
	Resultset
	// Rules contains the list of rules in this (page of) results.
	Rules []Rule `json:"rules,omitempty"`
}
