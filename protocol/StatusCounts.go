package protocol

// StatusCounts is the derived tally of check statuses within a checklist.
// All four buckets are always present, zero filled, and sum to the
// checklist's check count. Counts are computed on read and never stored.
type StatusCounts struct {
	// Pending is the number of checks not yet verified.
	Pending int `json:"pending"`
	// Passed is the number of checks verified compliant.
	Passed int `json:"passed"`
	// Failed is the number of checks verified non-compliant.
	Failed int `json:"failed"`
	// NotApplicable is the number of checks ruled out of scope for this audit.
	NotApplicable int `json:"notApplicable"`
	// Total is the number of checks tallied.
	Total int `json:"total"`
	// CompletionPercent is the share of checks no longer pending, rounded to
	// the nearest whole percent.
	CompletionPercent int `json:"completionPercent"`
}
