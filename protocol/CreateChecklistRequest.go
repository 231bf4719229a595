package protocol

// CreateChecklistRequest is the set of fields accepted when starting a new
// audit. Every referenced rule must exist and be active or the whole request
// is rejected; no partial checklist is ever created.
type CreateChecklistRequest struct {
	// Name is the given name for the audit.
	Name string `json:"name"`
	// Description is an optional abstract of the audit scope.
	Description string `json:"description,omitempty"`
	// RuleIds selects the active rules to snapshot into checks. Duplicates are
	// collapsed. At least one rule is required.
	RuleIds []string `json:"ruleIds"`
}
