package protocol

// DeletedRuleResponse is the response information provided when a rule is
// deleted from the engine. Exactly one of Deleted or Deactivated is true: a
// rule referenced by no check is removed outright, while a referenced rule is
// deactivated so historical checks stay resolvable.
type DeletedRuleResponse struct {
	// ID is the unique identifier for the rule that was deleted or deactivated.
	ID string `json:"id"`
	// Deleted indicates the rule row is gone.
	Deleted bool `json:"deleted"`
	// Deactivated indicates the rule remains retrievable with isActive false.
	Deactivated bool `json:"deactivated"`
	// Rule carries the surviving rule when the action was a deactivation.
	Rule *Rule `json:"rule,omitempty"`
}
