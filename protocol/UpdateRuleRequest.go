package protocol

// UpdateRuleRequest is a partial update for a rule. Omitted fields retain
// their stored values. An empty string assigned to an optional text field
// clears it; required fields reject empty strings.
type UpdateRuleRequest struct {
	// SectionRef names the standards section this rule is derived from.
	SectionRef *string `json:"sectionRef,omitempty"`
	// RuleCode is the unique human-meaningful code for the rule.
	RuleCode *string `json:"ruleCode,omitempty"`
	// Title is the short name of the requirement.
	Title *string `json:"title,omitempty"`
	// Description is the requirement text as audited.
	Description *string `json:"description,omitempty"`
	// Severity classifies the impact of a violation.
	Severity *string `json:"severity,omitempty"`
	// RuleType distinguishes how the requirement is expressed.
	RuleType *string `json:"ruleType,omitempty"`
	// VerificationMethod describes how an auditor establishes compliance.
	VerificationMethod *string `json:"verificationMethod,omitempty"`
	// EvaluationCriteria describes what measured values satisfy the rule.
	EvaluationCriteria *string `json:"evaluationCriteria,omitempty"`
	// FailureImpact describes the consequence of non-compliance.
	FailureImpact *string `json:"failureImpact,omitempty"`
	// RemediationAdvice suggests corrective action on failure.
	RemediationAdvice *string `json:"remediationAdvice,omitempty"`
	// IsActive permits deactivating a rule through an update. Reactivation is
	// also accepted here; the delete operation never resurrects.
	IsActive *bool `json:"isActive,omitempty"`
}
