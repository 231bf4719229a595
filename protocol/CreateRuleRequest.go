package protocol

// CreateRuleRequest is the set of fields accepted when defining a new rule.
// Severity defaults to major and ruleType to mandatory when omitted.
type CreateRuleRequest struct {
	// SectionRef names the standards section this rule is derived from, if any.
	SectionRef string `json:"sectionRef,omitempty"`
	// RuleCode is the unique human-meaningful code for the rule.
	RuleCode string `json:"ruleCode"`
	// Title is the short name of the requirement.
	Title string `json:"title"`
	// Description is the requirement text as audited.
	Description string `json:"description"`
	// Severity classifies the impact of a violation.
	Severity string `json:"severity,omitempty"`
	// RuleType distinguishes how the requirement is expressed.
	RuleType string `json:"ruleType,omitempty"`
	// VerificationMethod describes how an auditor establishes compliance.
	VerificationMethod string `json:"verificationMethod,omitempty"`
	// EvaluationCriteria describes what measured values satisfy the rule.
	EvaluationCriteria string `json:"evaluationCriteria,omitempty"`
	// FailureImpact describes the consequence of non-compliance.
	FailureImpact string `json:"failureImpact,omitempty"`
	// RemediationAdvice suggests corrective action on failure.
	RemediationAdvice string `json:"remediationAdvice,omitempty"`
}
