package protocol

import "time"

// Rule is the base structure for an auditable compliance requirement drawn
// from an electrical or energy code.
type Rule struct {
	// ID is the unique identifier for this rule in the engine.
	ID string `json:"id"`
	// CreatedDate is the timestamp of when the rule was created.
	CreatedDate time.Time `json:"createdDate"`
	// CreatedBy is the user that created this rule.
	CreatedBy string `json:"createdBy"`
	// ModifiedDate is the timestamp of when the rule was modified or created.
	ModifiedDate time.Time `json:"modifiedDate"`
	// ModifiedBy is the user that last modified this rule.
	ModifiedBy string `json:"modifiedBy"`
	// SectionRef names the standards section this rule is derived from, if any.
	SectionRef string `json:"sectionRef,omitempty"`
	// RuleCode is the human-meaningful code for the rule (e.g., EC-105.3). It is
	// unique across all rules regardless of the active flag.
	RuleCode string `json:"ruleCode"`
	// Title is the short name of the requirement.
	Title string `json:"title"`
	// Description is the requirement text as audited.
	Description string `json:"description"`
	// Severity classifies the impact of a violation. One of critical, major,
	// minor, info.
	Severity string `json:"severity"`
	// RuleType distinguishes how the requirement is expressed. One of
	// prescriptive, performance, mandatory.
	RuleType string `json:"ruleType"`
	// VerificationMethod describes how an auditor establishes compliance.
	VerificationMethod string `json:"verificationMethod,omitempty"`
	// EvaluationCriteria describes what measured values satisfy the rule.
	EvaluationCriteria string `json:"evaluationCriteria,omitempty"`
	// FailureImpact describes the consequence of non-compliance.
	FailureImpact string `json:"failureImpact,omitempty"`
	// RemediationAdvice suggests corrective action on failure.
	RemediationAdvice string `json:"remediationAdvice,omitempty"`
	// IsActive indicates whether the rule may be selected into new checklists.
	IsActive bool `json:"isActive"`
}
