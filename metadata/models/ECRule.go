package models

// ECRule is a single auditable compliance requirement drawn from an
// electrical or energy code
type ECRule struct {
	ECCommonMeta
	// SectionRef names the standards section this rule is derived from. It is
	// informational, validated for existence against the section reference
	// data when set, and owned externally.
	SectionRef NullString `db:"sectionRef"`
	// RuleCode is the human-meaningful code for the rule (e.g., EC-105.3).
	// It is unique across all rules regardless of the active flag.
	RuleCode string `db:"ruleCode"`
	// Title is the short name of the requirement
	Title string `db:"title"`
	// Description is the requirement text as audited
	Description string `db:"description"`
	// Severity classifies the impact of a violation
	Severity RuleSeverity `db:"severity"`
	// RuleType distinguishes prescriptive, performance and mandatory rules
	RuleType RuleType `db:"ruleType"`
	// VerificationMethod describes how an auditor establishes compliance
	VerificationMethod NullString `db:"verificationMethod"`
	// EvaluationCriteria describes what measured values satisfy the rule
	EvaluationCriteria NullString `db:"evaluationCriteria"`
	// FailureImpact describes the consequence of non-compliance
	FailureImpact NullString `db:"failureImpact"`
	// RemediationAdvice suggests corrective action on failure
	RemediationAdvice NullString `db:"remediationAdvice"`
	// IsActive indicates whether the rule may be selected into new
	// checklists. Deactivation is one way; rules are never resurrected
	// automatically.
	IsActive bool `db:"isActive"`
}

// ECRuleResultset encapsulates the ECRule defined herein as an array with
// resultset metric information to expose page size, page number, total rows,
// and page count information when retrieving from the database
type ECRuleResultset struct {
	Resultset
	Rules []ECRule
}
