package models

// ECCheck is the verification record of one rule within one checklist. It is
// owned exclusively by its checklist and removed with it, never independently.
type ECCheck struct {
	ECCommonMeta
	// ChecklistID identifies the owning checklist
	ChecklistID []byte `db:"checklistId"`
	// RuleID references the rule being verified. The reference is weak; the
	// rule may later be deactivated without invalidating this check.
	RuleID []byte `db:"ruleId"`
	// Status is the verification state, initially pending
	Status CheckStatus `db:"status"`
	// Notes holds auditor remarks
	Notes NullString `db:"notes"`
	// Evidence references supporting material recorded by the auditor
	Evidence NullString `db:"evidence"`
	// CheckedBy is the actor that last verified this check. Set together with
	// CheckedAt whenever status is not pending, cleared when a check moves
	// back to pending.
	CheckedBy NullString `db:"checkedBy"`
	// CheckedAt is when the check was last verified
	CheckedAt NullTime `db:"checkedAt"`
	// RuleCode is the code of the referenced rule, captured when the owning
	// checklist is created. Later edits to the rule do not alter it.
	RuleCode string `db:"ruleCode"`
	// RuleTitle is the title of the referenced rule, captured when the owning
	// checklist is created
	RuleTitle string `db:"ruleTitle"`
}
