package models

import "fmt"

// RuleType distinguishes how compliance with a rule is established
type RuleType string

// The closed set of rule types
const (
	RuleTypePrescriptive RuleType = "prescriptive"
	RuleTypePerformance  RuleType = "performance"
	RuleTypeMandatory    RuleType = "mandatory"
)

// DefaultRuleType is assigned when a rule is created without a type
const DefaultRuleType = RuleTypeMandatory

// ParseRuleType converts a raw string to a RuleType, rejecting values outside
// the closed set
func ParseRuleType(s string) (RuleType, error) {
	switch RuleType(s) {
	case RuleTypePrescriptive, RuleTypePerformance, RuleTypeMandatory:
		return RuleType(s), nil
	}
	return "", fmt.Errorf("type must be one of prescriptive, performance, mandatory; got %q", s)
}

// String returns the stored representation
func (t RuleType) String() string {
	return string(t)
}
