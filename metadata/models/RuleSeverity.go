package models

import "fmt"

// RuleSeverity classifies how serious a violation of a rule is
type RuleSeverity string

// The closed set of rule severities
const (
	SeverityCritical RuleSeverity = "critical"
	SeverityMajor    RuleSeverity = "major"
	SeverityMinor    RuleSeverity = "minor"
)

// DefaultRuleSeverity is assigned when a rule is created without a severity
const DefaultRuleSeverity = SeverityMajor

// ParseRuleSeverity converts a raw string to a RuleSeverity, rejecting values
// outside the closed set
func ParseRuleSeverity(s string) (RuleSeverity, error) {
	switch RuleSeverity(s) {
	case SeverityCritical, SeverityMajor, SeverityMinor:
		return RuleSeverity(s), nil
	}
	return "", fmt.Errorf("severity must be one of critical, major, minor; got %q", s)
}

// String returns the stored representation
func (s RuleSeverity) String() string {
	return string(s)
}
