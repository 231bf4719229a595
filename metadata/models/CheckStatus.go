package models

import "fmt"

// CheckStatus is the verification state of a single check
type CheckStatus string

// The closed set of check statuses. A check starts pending; the other three
// record a verification outcome and remain editable.
const (
	CheckStatusPending       CheckStatus = "pending"
	CheckStatusPassed        CheckStatus = "passed"
	CheckStatusFailed        CheckStatus = "failed"
	CheckStatusNotApplicable CheckStatus = "not_applicable"
)

// ParseCheckStatus converts a raw string to a CheckStatus, rejecting values
// outside the closed set
func ParseCheckStatus(s string) (CheckStatus, error) {
	switch CheckStatus(s) {
	case CheckStatusPending, CheckStatusPassed, CheckStatusFailed, CheckStatusNotApplicable:
		return CheckStatus(s), nil
	}
	return "", fmt.Errorf("status must be one of pending, passed, failed, not_applicable; got %q", s)
}

// String returns the stored representation
func (s CheckStatus) String() string {
	return string(s)
}
