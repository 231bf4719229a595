package models

import "math"

// StatusCounts is the derived tally of check statuses within a checklist.
// All four buckets are always present and sum to the checklist's check count.
// Counts are recomputed on read and never stored.
type StatusCounts struct {
	Pending       int
	Passed        int
	Failed        int
	NotApplicable int
}

// Total is the number of checks tallied
func (c StatusCounts) Total() int {
	return c.Pending + c.Passed + c.Failed + c.NotApplicable
}

// CompletionPercent is the share of checks no longer pending, rounded to the
// nearest whole percent. A checklist always has at least one check, so a zero
// total only arises from corrupted data and yields zero.
func (c StatusCounts) CompletionPercent() int {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(total-c.Pending) / float64(total)))
}

// Add places one observation of a status into the matching bucket. Unknown
// statuses are ignored; parsing rejects them before storage.
func (c *StatusCounts) Add(status CheckStatus, n int) {
	switch status {
	case CheckStatusPending:
		c.Pending += n
	case CheckStatusPassed:
		c.Passed += n
	case CheckStatusFailed:
		c.Failed += n
	case CheckStatusNotApplicable:
		c.NotApplicable += n
	}
}

// TallyStatusCounts computes the tally for a set of checks in a single pass
func TallyStatusCounts(checks []ECCheck) StatusCounts {
	var counts StatusCounts
	for _, check := range checks {
		counts.Add(check.Status, 1)
	}
	return counts
}
