package models_test

import (
	"testing"

	"github.com/enercheck/compliance-server/metadata/models"
)

func checkWithStatus(status models.CheckStatus) models.ECCheck {
	var c models.ECCheck
	c.Status = status
	return c
}

func TestTallyStatusCounts(t *testing.T) {

	checks := []models.ECCheck{
		checkWithStatus(models.CheckStatusPending),
		checkWithStatus(models.CheckStatusPassed),
		checkWithStatus(models.CheckStatusPassed),
		checkWithStatus(models.CheckStatusFailed),
		checkWithStatus(models.CheckStatusNotApplicable),
	}

	counts := models.TallyStatusCounts(checks)
	if counts.Pending != 1 || counts.Passed != 2 || counts.Failed != 1 || counts.NotApplicable != 1 {
		t.Errorf("Unexpected tally: %+v", counts)
	}
	if counts.Total() != len(checks) {
		t.Errorf("Expected total %d to equal check count %d", counts.Total(), len(checks))
	}
}

func TestTallyStatusCountsZeroFilled(t *testing.T) {

	counts := models.TallyStatusCounts([]models.ECCheck{checkWithStatus(models.CheckStatusPassed)})
	if counts.Pending != 0 || counts.Failed != 0 || counts.NotApplicable != 0 {
		t.Errorf("Expected untouched buckets to be zero: %+v", counts)
	}
	if counts.Total() != 1 {
		t.Errorf("Expected total 1, got %d", counts.Total())
	}
}

func TestCompletionPercent(t *testing.T) {

	cases := []struct {
		counts   models.StatusCounts
		expected int
	}{
		{models.StatusCounts{Pending: 3}, 0},
		{models.StatusCounts{Pending: 0, Passed: 3}, 100},
		{models.StatusCounts{Pending: 1, Passed: 1}, 50},
		{models.StatusCounts{Pending: 1, Passed: 1, Failed: 1}, 67},
		{models.StatusCounts{Pending: 2, Passed: 1}, 33},
		// total zero only arises from corrupted data and must not divide by zero
		{models.StatusCounts{}, 0},
	}
	for _, tc := range cases {
		if got := tc.counts.CompletionPercent(); got != tc.expected {
			t.Errorf("Counts %+v: expected %d percent, got %d", tc.counts, tc.expected, got)
		}
	}
}
