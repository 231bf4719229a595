package dao_test

import (
	"testing"

	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/metadata/models"
)

func TestDAOGetStatusCounts(t *testing.T) {
	skipIfNoDB(t)

	var ruleIDs [][]byte
	for i := 0; i < 4; i++ {
		rule := createRuleFixture(t, uniqueCode("NEC-408.4"))
		ruleIDs = append(ruleIDs, rule.ID)
	}
	checklist := createChecklistFixture(t, "Tally audit", ruleIDs)

	resolve := func(idx int, status models.CheckStatus) {
		t.Helper()
		if _, err := d.UpdateCheck(checklist.ID, checklist.Checks[idx].ID, dao.CheckPatch{Status: status}, testInspector); err != nil {
			t.Fatal(err)
		}
	}
	resolve(0, models.CheckStatusPassed)
	resolve(1, models.CheckStatusFailed)
	resolve(2, models.CheckStatusNotApplicable)

	counts, err := d.GetStatusCounts(checklist.ID)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Pending != 1 || counts.Passed != 1 || counts.Failed != 1 || counts.NotApplicable != 1 {
		t.Errorf("expected one check per bucket, got %+v", counts)
	}
	if counts.Total() != 4 {
		t.Errorf("expected total 4, got %d", counts.Total())
	}
	if counts.CompletionPercent() != 75 {
		t.Errorf("expected 75 percent complete, got %d", counts.CompletionPercent())
	}

	pending, err := d.GetPendingCount(checklist.ID)
	if err != nil {
		t.Fatal(err)
	}
	if pending != 1 {
		t.Errorf("expected 1 pending, got %d", pending)
	}

	if _, err := d.GetStatusCounts(make([]byte, 16)); !dao.IsNotFound(err) {
		t.Errorf("unknown checklist should be not found, got %v", err)
	}
	if _, err := d.GetPendingCount(make([]byte, 16)); !dao.IsNotFound(err) {
		t.Errorf("unknown checklist should be not found, got %v", err)
	}
}
