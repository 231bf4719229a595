package dao_test

import (
	"testing"

	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/metadata/models"
)

func TestDAOListChecklists(t *testing.T) {
	skipIfNoDB(t)

	rule := createRuleFixture(t, uniqueCode("NEC-110.26"))
	createChecklistFixture(t, "First listing audit", [][]byte{rule.ID})
	createChecklistFixture(t, "Second listing audit", [][]byte{rule.ID})

	resultset, err := d.ListChecklists(dao.PagingRequest{}, dao.ChecklistFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if resultset.TotalRows < 2 {
		t.Errorf("expected at least 2 checklists, got %d", resultset.TotalRows)
	}
	if resultset.PageRows != len(resultset.Checklists) {
		t.Error("page rows must match the returned page")
	}
	for i := 1; i < len(resultset.Checklists); i++ {
		if resultset.Checklists[i-1].CreatedDate.Before(resultset.Checklists[i].CreatedDate) {
			t.Error("checklists must order newest first")
			break
		}
	}
	for _, checklist := range resultset.Checklists {
		if checklist.Counts.Total() == 0 {
			t.Error("listed checklists must carry a status tally")
			break
		}
		if len(checklist.Checks) != 0 {
			t.Error("listings must not inline the full check set")
			break
		}
	}

	drafts, err := d.ListChecklists(dao.PagingRequest{}, dao.ChecklistFilter{Status: models.ChecklistStatusDraft})
	if err != nil {
		t.Fatal(err)
	}
	for _, checklist := range drafts.Checklists {
		if checklist.Status != models.ChecklistStatusDraft {
			t.Errorf("status filter leaked %s", checklist.Status)
			break
		}
	}
}
