package dao_test

import (
	"testing"

	"github.com/enercheck/compliance-server/dao"
	"github.com/enercheck/compliance-server/metadata/models"
)

func TestDAODeleteRule(t *testing.T) {
	skipIfNoDB(t)

	// A rule no check references is removed outright.
	unreferenced := createRuleFixture(t, uniqueCode("NEC-250.53"))
	deletion, err := d.DeleteRule(unreferenced.ID, testInspector)
	if err != nil {
		t.Fatal(err)
	}
	if !deletion.Deleted || deletion.Deactivated {
		t.Errorf("unreferenced rule should hard delete, got %+v", deletion)
	}
	if _, err := d.GetRule(unreferenced.ID); !dao.IsNotFound(err) {
		t.Errorf("deleted rule should be gone, got %v", err)
	}

	// A rule any check references is deactivated instead.
	referenced := createRuleFixture(t, uniqueCode("NEC-250.66"))
	createChecklistFixture(t, "Grounding audit", [][]byte{referenced.ID})
	deletion, err = d.DeleteRule(referenced.ID, testInspector)
	if err != nil {
		t.Fatal(err)
	}
	if deletion.Deleted || !deletion.Deactivated {
		t.Errorf("referenced rule should deactivate, got %+v", deletion)
	}
	if deletion.Rule.IsActive {
		t.Error("deactivated rule should read inactive")
	}
	if deletion.Rule.ModifiedBy != testInspector {
		t.Error("deactivation must record the acting user")
	}

	// The deactivated rule stays retrievable but no new checklist may use it.
	kept, err := d.GetRule(referenced.ID)
	if err != nil {
		t.Fatal(err)
	}
	if kept.IsActive {
		t.Error("deactivated rule should remain retrievable as inactive")
	}
	var checklist models.ECChecklist
	checklist.Name = "Audit over inactive rule"
	checklist.CreatedBy = testInspector
	if _, err := d.CreateChecklist(&checklist, [][]byte{referenced.ID}); !dao.IsValidation(err) {
		t.Errorf("inactive rule should be rejected from new checklists, got %v", err)
	}

	if _, err := d.DeleteRule(make([]byte, 16), testInspector); !dao.IsNotFound(err) {
		t.Errorf("unknown rule should be not found, got %v", err)
	}
}
